package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100000
)

// ErrInvalidCiphertext is returned when decryption fails its integrity check
// or the ciphertext is malformed.
var ErrInvalidCiphertext = errors.New("vault: invalid ciphertext")

// Ciphertext is an encrypted secret together with the salt its key was derived
// with. Both fields are base64 encoded and safe to persist as-is.
type Ciphertext struct {
	Data string `json:"data"`
	Salt string `json:"salt"`
}

// Encrypt seals plaintext under a key derived from the master password.
// Every call generates a fresh salt, so identical plaintexts never share a key.
func Encrypt(plaintext, masterPassword string) (Ciphertext, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Ciphertext{}, err
	}

	gcm, err := newGCM(masterPassword, salt)
	if err != nil {
		return Ciphertext{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Ciphertext{}, err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return Ciphertext{
		Data: base64.StdEncoding.EncodeToString(sealed),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// Decrypt opens a ciphertext using the salt embedded alongside it.
func Decrypt(ct Ciphertext, masterPassword string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(ct.Salt)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(ct.Data)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	gcm, err := newGCM(masterPassword, salt)
	if err != nil {
		return "", err
	}
	if len(sealed) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, payload := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}

// HashKey returns a one-way hex digest of x, used as a lookup index so the
// plaintext value never has to be stored or compared directly.
func HashKey(x string) string {
	sum := sha256.Sum256([]byte(x))
	return hex.EncodeToString(sum[:])
}

func newGCM(masterPassword string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(masterPassword), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
