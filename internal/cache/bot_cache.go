package cache

import (
	"sync"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/ClareAI/astra-reserve-service/pkg/vault"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// defaultTTL bounds how long a cached bot config is served before the database
// is consulted again.
const defaultTTL = 5 * time.Minute

type entry struct {
	bot      *domain.Bot
	loadedAt time.Time
}

// BotCache provides thread-safe bot-config lookups keyed by the hashed
// gateway address, so hot webhook paths avoid a database round trip per
// message. Only encrypted rows are cached; decryption stays per-request.
type BotCache struct {
	entries map[string]entry
	mutex   sync.RWMutex
	ttl     time.Duration
}

// NewBotCache creates a bot cache with the default TTL.
func NewBotCache() *BotCache {
	return &BotCache{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
	}
}

// Get returns a copy of the cached bot for a gateway address, or nil on miss
// or expiry.
func (c *BotCache) Get(gatewayAddress string) *domain.Bot {
	key := vault.HashKey(domain.CanonicalAddress(gatewayAddress))

	c.mutex.RLock()
	e, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok || time.Since(e.loadedAt) > c.ttl {
		return nil
	}
	return copyBot(e.bot)
}

// Put stores a copy of the bot under its gateway address.
func (c *BotCache) Put(bot *domain.Bot) {
	if bot == nil {
		return
	}
	key := vault.HashKey(domain.CanonicalAddress(bot.GatewayAddress))

	c.mutex.Lock()
	c.entries[key] = entry{bot: copyBot(bot), loadedAt: time.Now()}
	c.mutex.Unlock()
}

// Invalidate drops the entry for a gateway address.
func (c *BotCache) Invalidate(gatewayAddress string) {
	key := vault.HashKey(domain.CanonicalAddress(gatewayAddress))

	c.mutex.Lock()
	delete(c.entries, key)
	c.mutex.Unlock()
}

// copyBot returns a deep copy so callers never share cached state.
func copyBot(bot *domain.Bot) *domain.Bot {
	out := &domain.Bot{}
	if err := copier.Copy(out, bot); err != nil {
		logger.Base().Warn("failed to copy bot config, returning original", zap.Error(err))
		return bot
	}
	return out
}
