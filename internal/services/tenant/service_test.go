package tenant

import (
	"context"
	"fmt"
	"testing"

	"github.com/ClareAI/astra-reserve-service/internal/cache"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/pkg/vault"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMasterPassword = "master-pw"

func setupResolver(t *testing.T) (*Resolver, repository.RepositoryManager, *domain.Organization) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	repos := repository.NewGormRepositoryManager(db)

	org := &domain.Organization{Name: "Trattoria Bella", Timezone: "UTC"}
	require.NoError(t, repos.Organizations().Create(context.Background(), org))

	return NewResolver(repos, cache.NewBotCache(), testMasterPassword), repos, org
}

func sealBotSecrets(t *testing.T, bot *domain.Bot, apiKey, assistantID, sid, token string) {
	t.Helper()
	seal := func(plain string) vault.Ciphertext {
		ct, err := vault.Encrypt(plain, testMasterPassword)
		require.NoError(t, err)
		return ct
	}
	key := seal(apiKey)
	bot.OpenAIKeyData, bot.OpenAIKeySalt = key.Data, key.Salt
	asst := seal(assistantID)
	bot.AssistantIDData, bot.AssistantIDSalt = asst.Data, asst.Salt
	gwSID := seal(sid)
	bot.GatewaySIDData, bot.GatewaySIDSalt = gwSID.Data, gwSID.Salt
	gwToken := seal(token)
	bot.GatewayTokenData, bot.GatewayTokenSalt = gwToken.Data, gwToken.Salt
	bot.GatewaySIDHash = vault.HashKey(sid)
}

func TestResolveByGatewayAddress(t *testing.T) {
	resolver, repos, org := setupResolver(t)
	ctx := context.Background()

	bot := &domain.Bot{OrganizationID: org.ID, SalesLevel: 2, GatewayAddress: "+4915100000000"}
	require.NoError(t, repos.Bots().Create(ctx, bot))

	tenant, err := resolver.Resolve(ctx, "whatsapp:+4915100000000")
	require.NoError(t, err)
	assert.Equal(t, bot.ID, tenant.Bot.ID)
	assert.Equal(t, org.ID, tenant.Organization.ID)
	assert.Equal(t, 2, tenant.SalesLevel())
	assert.Equal(t, "+4915100000000", tenant.GatewayAddress())

	// Second resolve is served from the cache.
	again, err := resolver.Resolve(ctx, "+4915100000000")
	require.NoError(t, err)
	assert.Equal(t, bot.ID, again.Bot.ID)
}

func TestResolveUnknownAddress(t *testing.T) {
	resolver, _, _ := setupResolver(t)

	_, err := resolver.Resolve(context.Background(), "+000000")
	assert.ErrorIs(t, err, ErrUnknownTenant)
}

func TestCredentialsRoundTrip(t *testing.T) {
	resolver, repos, org := setupResolver(t)
	ctx := context.Background()

	bot := &domain.Bot{OrganizationID: org.ID, SalesLevel: 1, GatewayAddress: "+4915100000000"}
	sealBotSecrets(t, bot, "sk-live-123", "asst_abc", "AC999", "token-xyz")
	require.NoError(t, repos.Bots().Create(ctx, bot))

	tenant, err := resolver.Resolve(ctx, "+4915100000000")
	require.NoError(t, err)

	creds, err := tenant.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "sk-live-123", creds.OpenAIKey)
	assert.Equal(t, "asst_abc", creds.AssistantID)
	assert.Equal(t, "AC999", creds.GatewaySID)
	assert.Equal(t, "token-xyz", creds.GatewayToken)

	// Decryption happens once; repeated calls return the same result.
	again, err := tenant.Credentials()
	require.NoError(t, err)
	assert.Same(t, creds, again)
}

func TestCredentialsWrongMasterPassword(t *testing.T) {
	_, repos, org := setupResolver(t)
	ctx := context.Background()

	bot := &domain.Bot{OrganizationID: org.ID, SalesLevel: 1, GatewayAddress: "+4915100000000"}
	sealBotSecrets(t, bot, "sk-live-123", "asst_abc", "AC999", "token-xyz")
	require.NoError(t, repos.Bots().Create(ctx, bot))

	wrong := NewResolver(repos, cache.NewBotCache(), "not-the-password")
	tenant, err := wrong.Resolve(ctx, "+4915100000000")
	require.NoError(t, err)

	_, err = tenant.Credentials()
	assert.Error(t, err)
}

func TestForOrganization(t *testing.T) {
	resolver, repos, org := setupResolver(t)
	ctx := context.Background()

	bot := &domain.Bot{OrganizationID: org.ID, SalesLevel: 3, GatewayAddress: "+4915100000000"}
	require.NoError(t, repos.Bots().Create(ctx, bot))

	tenant, err := resolver.ForOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, bot.ID, tenant.Bot.ID)
	assert.Equal(t, org.ID, tenant.Organization.ID)

	_, err = resolver.ForOrganization(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUnknownTenant)
}
