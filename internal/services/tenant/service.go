package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ClareAI/astra-reserve-service/internal/cache"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/ClareAI/astra-reserve-service/pkg/vault"
	"go.uber.org/zap"
)

// ErrUnknownTenant is returned when no bot owns the destination address of an
// inbound message.
var ErrUnknownTenant = errors.New("tenant: unknown gateway address")

// Credentials are the decrypted third-party secrets of one tenant. They live
// only for the lifetime of one request.
type Credentials struct {
	OpenAIKey    string
	AssistantID  string
	GatewaySID   string
	GatewayToken string
}

// Tenant bundles the bot configuration and organization resolved for one
// inbound request. Credentials decrypt lazily, exactly once.
type Tenant struct {
	Bot          *domain.Bot
	Organization *domain.Organization

	masterPassword string
	once           sync.Once
	creds          *Credentials
	credsErr       error
}

// GatewayAddress returns the tenant's canonical sender address.
func (t *Tenant) GatewayAddress() string {
	return t.Bot.GatewayAddress
}

// SalesLevel returns the tenant's configured sales level.
func (t *Tenant) SalesLevel() int {
	return t.Bot.SalesLevel
}

// Credentials decrypts the tenant's secrets on first use. Subsequent calls in
// the same request return the cached result.
func (t *Tenant) Credentials() (*Credentials, error) {
	t.once.Do(func() {
		decrypt := func(data, salt string) (string, error) {
			if data == "" {
				return "", nil
			}
			return vault.Decrypt(vault.Ciphertext{Data: data, Salt: salt}, t.masterPassword)
		}

		creds := &Credentials{}
		var err error
		if creds.OpenAIKey, err = decrypt(t.Bot.OpenAIKeyData, t.Bot.OpenAIKeySalt); err != nil {
			t.credsErr = fmt.Errorf("decrypt openai key: %w", err)
			return
		}
		if creds.AssistantID, err = decrypt(t.Bot.AssistantIDData, t.Bot.AssistantIDSalt); err != nil {
			t.credsErr = fmt.Errorf("decrypt assistant id: %w", err)
			return
		}
		if creds.GatewaySID, err = decrypt(t.Bot.GatewaySIDData, t.Bot.GatewaySIDSalt); err != nil {
			t.credsErr = fmt.Errorf("decrypt gateway sid: %w", err)
			return
		}
		if creds.GatewayToken, err = decrypt(t.Bot.GatewayTokenData, t.Bot.GatewayTokenSalt); err != nil {
			t.credsErr = fmt.Errorf("decrypt gateway token: %w", err)
			return
		}
		t.creds = creds
	})
	return t.creds, t.credsErr
}

// Resolver maps inbound destination addresses to tenants.
type Resolver struct {
	repos          repository.RepositoryManager
	cache          *cache.BotCache
	masterPassword string
}

// NewResolver creates a tenant resolver.
func NewResolver(repos repository.RepositoryManager, botCache *cache.BotCache, masterPassword string) *Resolver {
	return &Resolver{repos: repos, cache: botCache, masterPassword: masterPassword}
}

// ForOrganization resolves the tenant of an organization, for background jobs
// that start from stored data instead of an inbound message.
func (r *Resolver) ForOrganization(ctx context.Context, orgID string) (*Tenant, error) {
	bot, err := r.repos.Bots().GetByOrganizationID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: organization %s", ErrUnknownTenant, orgID)
	}
	if err != nil {
		return nil, err
	}
	org, err := r.repos.Organizations().GetByID(ctx, bot.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &Tenant{
		Bot:            bot,
		Organization:   org,
		masterPassword: r.masterPassword,
	}, nil
}

// Resolve maps a destination gateway address to exactly one tenant.
func (r *Resolver) Resolve(ctx context.Context, gatewayAddress string) (*Tenant, error) {
	bot := r.cache.Get(gatewayAddress)
	if bot == nil {
		var err error
		bot, err = r.repos.Bots().GetByGatewayAddress(ctx, gatewayAddress)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTenant, domain.CanonicalAddress(gatewayAddress))
		}
		if err != nil {
			return nil, err
		}
		r.cache.Put(bot)
	}

	org, err := r.repos.Organizations().GetByID(ctx, bot.OrganizationID)
	if err != nil {
		logger.Base().Error("bot without organization", zap.String("bot_id", bot.ID), zap.Error(err))
		return nil, err
	}

	return &Tenant{
		Bot:            bot,
		Organization:   org,
		masterPassword: r.masterPassword,
	}, nil
}
