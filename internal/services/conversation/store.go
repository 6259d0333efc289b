package conversation

import (
	"context"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"go.uber.org/zap"
)

// Store is the persistent per-client conversation state.
type Store struct {
	repos repository.RepositoryManager
}

// NewStore creates a conversation store.
func NewStore(repos repository.RepositoryManager) *Store {
	return &Store{repos: repos}
}

// GetOrCreate finds or creates the client of (organization, address). The
// address is canonicalized before lookup, so "whatsapp:+49170..." and
// "+49170..." resolve to the same client.
func (s *Store) GetOrCreate(ctx context.Context, org *domain.Organization, rawAddress string) (*domain.Client, bool, error) {
	client, created, err := s.repos.Clients().GetOrCreate(ctx, org.ID, rawAddress)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Base().Info("created client",
			zap.String("organization_id", org.ID),
			zap.String("client_id", client.ID))
	}
	return client, created, nil
}

// AttachThread persists a newly created LLM thread handle on the client.
func (s *Store) AttachThread(ctx context.Context, client *domain.Client, threadID string) error {
	if err := s.repos.Clients().SetThreadID(ctx, client.ID, threadID); err != nil {
		return err
	}
	client.ThreadID = threadID
	return nil
}
