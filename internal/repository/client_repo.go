package repository

import (
	"context"
	"errors"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GORM client repository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// GetByID fetches a client by id
func (r *GormClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// GetOrCreate finds the client of (org, canonical address) or creates an empty
// one. The composite unique index on (organization_id, messaging_address)
// guards the create against a concurrent first message from the same number.
func (r *GormClientRepository) GetOrCreate(ctx context.Context, orgID, address string) (*domain.Client, bool, error) {
	canonical := domain.CanonicalAddress(address)

	var client domain.Client
	err := r.db.WithContext(ctx).
		First(&client, "organization_id = ? AND messaging_address = ?", orgID, canonical).Error
	if err == nil {
		return &client, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	client = domain.Client{
		OrganizationID:   orgID,
		MessagingAddress: canonical,
	}
	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		// Lost the race against another worker; the row exists now.
		var existing domain.Client
		if ferr := r.db.WithContext(ctx).
			First(&existing, "organization_id = ? AND messaging_address = ?", orgID, canonical).Error; ferr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &client, true, nil
}

// ListByOrganization returns every client of an organization
func (r *GormClientRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Client, error) {
	var clients []domain.Client
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at asc").
		Find(&clients).Error
	return clients, err
}

// SetThreadID persists the LLM thread handle of a client
func (r *GormClientRepository) SetThreadID(ctx context.Context, clientID, threadID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("id = ?", clientID).
		Update("thread_id", threadID).Error
}

// Save persists all fields of a client
func (r *GormClientRepository) Save(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}
