package repository

import (
	"context"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GORM organization repository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create inserts a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// GetByID fetches an organization by id
func (r *GormOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

// List returns every organization, ordered by name
func (r *GormOrganizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).Order("name asc").Find(&orgs).Error
	return orgs, err
}

// GormBotRepository implements BotRepository using GORM
type GormBotRepository struct {
	db *gorm.DB
}

// NewGormBotRepository creates a new GORM bot repository
func NewGormBotRepository(db *gorm.DB) *GormBotRepository {
	return &GormBotRepository{db: db}
}

// Create inserts a new bot configuration
func (r *GormBotRepository) Create(ctx context.Context, bot *domain.Bot) error {
	return r.db.WithContext(ctx).Create(bot).Error
}

// GetByID fetches a bot by id
func (r *GormBotRepository) GetByID(ctx context.Context, id string) (*domain.Bot, error) {
	var bot domain.Bot
	if err := r.db.WithContext(ctx).First(&bot, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bot, nil
}

// GetByOrganizationID fetches the single bot of an organization
func (r *GormBotRepository) GetByOrganizationID(ctx context.Context, orgID string) (*domain.Bot, error) {
	var bot domain.Bot
	if err := r.db.WithContext(ctx).First(&bot, "organization_id = ?", orgID).Error; err != nil {
		return nil, notFound(err)
	}
	return &bot, nil
}

// GetByGatewayAddress fetches the bot owning a gateway sender address. The
// address is canonicalized before comparison.
func (r *GormBotRepository) GetByGatewayAddress(ctx context.Context, address string) (*domain.Bot, error) {
	var bot domain.Bot
	canonical := domain.CanonicalAddress(address)
	if err := r.db.WithContext(ctx).First(&bot, "gateway_address = ?", canonical).Error; err != nil {
		return nil, notFound(err)
	}
	return &bot, nil
}
