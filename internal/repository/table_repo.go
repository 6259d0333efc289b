package repository

import (
	"context"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// GormTableRepository implements TableRepository using GORM
type GormTableRepository struct {
	db *gorm.DB
}

// NewGormTableRepository creates a new GORM table repository
func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

// Create inserts a new table
func (r *GormTableRepository) Create(ctx context.Context, table *domain.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

// GetByID fetches a table by id
func (r *GormTableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	var table domain.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &table, nil
}

// ListAvailableByMinCapacity returns AVAILABLE tables that seat at least the
// given party size, smallest capacity first so the best-fitting table wins.
func (r *GormTableRepository) ListAvailableByMinCapacity(ctx context.Context, orgID string, guests int) ([]domain.Table, error) {
	var tables []domain.Table
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND capacity >= ?", orgID, domain.TableStatusAvailable, guests).
		Order("capacity asc").
		Order("name asc").
		Find(&tables).Error
	return tables, err
}
