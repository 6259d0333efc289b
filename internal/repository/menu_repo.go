package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// GormMenuItemRepository implements MenuItemRepository using GORM
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewGormMenuItemRepository creates a new GORM menu item repository
func NewGormMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// Create inserts a new menu item
func (r *GormMenuItemRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID fetches a menu item by id
func (r *GormMenuItemRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// GetByNameInsensitive fetches a menu item by case-insensitive name within an
// organization.
func (r *GormMenuItemRepository) GetByNameInsensitive(ctx context.Context, orgID, name string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.db.WithContext(ctx).
		First(&item, "organization_id = ? AND LOWER(name) = ?", orgID, strings.ToLower(strings.TrimSpace(name))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListActive returns ACTIVE items of a category and classification, ordered by
// name.
func (r *GormMenuItemRepository) ListActive(ctx context.Context, orgID, category string, classification domain.MenuClassification) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, domain.MenuStatusActive)
	if category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if classification != "" {
		q = q.Where("classification = ?", classification)
	}
	err := q.Order("name asc").Find(&items).Error
	return items, err
}

// ListUpselling returns active items with upselling enabled, ordered by
// category then name.
func (r *GormMenuItemRepository) ListUpselling(ctx context.Context, orgID string) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ? AND enable_upselling = ?", orgID, domain.MenuStatusActive, true).
		Order("category asc").
		Order("name asc").
		Find(&items).Error
	return items, err
}

// ListByIDs fetches menu items by id
func (r *GormMenuItemRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.MenuItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// AddCombination adds a directed recommended-combination edge. An item carries
// at most MaxCombinationsPerItem out-edges.
func (r *GormMenuItemRepository) AddCombination(ctx context.Context, itemAID, itemBID string) error {
	if itemAID == itemBID {
		return fmt.Errorf("menu item cannot recommend itself")
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.MenuCombination{}).
		Where("item_a_id = ?", itemAID).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= domain.MaxCombinationsPerItem {
		return fmt.Errorf("menu item %s already has %d recommended combinations", itemAID, domain.MaxCombinationsPerItem)
	}
	return r.db.WithContext(ctx).Create(&domain.MenuCombination{ItemAID: itemAID, ItemBID: itemBID}).Error
}

// CombinationNames returns the names of the items recommended alongside the
// given item.
func (r *GormMenuItemRepository) CombinationNames(ctx context.Context, itemID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&domain.MenuCombination{}).
		Joins("JOIN menu_items ON menu_items.id = menu_combinations.item_b_id").
		Where("menu_combinations.item_a_id = ?", itemID).
		Order("menu_items.name asc").
		Pluck("menu_items.name", &names).Error
	return names, err
}
