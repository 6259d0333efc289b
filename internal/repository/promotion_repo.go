package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// ErrPromoAlreadyUsed is returned when a (promotion, client) log entry is
// already in the terminal USED state.
var ErrPromoAlreadyUsed = errors.New("repository: promo code already used")

// GormPromotionRepository implements PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GORM promotion repository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// CreatePromotion inserts a new promotion
func (r *GormPromotionRepository) CreatePromotion(ctx context.Context, p *domain.Promotion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateReward inserts a new reward
func (r *GormPromotionRepository) CreateReward(ctx context.Context, reward *domain.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

// GetByRewardCode fetches the promotion whose reward carries the promo code,
// within one organization.
func (r *GormPromotionRepository) GetByRewardCode(ctx context.Context, orgID, promoCode string) (*domain.Promotion, error) {
	var promo domain.Promotion
	err := r.db.WithContext(ctx).
		Preload("Reward").
		Joins("JOIN rewards ON rewards.id = promotions.reward_id").
		Where("promotions.organization_id = ? AND rewards.promo_code = ?", orgID, promoCode).
		First(&promo).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &promo, nil
}

// ListEnabledInWindow returns enabled promotions whose validity window
// includes the given date.
func (r *GormPromotionRepository) ListEnabledInWindow(ctx context.Context, orgID, date string) ([]domain.Promotion, error) {
	var out []domain.Promotion
	err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("organization_id = ? AND is_enabled = ?", orgID, true).
		Where("valid_from <= ? AND valid_to >= ?", date, date).
		Order("title asc").
		Find(&out).Error
	return out, err
}

// ListEnabled returns all enabled promotions of an organization
func (r *GormPromotionRepository) ListEnabled(ctx context.Context, orgID string) ([]domain.Promotion, error) {
	var out []domain.Promotion
	err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("organization_id = ? AND is_enabled = ?", orgID, true).
		Order("title asc").
		Find(&out).Error
	return out, err
}

// GetSalesLevelReward returns the organization's SALES_LEVEL reward, if any
func (r *GormPromotionRepository) GetSalesLevelReward(ctx context.Context, orgID string) (*domain.Reward, error) {
	var reward domain.Reward
	err := r.db.WithContext(ctx).
		First(&reward, "organization_id = ? AND category = ?", orgID, domain.RewardCategorySalesLevel).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &reward, nil
}

// GetSentLog fetches the (promotion, client) log entry
func (r *GormPromotionRepository) GetSentLog(ctx context.Context, promotionID, clientID string) (*domain.PromotionSentLog, error) {
	var log domain.PromotionSentLog
	err := r.db.WithContext(ctx).
		First(&log, "promotion_id = ? AND client_id = ?", promotionID, clientID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &log, nil
}

// UpsertSentLog creates or updates the (promotion, client) log entry. A row in
// the terminal USED state is never overwritten.
func (r *GormPromotionRepository) UpsertSentLog(ctx context.Context, promotionID, clientID string, status domain.PromotionSentStatus) error {
	existing, err := r.GetSentLog(ctx, promotionID, clientID)
	if errors.Is(err, ErrNotFound) {
		return r.db.WithContext(ctx).Create(&domain.PromotionSentLog{
			PromotionID: promotionID,
			ClientID:    clientID,
			Status:      status,
		}).Error
	}
	if err != nil {
		return err
	}
	if existing.Status == domain.PromotionSentStatusUsed {
		return ErrPromoAlreadyUsed
	}
	existing.Status = status
	return r.db.WithContext(ctx).Save(existing).Error
}

// MarkLogUsed flips the (promotion, client) log entry to USED. The update is
// guarded so a row already USED stays USED.
func (r *GormPromotionRepository) MarkLogUsed(ctx context.Context, promotionID, clientID string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.PromotionSentLog{}).
		Where("promotion_id = ? AND client_id = ? AND status <> ?", promotionID, clientID, domain.PromotionSentStatusUsed).
		Update("status", domain.PromotionSentStatusUsed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either no log exists yet (create one directly in USED) or the
		// existing row is already USED.
		existing, err := r.GetSentLog(ctx, promotionID, clientID)
		if errors.Is(err, ErrNotFound) {
			return r.db.WithContext(ctx).Create(&domain.PromotionSentLog{
				PromotionID: promotionID,
				ClientID:    clientID,
				Status:      domain.PromotionSentStatusUsed,
			}).Error
		}
		if err != nil {
			return err
		}
		if existing.Status == domain.PromotionSentStatusUsed {
			return fmt.Errorf("%w: promotion %s client %s", ErrPromoAlreadyUsed, promotionID, clientID)
		}
	}
	return nil
}
