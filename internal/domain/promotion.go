package domain

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardType classifies the perk a reward grants.
type RewardType string

const (
	RewardTypeDrink    RewardType = "DRINK"
	RewardTypeDessert  RewardType = "DESSERT"
	RewardTypeDiscount RewardType = "DISCOUNT"
	RewardTypeCustom   RewardType = "CUSTOM"
)

// RewardCategory tells whether a reward belongs to a promotion or to the
// sales-level configuration.
type RewardCategory string

const (
	RewardCategoryPromotion  RewardCategory = "PROMOTION"
	RewardCategorySalesLevel RewardCategory = "SALES_LEVEL"
)

// PromoCodePattern is the shape every promo code conforms to.
var PromoCodePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]+$`)

// Reward is a pre-configured perk attachable to a reservation, identified by a
// unique promo code.
type Reward struct {
	ID             string         `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string         `json:"organization_id" gorm:"type:uuid;index;not null"`
	Type           RewardType     `json:"type" gorm:"type:varchar(16);not null"`
	Label          string         `json:"label" gorm:"type:varchar(255);not null"`
	PromoCode      string         `json:"promo_code" gorm:"type:varchar(32);uniqueIndex:uni_rewards_promo_code;not null"`
	Category       RewardCategory `json:"category" gorm:"type:varchar(16);default:'PROMOTION'"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Reward
func (Reward) TableName() string {
	return "rewards"
}

// BeforeCreate assigns a UUID and a promo code when the caller did not provide
// them. The promo code is immutable once set.
func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.PromoCode == "" {
		r.PromoCode = GeneratePromoCode(r.Type)
	}
	return nil
}

// GeneratePromoCode builds a "<TYP><digits>" code from the reward type, e.g.
// DRI00042 for a DRINK reward.
func GeneratePromoCode(t RewardType) string {
	prefix := strings.ToUpper(string(t))
	if len(prefix) < 3 {
		prefix = (prefix + "XXX")[:3]
	} else {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s%05d", prefix, rand.Intn(100000))
}

// PromotionTriggerType selects the condition that fires a promotion.
type PromotionTriggerType string

const (
	TriggerYearly           PromotionTriggerType = "YEARLY"
	TriggerMenuSelected     PromotionTriggerType = "MENU_SELECTED"
	TriggerInactivity       PromotionTriggerType = "INACTIVITY"
	TriggerReservationCount PromotionTriggerType = "RESERVATION_COUNT"
)

// YearlyCategory distinguishes which yearly client date a YEARLY trigger
// watches.
type YearlyCategory string

const (
	YearlyCategoryBirthday    YearlyCategory = "BIRTHDAY"
	YearlyCategoryAnniversary YearlyCategory = "ANNIVERSARY"
)

// Promotion is a configured campaign of one organization.
type Promotion struct {
	ID             string `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string `json:"organization_id" gorm:"type:uuid;uniqueIndex:uni_promotions_org_title;not null"`
	Title          string `json:"title" gorm:"type:varchar(255);uniqueIndex:uni_promotions_org_title;not null"`

	ValidFrom string `json:"valid_from" gorm:"type:varchar(10);not null"`
	ValidTo   string `json:"valid_to" gorm:"type:varchar(10);not null"`
	IsEnabled bool   `json:"is_enabled" gorm:"default:true"`

	// Trigger condition. Required fields depend on TriggerType.
	TriggerType    PromotionTriggerType `json:"trigger_type" gorm:"type:varchar(24);not null"`
	YearlyCategory YearlyCategory       `json:"yearly_category,omitempty" gorm:"type:varchar(16)"`
	DaysBefore     int                  `json:"days_before,omitempty"`
	InactivityDays int                  `json:"inactivity_days,omitempty"`
	MinCount       int                  `json:"min_count,omitempty"`
	MenuItemID     string               `json:"menu_item_id,omitempty" gorm:"type:uuid"`

	RewardID        string  `json:"reward_id,omitempty" gorm:"type:uuid;index"`
	Reward          *Reward `json:"reward,omitempty" gorm:"foreignKey:RewardID"`
	MessageTemplate string  `json:"message_template" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Promotion
func (Promotion) TableName() string {
	return "promotions"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InWindow reports whether the promotion's validity window includes the given
// date (YYYY-MM-DD, compared lexicographically which matches chronology).
func (p *Promotion) InWindow(date string) bool {
	return p.ValidFrom <= date && date <= p.ValidTo
}

// PromotionSentStatus tracks the delivery lifecycle of one promotion message.
type PromotionSentStatus string

const (
	PromotionSentStatusSent      PromotionSentStatus = "SENT"
	PromotionSentStatusFailed    PromotionSentStatus = "FAILED"
	PromotionSentStatusDelivered PromotionSentStatus = "DELIVERED"
	PromotionSentStatusRead      PromotionSentStatus = "READ"
	PromotionSentStatusUsed      PromotionSentStatus = "USED"
)

// PromotionSentLog records that a promotion reached a client. (promotion,
// client) is unique and USED is terminal.
type PromotionSentLog struct {
	ID          string              `json:"id" gorm:"type:uuid;primary_key"`
	PromotionID string              `json:"promotion_id" gorm:"type:uuid;uniqueIndex:uni_promotion_sent_logs_pair;not null"`
	ClientID    string              `json:"client_id" gorm:"type:uuid;uniqueIndex:uni_promotion_sent_logs_pair;not null"`
	Status      PromotionSentStatus `json:"status" gorm:"type:varchar(16);default:'SENT'"`
	SentAt      time.Time           `json:"sent_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for PromotionSentLog
func (PromotionSentLog) TableName() string {
	return "promotion_sent_logs"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (l *PromotionSentLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
