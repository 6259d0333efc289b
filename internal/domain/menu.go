package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuClassification groups menu items by dietary class.
type MenuClassification string

const (
	MenuClassificationMeat       MenuClassification = "MEAT"
	MenuClassificationFish       MenuClassification = "FISH"
	MenuClassificationVegetarian MenuClassification = "VEGETARIAN"
	MenuClassificationVegan      MenuClassification = "VEGAN"
)

// MenuStatus marks whether an item is currently offered.
type MenuStatus string

const (
	MenuStatusActive   MenuStatus = "ACTIVE"
	MenuStatusInactive MenuStatus = "INACTIVE"
)

// MaxCombinationsPerItem caps the out-edges of the recommended-combinations
// relation.
const MaxCombinationsPerItem = 5

// MenuItem is one dish or drink on an organization's menu.
type MenuItem struct {
	ID             string             `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string             `json:"organization_id" gorm:"type:uuid;uniqueIndex:uni_menu_items_org_name;not null"`
	Name           string             `json:"name" gorm:"type:varchar(255);uniqueIndex:uni_menu_items_org_name;not null"`
	Description    string             `json:"description" gorm:"type:text"`
	Category       string             `json:"category" gorm:"type:varchar(64);not null"`
	Classification MenuClassification `json:"classification" gorm:"type:varchar(16);not null"`

	// Price is in the organization's currency, valid range (0, 1000).
	Price float64 `json:"price" gorm:"not null"`

	// Ingredients maps ingredient name to quantity, e.g. {"flour": "200g"}.
	Ingredients    JSONB      `json:"ingredients" gorm:"type:jsonb"`
	Allergens      StringList `json:"allergens" gorm:"type:jsonb"`
	Macronutrients JSONB      `json:"macronutrients" gorm:"type:jsonb"`

	UpsellingPriority int        `json:"upselling_priority" gorm:"default:1"`
	EnableUpselling   bool       `json:"enable_upselling" gorm:"default:false"`
	Status            MenuStatus `json:"status" gorm:"type:varchar(16);default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MenuCombination is a directed recommended-combination edge between two menu
// items of the same organization. The relation is asymmetric.
type MenuCombination struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	ItemAID   string    `json:"item_a_id" gorm:"type:uuid;uniqueIndex:uni_menu_combinations_edge;not null"`
	ItemBID   string    `json:"item_b_id" gorm:"type:uuid;uniqueIndex:uni_menu_combinations_edge;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for MenuCombination
func (MenuCombination) TableName() string {
	return "menu_combinations"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (m *MenuCombination) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
