package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TableCategory classifies the seating arrangement of a table.
type TableCategory string

const (
	TableCategoryFamily  TableCategory = "FAMILY"
	TableCategoryCouple  TableCategory = "COUPLE"
	TableCategorySingle  TableCategory = "SINGLE"
	TableCategoryGroup   TableCategory = "GROUP"
	TableCategoryPrivate TableCategory = "PRIVATE"
)

// TableStatus is the standing status of a table, independent of bookings.
type TableStatus string

const (
	TableStatusAvailable   TableStatus = "AVAILABLE"
	TableStatusUnavailable TableStatus = "UNAVAILABLE"
	TableStatusReserved    TableStatus = "RESERVED"
)

// Table is one physical table of a restaurant.
type Table struct {
	ID             string        `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string        `json:"organization_id" gorm:"type:uuid;uniqueIndex:uni_tables_org_name;not null"`
	Name           string        `json:"name" gorm:"type:varchar(64);uniqueIndex:uni_tables_org_name;not null"`
	Capacity       int           `json:"capacity" gorm:"not null"`
	Category       TableCategory `json:"category" gorm:"type:varchar(16);default:'FAMILY'"`
	Position       string        `json:"position" gorm:"type:varchar(128)"`
	Status         TableStatus   `json:"status" gorm:"type:varchar(16);default:'AVAILABLE'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Table
func (Table) TableName() string {
	return "tables"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
