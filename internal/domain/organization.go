package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization represents one restaurant tenant. Every other entity is owned by
// an organization and cascades on its deletion.
type Organization struct {
	ID      string `json:"id" gorm:"type:uuid;primary_key"`
	Name    string `json:"name" gorm:"type:varchar(255);not null"`
	Address string `json:"address" gorm:"type:varchar(512)"`
	Phone   string `json:"phone" gorm:"type:varchar(64)"`
	Email   string `json:"email" gorm:"type:varchar(255)"`
	Website string `json:"website" gorm:"type:varchar(255)"`

	// Timezone is an IANA zone name, e.g. "Europe/Berlin". Reservation dates
	// and times are naive and only meaningful in this zone.
	Timezone string `json:"timezone" gorm:"type:varchar(64);not null;default:'UTC'"`

	// OpeningHours maps weekday names ("monday".."sunday") to "HH:MM-HH:MM".
	OpeningHours JSONB `json:"opening_hours" gorm:"type:jsonb"`

	// ReminderOffsetMinutes is subtracted from the reservation datetime to
	// compute reminder_due_at.
	ReminderOffsetMinutes int `json:"reminder_offset_minutes" gorm:"default:120"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Location resolves the organization's timezone, falling back to UTC.
func (o *Organization) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Now returns the current time in the organization's timezone.
func (o *Organization) Now() time.Time {
	return time.Now().In(o.Location())
}
