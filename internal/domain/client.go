package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is one WhatsApp contact of one organization.
type Client struct {
	ID             string `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string `json:"organization_id" gorm:"type:uuid;uniqueIndex:uni_clients_org_address;not null"`

	// MessagingAddress is canonical: the "whatsapp:" transport prefix is
	// stripped before storage and comparison.
	MessagingAddress string `json:"messaging_address" gorm:"type:varchar(64);uniqueIndex:uni_clients_org_address;not null"`

	DisplayName string `json:"display_name" gorm:"type:varchar(255)"`

	// ThreadID is the LLM provider's persistent conversation handle. Empty
	// until the first run; created and persisted atomically with the client.
	ThreadID string `json:"thread_id" gorm:"type:varchar(128)"`

	Preferences     StringList `json:"preferences" gorm:"type:jsonb"`
	Allergens       StringList `json:"allergens" gorm:"type:jsonb"`
	DateOfBirth     string     `json:"date_of_birth" gorm:"type:varchar(10)"`
	AnniversaryDate string     `json:"anniversary_date" gorm:"type:varchar(10)"`
	LastVisit       *time.Time `json:"last_visit"`
	SpecialNotes    string     `json:"special_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Client
func (Client) TableName() string {
	return "clients"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CanonicalAddress strips the WhatsApp transport prefix from an address.
func CanonicalAddress(addr string) string {
	return strings.TrimPrefix(strings.TrimSpace(addr), "whatsapp:")
}
