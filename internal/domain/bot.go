package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bot is the per-organization conversational assistant configuration. There is
// exactly one per organization; it owns all encrypted third-party credentials.
type Bot struct {
	ID             string `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string `json:"organization_id" gorm:"type:uuid;uniqueIndex:uni_bots_organization_id;not null"`

	// SalesLevel controls chat aggressiveness and which tools and rewards are
	// surfaced. Range 1..5.
	SalesLevel int    `json:"sales_level" gorm:"not null;default:1"`
	AgentName  string `json:"agent_name" gorm:"type:varchar(64)"`
	Tone       string `json:"tone" gorm:"type:varchar(64);default:'friendly'"`
	Language   string `json:"language" gorm:"type:varchar(32);default:'English'"`

	// Encrypted credentials. Each value is an independent vault ciphertext
	// carrying its own salt.
	OpenAIKeyData      string `json:"-" gorm:"type:text"`
	OpenAIKeySalt      string `json:"-" gorm:"type:varchar(64)"`
	AssistantIDData    string `json:"-" gorm:"type:text"`
	AssistantIDSalt    string `json:"-" gorm:"type:varchar(64)"`
	GatewaySIDData     string `json:"-" gorm:"type:text"`
	GatewaySIDSalt     string `json:"-" gorm:"type:varchar(64)"`
	GatewayTokenData   string `json:"-" gorm:"type:text"`
	GatewayTokenSalt   string `json:"-" gorm:"type:varchar(64)"`
	GatewaySIDHash     string `json:"-" gorm:"type:varchar(64);index"`

	// GatewayAddress is the WhatsApp sender number this bot replies from,
	// canonical (no transport prefix). Unique across the whole system so an
	// inbound To address resolves to exactly one tenant.
	GatewayAddress string `json:"gateway_address" gorm:"type:varchar(64);uniqueIndex:uni_bots_gateway_address;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Bot
func (Bot) TableName() string {
	return "bots"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (b *Bot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
