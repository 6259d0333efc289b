package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusPlaced      ReservationStatus = "PLACED"
	ReservationStatusInProgress  ReservationStatus = "INPROGRESS"
	ReservationStatusCompleted   ReservationStatus = "COMPLETED"
	ReservationStatusRescheduled ReservationStatus = "RESCHEDULED"
	ReservationStatusCancelled   ReservationStatus = "CANCELLED"
	ReservationStatusAbsent      ReservationStatus = "ABSENT"
)

// CancelledBy records which party cancelled a reservation.
type CancelledBy string

const (
	CancelledByCustomer   CancelledBy = "CUSTOMER"
	CancelledByRestaurant CancelledBy = "RESTAURANT"
)

// reservationTransitions is the allowed state graph. Absent target means the
// state is terminal.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPlaced: {
		ReservationStatusInProgress,
		ReservationStatusCompleted,
		ReservationStatusRescheduled,
		ReservationStatusCancelled,
		ReservationStatusAbsent,
	},
	ReservationStatusInProgress: {
		ReservationStatusCompleted,
	},
}

// IsTerminal reports whether s admits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

// CanTransition reports whether the state graph allows moving from s to next.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is one booking of one table.
type Reservation struct {
	ID             string `json:"id" gorm:"type:uuid;primary_key"`
	OrganizationID string `json:"organization_id" gorm:"type:uuid;index;not null"`
	ClientID       string `json:"client_id" gorm:"type:uuid;index;not null"`
	TableID        string `json:"table_id" gorm:"type:uuid;index:idx_reservations_table_slot;not null"`

	// Naive local date and time, interpreted in the organization's timezone.
	ReservationDate    string `json:"reservation_date" gorm:"type:varchar(10);index:idx_reservations_table_slot;not null"`
	ReservationTime    string `json:"reservation_time" gorm:"type:varchar(5);index:idx_reservations_table_slot;not null"`
	ReservationEndTime *time.Time `json:"reservation_end_time"`

	Guests int    `json:"guests" gorm:"not null"`
	Name   string `json:"name" gorm:"type:varchar(255);not null"`
	Phone  string `json:"phone" gorm:"type:varchar(64)"`

	Status             ReservationStatus `json:"status" gorm:"type:varchar(16);default:'PLACED';index"`
	CancelledBy        CancelledBy       `json:"cancelled_by,omitempty" gorm:"type:varchar(16)"`
	CancellationReason string            `json:"cancellation_reason,omitempty" gorm:"type:text"`

	ReminderSent  bool       `json:"reminder_sent" gorm:"default:false"`
	ReminderDueAt *time.Time `json:"reminder_due_at" gorm:"index"`

	Notes            string `json:"notes" gorm:"type:text"`
	Reason           string `json:"reason" gorm:"type:varchar(255)"`
	PromoCode        string `json:"promo_code,omitempty" gorm:"type:varchar(32)"`
	SalesLevelReward string `json:"sales_level_reward,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsOpen reports whether the reservation still blocks its table slot.
func (r *Reservation) IsOpen() bool {
	return (r.Status == ReservationStatusPlaced || r.Status == ReservationStatusInProgress) &&
		r.ReservationEndTime == nil
}

// ReservationMenuItem is a menu item attached to a reservation by the
// pre-order tool.
type ReservationMenuItem struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key"`
	ReservationID string    `json:"reservation_id" gorm:"type:uuid;index;not null"`
	MenuItemID    string    `json:"menu_item_id" gorm:"type:uuid;index;not null"`
	Quantity      int       `json:"quantity" gorm:"default:1"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the table name for ReservationMenuItem
func (ReservationMenuItem) TableName() string {
	return "reservation_menu_items"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *ReservationMenuItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
