package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"gorm.io/gorm"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GORM reservation repository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Create inserts a new reservation
func (r *GormReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// GetByID fetches a reservation by id
func (r *GormReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

// Save persists all fields of a reservation
func (r *GormReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// Transition moves the reservation along the state machine. Moves outside the
// allowed graph are rejected before touching the database. COMPLETED stamps
// the end time.
func (r *GormReservationRepository) Transition(ctx context.Context, res *domain.Reservation, next domain.ReservationStatus) error {
	if !res.Status.CanTransition(next) {
		return fmt.Errorf("reservation %s: illegal transition %s -> %s", res.ID, res.Status, next)
	}
	res.Status = next
	if next == domain.ReservationStatusCompleted {
		now := time.Now()
		res.ReservationEndTime = &now
	}
	return r.db.WithContext(ctx).Save(res).Error
}

// ListOpenForTableOnDate returns PLACED/INPROGRESS reservations without an end
// time on a table for a date.
func (r *GormReservationRepository) ListOpenForTableOnDate(ctx context.Context, tableID, date string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND reservation_date = ?", tableID, date).
		Where("status IN ?", []domain.ReservationStatus{domain.ReservationStatusPlaced, domain.ReservationStatusInProgress}).
		Where("reservation_end_time IS NULL").
		Find(&out).Error
	return out, err
}

// ListByClientAndDate returns all reservations of a client on a date, earliest
// time first.
func (r *GormReservationRepository) ListByClientAndDate(ctx context.Context, clientID, date string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND reservation_date = ?", clientID, date).
		Order("reservation_time asc").
		Find(&out).Error
	return out, err
}

// ListByClientDateStatus returns a client's reservations on a date filtered by
// status.
func (r *GormReservationRepository) ListByClientDateStatus(ctx context.Context, clientID, date string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND reservation_date = ? AND status = ?", clientID, date, status).
		Order("reservation_time asc").
		Find(&out).Error
	return out, err
}

// ListDueReminders returns open reservations whose reminder is due and not yet
// sent.
func (r *GormReservationRepository) ListDueReminders(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("reminder_sent = ? AND reminder_due_at IS NOT NULL AND reminder_due_at <= ?", false, now).
		Where("status IN ?", []domain.ReservationStatus{domain.ReservationStatusPlaced, domain.ReservationStatusInProgress}).
		Find(&out).Error
	return out, err
}

// CountByClientAndStatus counts a client's reservations in a status
func (r *GormReservationRepository) CountByClientAndStatus(ctx context.Context, clientID string, status domain.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("client_id = ? AND status = ?", clientID, status).
		Count(&count).Error
	return count, err
}

// AttachMenuItem records a menu item pre-ordered onto a reservation
func (r *GormReservationRepository) AttachMenuItem(ctx context.Context, item *domain.ReservationMenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// ListMenuItemIDsByClient returns the menu item ids attached to any of the
// client's reservations, one entry per attachment.
func (r *GormReservationRepository) ListMenuItemIDsByClient(ctx context.Context, clientID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.ReservationMenuItem{}).
		Joins("JOIN reservations ON reservations.id = reservation_menu_items.reservation_id").
		Where("reservations.client_id = ?", clientID).
		Pluck("reservation_menu_items.menu_item_id", &ids).Error
	return ids, err
}
