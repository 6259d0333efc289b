package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
)

type addMenuToReservationArgs struct {
	ReservationUID string `json:"reservation_uid" validate:"required"`
	Items          []struct {
		MenuName string `json:"menu_name" validate:"required"`
	} `json:"items" validate:"required,min=1,dive"`
}

// ExecuteAddMenuToReservation pre-orders menu items onto a reservation.
// Partial success is allowed; unknown names are reported back.
func (m *Manager) ExecuteAddMenuToReservation(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in addMenuToReservationArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	var attached []string
	var missing []string
	err := m.repos.WithTx(ctx, func(ctx context.Context, repos repository.RepositoryManager) error {
		res, err := repos.Reservations().GetByID(ctx, in.ReservationUID)
		if err != nil {
			return fmt.Errorf("reservation not found")
		}
		if res.ClientID != tc.Client.ID {
			return fmt.Errorf("reservation not found")
		}
		if res.Status != domain.ReservationStatusPlaced && res.Status != domain.ReservationStatusInProgress {
			return fmt.Errorf("menu items can only be added to an upcoming or ongoing reservation")
		}

		for _, item := range in.Items {
			menuItem, err := repos.MenuItems().GetByNameInsensitive(ctx, res.OrganizationID, item.MenuName)
			if err != nil {
				missing = append(missing, item.MenuName)
				continue
			}
			if err := repos.Reservations().AttachMenuItem(ctx, &domain.ReservationMenuItem{
				ReservationID: res.ID,
				MenuItemID:    menuItem.ID,
			}); err != nil {
				return err
			}
			attached = append(attached, menuItem.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"status":   "ok",
		"attached": attached,
	}
	if len(missing) > 0 {
		result["not_found"] = missing
	}
	return result, nil
}

type rescheduleReservationArgs struct {
	OriginalDate string `json:"original_date" validate:"required"`
	OriginalTime string `json:"original_time"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Guests       int    `json:"guests" validate:"omitempty,min=1,max=100"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
}

// ExecuteRescheduleReservation moves a reservation by booking a new one
// through the shared booking path and marking the original rescheduled, in
// one transaction.
func (m *Manager) ExecuteRescheduleReservation(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in rescheduleReservationArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	var result interface{}
	err := m.repos.WithTx(ctx, func(ctx context.Context, repos repository.RepositoryManager) error {
		original, selection, err := m.locateReservation(ctx, repos, tc, in.OriginalDate, in.OriginalTime)
		if err != nil {
			return err
		}
		if selection != nil {
			result = selection
			return nil
		}
		if original.Status.IsTerminal() {
			return fmt.Errorf("the reservation on %s at %s is already %s and cannot be rescheduled",
				original.ReservationDate, original.ReservationTime, original.Status)
		}

		// Inherit every omitted field from the original booking.
		booking := bookTableArgs{
			Name:         in.Name,
			Date:         in.Date,
			Time:         in.Time,
			Guests:       in.Guests,
			Phone:        in.Phone,
			SpecialNotes: original.Notes,
			Reason:       original.Reason,
		}
		if booking.Name == "" {
			booking.Name = original.Name
		}
		if booking.Date == "" {
			booking.Date = original.ReservationDate
		}
		if booking.Time == "" {
			booking.Time = original.ReservationTime
		}
		if booking.Guests == 0 {
			booking.Guests = original.Guests
		}
		if booking.Phone == "" {
			booking.Phone = original.Phone
		}

		org := tc.Tenant.Organization
		if err := rejectPast(org, booking.Date, booking.Time); err != nil {
			return err
		}

		payload, err := m.bookTableTx(ctx, repos, tc, booking)
		if err != nil {
			return err
		}
		if payload["status"] != "booked" {
			// No table at the new slot; the original stays untouched.
			result = payload
			return nil
		}

		if err := repos.Reservations().Transition(ctx, original, domain.ReservationStatusRescheduled); err != nil {
			return err
		}
		payload["status"] = "rescheduled"
		payload["original_date"] = original.ReservationDate
		payload["original_time"] = original.ReservationTime
		result = payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type cancelReservationArgs struct {
	ReservationDate string `json:"reservation_date" validate:"required"`
	ReservationTime string `json:"reservation_time"`
	Reason          string `json:"reason" validate:"required"`
}

// ExecuteCancelReservation cancels a future reservation on behalf of the
// customer.
func (m *Manager) ExecuteCancelReservation(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in cancelReservationArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	var result interface{}
	err := m.repos.WithTx(ctx, func(ctx context.Context, repos repository.RepositoryManager) error {
		res, selection, err := m.locateReservation(ctx, repos, tc, in.ReservationDate, in.ReservationTime)
		if err != nil {
			return err
		}
		if selection != nil {
			result = selection
			return nil
		}
		if res.Status.IsTerminal() {
			return fmt.Errorf("the reservation on %s at %s is already %s",
				res.ReservationDate, res.ReservationTime, res.Status)
		}

		org := tc.Tenant.Organization
		at, err := domain.CombineDateTime(res.ReservationDate, res.ReservationTime, org.Location())
		if err != nil {
			return err
		}
		if at.Before(org.Now()) {
			return fmt.Errorf("past reservations cannot be cancelled")
		}

		res.CancelledBy = domain.CancelledByCustomer
		res.CancellationReason = in.Reason
		if err := repos.Reservations().Transition(ctx, res, domain.ReservationStatusCancelled); err != nil {
			return err
		}
		result = map[string]interface{}{
			"status": "cancelled",
			"date":   res.ReservationDate,
			"time":   res.ReservationTime,
			"reason": in.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type customerReservationsArgs struct {
	ReservationDate   string `json:"reservation_date" validate:"required"`
	ReservationStatus string `json:"reservation_status" validate:"required,oneof=PLACED INPROGRESS COMPLETED RESCHEDULED CANCELLED ABSENT"`
}

// ExecuteGetCustomerReservations lists the caller's reservations on a date
// with a given status.
func (m *Manager) ExecuteGetCustomerReservations(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in customerReservationsArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	reservations, err := m.repos.Reservations().ListByClientDateStatus(
		ctx, tc.Client.ID, in.ReservationDate, domain.ReservationStatus(in.ReservationStatus))
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, map[string]interface{}{
			"reservation_id": res.ID,
			"date":           res.ReservationDate,
			"time":           res.ReservationTime,
			"guests":         res.Guests,
			"name":           res.Name,
			"status":         res.Status,
		})
	}
	return map[string]interface{}{"reservations": out}, nil
}

// locateReservation finds the client's reservation on a date. With no time and
// several matches it returns a need_time_selection payload so the assistant
// can ask which one is meant.
func (m *Manager) locateReservation(ctx context.Context, repos repository.RepositoryManager, tc *Context, date, timeOfDay string) (*domain.Reservation, map[string]interface{}, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, nil, err
	}

	matches, err := repos.Reservations().ListByClientAndDate(ctx, tc.Client.ID, date)
	if err != nil {
		return nil, nil, err
	}
	if timeOfDay != "" {
		filtered := matches[:0]
		for _, res := range matches {
			if res.ReservationTime == timeOfDay {
				filtered = append(filtered, res)
			}
		}
		matches = filtered
	}

	// Cancelled or completed rows only disambiguate when nothing open is
	// left; otherwise one open reservation next to an old cancelled one
	// would force a needless time selection.
	open := make([]domain.Reservation, 0, len(matches))
	for _, res := range matches {
		if !res.Status.IsTerminal() {
			open = append(open, res)
		}
	}
	if len(open) > 0 {
		matches = open
	}

	switch len(matches) {
	case 0:
		return nil, nil, fmt.Errorf("no reservation found on %s", date)
	case 1:
		res := matches[0]
		return &res, nil, nil
	default:
		times := make([]string, len(matches))
		for i, res := range matches {
			times[i] = res.ReservationTime
		}
		return nil, map[string]interface{}{
			"status":  "need_time_selection",
			"message": fmt.Sprintf("The customer has several reservations on %s. Ask which time is meant.", date),
			"times":   times,
		}, nil
	}
}
