package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/availability"
)

type bookTableArgs struct {
	Name            string   `json:"name" validate:"required"`
	Date            string   `json:"date" validate:"required"`
	Time            string   `json:"time" validate:"required"`
	Guests          int      `json:"guests" validate:"required,min=1,max=100"`
	Phone           string   `json:"phone"`
	Reason          string   `json:"reason"`
	ReasonDate      string   `json:"reason_date"`
	PromoCode       string   `json:"promo_code"`
	Preferences     []string `json:"preferences"`
	Allergens       []string `json:"allergens"`
	DateOfBirth     string   `json:"date_of_birth"`
	AnniversaryDate string   `json:"anniversary_date"`
	SpecialNotes    string   `json:"special_notes"`
}

// ExecuteBookTable books a table for the customer.
func (m *Manager) ExecuteBookTable(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in bookTableArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	org := tc.Tenant.Organization
	if err := rejectPast(org, in.Date, in.Time); err != nil {
		return nil, err
	}

	var result interface{}
	err := m.repos.WithTx(ctx, func(ctx context.Context, repos repository.RepositoryManager) error {
		var err error
		result, err = m.bookTableTx(ctx, repos, tc, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// bookTableTx is the booking path shared by book_table and
// reschedule_reservation. It runs inside the caller's transaction, with
// availability re-checked just before the insert so concurrent bookings of
// the same slot cannot both commit.
func (m *Manager) bookTableTx(ctx context.Context, repos repository.RepositoryManager, tc *Context, in bookTableArgs) (map[string]interface{}, error) {
	org := tc.Tenant.Organization

	client, err := repos.Clients().GetByID(ctx, tc.Client.ID)
	if err != nil {
		return nil, err
	}
	mergeProfile(client, in)
	if err := repos.Clients().Save(ctx, client); err != nil {
		return nil, err
	}

	var promo *domain.Promotion
	if in.PromoCode != "" {
		promo, err = repos.Promotions().GetByRewardCode(ctx, org.ID, in.PromoCode)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("Unknown promo code.")
		}
		if err != nil {
			return nil, err
		}
		today := org.Now().Format(domain.DateLayout)
		if !promo.InWindow(today) {
			return nil, fmt.Errorf("Promo code has expired.")
		}
		if log, err := repos.Promotions().GetSentLog(ctx, promo.ID, client.ID); err == nil &&
			log.Status == domain.PromotionSentStatusUsed {
			return nil, fmt.Errorf("Promo code has already been used.")
		}
	}

	var salesLevelReward string
	if tc.Tenant.SalesLevel() >= 2 {
		if reward, err := repos.Promotions().GetSalesLevelReward(ctx, org.ID); err == nil {
			salesLevelReward = reward.Label
		}
	}

	oracle := m.oracle.WithRepos(repos)
	table, err := oracle.FindTable(ctx, org.ID, in.Date, in.Time, in.Guests)
	if err != nil {
		return nil, err
	}
	if table == nil {
		candidates, err := repos.Tables().ListAvailableByMinCapacity(ctx, org.ID, in.Guests)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return map[string]interface{}{
				"status":  "no_suitable_tables",
				"message": fmt.Sprintf("No tables seat %d guests.", in.Guests),
			}, nil
		}
		slots, err := oracle.AlternativeSlots(ctx, org, in.Date, in.Guests, 3)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"status":            "time_unavailable",
			"message":           fmt.Sprintf("No table is free on %s at %s.", in.Date, in.Time),
			"alternative_slots": slots,
		}, nil
	}

	due, err := availability.ReminderDueAt(org, in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	res := &domain.Reservation{
		OrganizationID:   org.ID,
		ClientID:         client.ID,
		TableID:          table.ID,
		ReservationDate:  in.Date,
		ReservationTime:  in.Time,
		Guests:           in.Guests,
		Name:             in.Name,
		Phone:            in.Phone,
		Status:           domain.ReservationStatusPlaced,
		ReminderDueAt:    due,
		Notes:            in.SpecialNotes,
		Reason:           in.Reason,
		SalesLevelReward: salesLevelReward,
	}
	if promo != nil {
		res.PromoCode = in.PromoCode
	}
	if err := repos.Reservations().Create(ctx, res); err != nil {
		return nil, err
	}
	if promo != nil {
		if err := repos.Promotions().MarkLogUsed(ctx, promo.ID, client.ID); err != nil {
			return nil, err
		}
	}

	payload := map[string]interface{}{
		"status":         "booked",
		"reservation_id": res.ID,
		"table_name":     table.Name,
		"table_category": table.Category,
		"table_capacity": table.Capacity,
		"date":           res.ReservationDate,
		"time":           res.ReservationTime,
		"guests":         res.Guests,
		"name":           res.Name,
	}
	if res.Phone != "" {
		payload["phone"] = res.Phone
	}
	if res.Notes != "" {
		payload["special_notes"] = res.Notes
	}
	if res.PromoCode != "" {
		payload["promo_code"] = res.PromoCode
	}
	if salesLevelReward != "" {
		payload["reward"] = salesLevelReward
	}
	return payload, nil
}

// mergeProfile folds the optional profile arguments of a booking into the
// client row. Preference and allergen lists merge as sets; the yearly dates
// are only set when unset, unless a reason_date disambiguates the occasion.
func mergeProfile(client *domain.Client, in bookTableArgs) {
	client.Preferences = client.Preferences.MergeSet(in.Preferences)
	client.Allergens = client.Allergens.MergeSet(in.Allergens)

	if in.DateOfBirth != "" && client.DateOfBirth == "" {
		client.DateOfBirth = in.DateOfBirth
	}
	if in.AnniversaryDate != "" && client.AnniversaryDate == "" {
		client.AnniversaryDate = in.AnniversaryDate
	}
	if in.ReasonDate != "" {
		reason := strings.ToLower(in.Reason)
		switch {
		case strings.Contains(reason, "birth"):
			client.DateOfBirth = in.ReasonDate
		case strings.Contains(reason, "annivers"):
			client.AnniversaryDate = in.ReasonDate
		}
	}
	if in.SpecialNotes != "" {
		client.SpecialNotes = in.SpecialNotes
	}
}
