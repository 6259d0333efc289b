package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
)

type getAvailableTablesArgs struct {
	Date   string `json:"date" validate:"required"`
	Time   string `json:"time"`
	Guests int    `json:"guests" validate:"required,min=1,max=100"`
}

// ExecuteGetAvailableTables lists free and busy tables for a slot, suggesting
// alternative times when the requested one is full.
func (m *Manager) ExecuteGetAvailableTables(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in getAvailableTablesArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	org := tc.Tenant.Organization
	if err := rejectPast(org, in.Date, in.Time); err != nil {
		return nil, err
	}

	tables, err := m.repos.Tables().ListAvailableByMinCapacity(ctx, org.ID, in.Guests)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return map[string]interface{}{
			"status":  "no_suitable_tables",
			"message": fmt.Sprintf("No tables seat %d guests.", in.Guests),
		}, nil
	}

	available := make([]map[string]interface{}, 0, len(tables))
	busy := make([]map[string]interface{}, 0)
	for _, table := range tables {
		free, err := m.oracle.IsTableAvailable(ctx, table.ID, in.Date, in.Time)
		if err != nil {
			return nil, err
		}
		entry := map[string]interface{}{
			"name":     table.Name,
			"capacity": table.Capacity,
			"category": table.Category,
		}
		if free {
			available = append(available, entry)
		} else {
			busy = append(busy, entry)
		}
	}

	result := map[string]interface{}{
		"date":             in.Date,
		"guests":           in.Guests,
		"available_tables": available,
		"busy_tables":      busy,
	}
	if in.Time != "" {
		result["time"] = in.Time
		if len(available) == 0 {
			slots, err := m.oracle.AlternativeSlots(ctx, org, in.Date, in.Guests, 3)
			if err != nil {
				return nil, err
			}
			result["status"] = "time_unavailable"
			result["alternative_slots"] = slots
		}
	}
	return result, nil
}

// rejectPast fails when the given date (and optional time) is in the past,
// tenant-local. A date without time is accepted for the whole of today.
func rejectPast(org *domain.Organization, date, timeOfDay string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return err
	}
	if timeOfDay != "" {
		if _, err := domain.ParseTimeOfDay(timeOfDay); err != nil {
			return err
		}
	}

	now := org.Now()
	if timeOfDay == "" {
		today := now.Format(domain.DateLayout)
		if date < today {
			return fmt.Errorf("the date %s is in the past", date)
		}
		return nil
	}

	at, err := domain.CombineDateTime(date, timeOfDay, org.Location())
	if err != nil {
		return err
	}
	if at.Before(now) {
		return fmt.Errorf("the requested time %s %s is in the past", date, timeOfDay)
	}
	return nil
}
