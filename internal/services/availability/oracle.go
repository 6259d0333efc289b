package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
)

// ConflictWindowMinutes is the half-width of the interval around a reservation
// time in which its table counts as occupied.
const ConflictWindowMinutes = 90

// Oracle decides whether tables are free and enumerates alternative slots.
type Oracle struct {
	repos repository.RepositoryManager
}

// NewOracle creates an availability oracle.
func NewOracle(repos repository.RepositoryManager) *Oracle {
	return &Oracle{repos: repos}
}

// WithRepos returns an oracle bound to different repositories, used to run
// availability checks inside a caller's transaction.
func (o *Oracle) WithRepos(repos repository.RepositoryManager) *Oracle {
	return &Oracle{repos: repos}
}

// IsTableAvailable reports whether a table is free on a date. When a time is
// given, only open reservations within the conflict window block the table;
// without one, any open reservation on the date does.
func (o *Oracle) IsTableAvailable(ctx context.Context, tableID, date, timeOfDay string) (bool, error) {
	open, err := o.repos.Reservations().ListOpenForTableOnDate(ctx, tableID, date)
	if err != nil {
		return false, err
	}
	if timeOfDay == "" {
		return len(open) == 0, nil
	}

	requested, err := domain.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, err
	}
	for _, res := range open {
		existing, err := domain.ParseTimeOfDay(res.ReservationTime)
		if err != nil {
			continue
		}
		diff := requested - existing
		if diff < 0 {
			diff = -diff
		}
		if diff < ConflictWindowMinutes {
			return false, nil
		}
	}
	return true, nil
}

// CandidateSlots is the fixed grid of times alternatives are drawn from:
// 09:00-14:00 and 18:00-23:30 at 30-minute steps.
func CandidateSlots() []string {
	var slots []string
	appendRange := func(startMin, endMin int) {
		for m := startMin; m <= endMin; m += 30 {
			slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
		}
	}
	appendRange(9*60, 14*60)
	appendRange(18*60, 23*60+30)
	return slots
}

// AlternativeSlots returns up to limit candidate times on the date with at
// least one free table seating the party. Slots already in the past
// (organization-local) are skipped.
func (o *Oracle) AlternativeSlots(ctx context.Context, org *domain.Organization, date string, guests, limit int) ([]string, error) {
	tables, err := o.repos.Tables().ListAvailableByMinCapacity(ctx, org.ID, guests)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 || limit <= 0 {
		return nil, nil
	}

	now := org.Now()
	var out []string
	for _, slot := range CandidateSlots() {
		slotTime, err := domain.CombineDateTime(date, slot, org.Location())
		if err != nil {
			continue
		}
		if slotTime.Before(now) {
			continue
		}
		if o.anyTableFree(ctx, tables, date, slot) {
			out = append(out, slot)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// FindTable returns the smallest free table seating the party at the requested
// slot, or nil when every candidate is taken.
func (o *Oracle) FindTable(ctx context.Context, orgID, date, timeOfDay string, guests int) (*domain.Table, error) {
	tables, err := o.repos.Tables().ListAvailableByMinCapacity(ctx, orgID, guests)
	if err != nil {
		return nil, err
	}
	for i := range tables {
		free, err := o.IsTableAvailable(ctx, tables[i].ID, date, timeOfDay)
		if err != nil {
			return nil, err
		}
		if free {
			return &tables[i], nil
		}
	}
	return nil, nil
}

func (o *Oracle) anyTableFree(ctx context.Context, tables []domain.Table, date, slot string) bool {
	for _, table := range tables {
		free, err := o.IsTableAvailable(ctx, table.ID, date, slot)
		if err == nil && free {
			return true
		}
	}
	return false
}

// ReminderDueAt computes when the reminder for a reservation slot fires.
func ReminderDueAt(org *domain.Organization, date, timeOfDay string) (*time.Time, error) {
	at, err := domain.CombineDateTime(date, timeOfDay, org.Location())
	if err != nil {
		return nil, err
	}
	due := at.Add(-time.Duration(org.ReminderOffsetMinutes) * time.Minute)
	return &due, nil
}
