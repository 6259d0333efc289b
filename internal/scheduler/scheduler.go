package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/twilio"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// tickTimeout bounds one scheduler pass across all tenants.
const tickTimeout = 5 * time.Minute

// Worker runs the periodic jobs: reservation reminders and promotion
// campaigns. One tick processes every tenant.
type Worker struct {
	repos     repository.RepositoryManager
	resolver  *tenant.Resolver
	messenger twilio.Messenger

	cron *cron.Cron
}

// NewWorker creates a scheduler worker.
func NewWorker(repos repository.RepositoryManager, resolver *tenant.Resolver, messenger twilio.Messenger) *Worker {
	return &Worker{
		repos:     repos,
		resolver:  resolver,
		messenger: messenger,
	}
}

// Start registers the tick on the given cron spec and starts the scheduler.
func (w *Worker) Start(spec string) error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	w.cron.Start()
	logger.Base().Info("scheduler started", zap.String("spec", spec))
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (w *Worker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	if err := w.RunReminders(ctx); err != nil {
		logger.Base().Error("reminder pass failed", zap.Error(err))
	}
	if err := w.RunPromotions(ctx); err != nil {
		logger.Base().Error("promotion pass failed", zap.Error(err))
	}
}

// RunReminders sends the reminder message of every reservation whose due time
// has passed. Send failures are left unmarked so the next tick retries them.
func (w *Worker) RunReminders(ctx context.Context) error {
	due, err := w.repos.Reservations().ListDueReminders(ctx, time.Now())
	if err != nil {
		return err
	}

	for i := range due {
		res := &due[i]
		t, err := w.resolver.ForOrganization(ctx, res.OrganizationID)
		if err != nil {
			logger.Base().Warn("reminder skipped, tenant unresolved",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}
		client, err := w.repos.Clients().GetByID(ctx, res.ClientID)
		if err != nil {
			logger.Base().Warn("reminder skipped, client missing",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}
		creds, err := t.Credentials()
		if err != nil {
			logger.Base().Warn("reminder skipped, credentials unavailable",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}

		body := reminderText(t.Organization, res)
		if err := w.messenger.SendText(creds, t.GatewayAddress(), client.MessagingAddress, body); err != nil {
			logger.Base().Warn("reminder send failed",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}

		res.ReminderSent = true
		if err := w.repos.Reservations().Save(ctx, res); err != nil {
			logger.Base().Error("could not mark reminder sent",
				zap.String("reservation_id", res.ID), zap.Error(err))
		}
	}
	return nil
}

func reminderText(org *domain.Organization, res *domain.Reservation) string {
	return fmt.Sprintf(
		"Hi %s! A reminder of your reservation at %s on %s at %s for %d guests. See you soon!",
		res.Name, org.Name, res.ReservationDate, res.ReservationTime, res.Guests)
}

// RunPromotions evaluates every enabled promotion in its validity window
// against every client of its organization and sends each (promotion, client)
// message at most once.
func (w *Worker) RunPromotions(ctx context.Context) error {
	orgs, err := w.repos.Organizations().List(ctx)
	if err != nil {
		return err
	}

	for i := range orgs {
		org := &orgs[i]
		today := org.Now().Format(domain.DateLayout)
		promos, err := w.repos.Promotions().ListEnabledInWindow(ctx, org.ID, today)
		if err != nil {
			return err
		}
		if len(promos) == 0 {
			continue
		}

		t, err := w.resolver.ForOrganization(ctx, org.ID)
		if err != nil {
			logger.Base().Warn("promotion pass skipped, tenant unresolved",
				zap.String("organization_id", org.ID), zap.Error(err))
			continue
		}
		creds, err := t.Credentials()
		if err != nil {
			logger.Base().Warn("promotion pass skipped, credentials unavailable",
				zap.String("organization_id", org.ID), zap.Error(err))
			continue
		}

		clients, err := w.repos.Clients().ListByOrganization(ctx, org.ID)
		if err != nil {
			return err
		}

		for p := range promos {
			promo := &promos[p]
			for c := range clients {
				client := &clients[c]
				fires, err := w.triggerFires(ctx, org, promo, client)
				if err != nil {
					logger.Base().Warn("trigger evaluation failed",
						zap.String("promotion_id", promo.ID),
						zap.String("client_id", client.ID),
						zap.Error(err))
					continue
				}
				if !fires {
					continue
				}
				if _, err := w.repos.Promotions().GetSentLog(ctx, promo.ID, client.ID); err == nil {
					// Already reached this client, in whatever state.
					continue
				}

				body := promotionText(promo, client)
				status := domain.PromotionSentStatusSent
				if err := w.messenger.SendText(creds, t.GatewayAddress(), client.MessagingAddress, body); err != nil {
					logger.Base().Warn("promotion send failed",
						zap.String("promotion_id", promo.ID),
						zap.String("client_id", client.ID),
						zap.Error(err))
					status = domain.PromotionSentStatusFailed
				}
				if err := w.repos.Promotions().UpsertSentLog(ctx, promo.ID, client.ID, status); err != nil {
					logger.Base().Error("could not record promotion send",
						zap.String("promotion_id", promo.ID),
						zap.String("client_id", client.ID),
						zap.Error(err))
				}
			}
		}
	}
	return nil
}

// triggerFires evaluates one promotion trigger against one client.
func (w *Worker) triggerFires(ctx context.Context, org *domain.Organization, promo *domain.Promotion, client *domain.Client) (bool, error) {
	switch promo.TriggerType {
	case domain.TriggerYearly:
		target := client.DateOfBirth
		if promo.YearlyCategory == domain.YearlyCategoryAnniversary {
			target = client.AnniversaryDate
		}
		if target == "" {
			return false, nil
		}
		return yearlyFiresToday(org.Now(), target, promo.DaysBefore)

	case domain.TriggerInactivity:
		if client.LastVisit == nil || promo.InactivityDays <= 0 {
			return false, nil
		}
		idle := time.Since(*client.LastVisit)
		return idle >= time.Duration(promo.InactivityDays)*24*time.Hour, nil

	case domain.TriggerReservationCount:
		if promo.MinCount <= 0 {
			return false, nil
		}
		count, err := w.repos.Reservations().CountByClientAndStatus(ctx, client.ID, domain.ReservationStatusCompleted)
		if err != nil {
			return false, err
		}
		return count >= int64(promo.MinCount), nil

	case domain.TriggerMenuSelected:
		if promo.MenuItemID == "" {
			return false, nil
		}
		ids, err := w.repos.Reservations().ListMenuItemIDsByClient(ctx, client.ID)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			if id == promo.MenuItemID {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

// yearlyFiresToday reports whether today is exactly daysBefore days ahead of
// this year's (or, late in the year, next year's) occurrence of the stored
// date.
func yearlyFiresToday(now time.Time, storedDate string, daysBefore int) (bool, error) {
	parsed, err := domain.ParseDate(storedDate)
	if err != nil {
		return false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	occurrence := time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if occurrence.Before(today) {
		occurrence = occurrence.AddDate(1, 0, 0)
	}
	return occurrence.AddDate(0, 0, -daysBefore).Equal(today), nil
}

// promotionText renders the outbound message of a promotion. The template's
// {{name}} placeholder expands to the client's display name.
func promotionText(promo *domain.Promotion, client *domain.Client) string {
	body := promo.MessageTemplate
	if body == "" {
		body = fmt.Sprintf("Hi {{name}}! %s is running until %s.", promo.Title, promo.ValidTo)
	}
	name := client.DisplayName
	if name == "" {
		name = "there"
	}
	body = strings.ReplaceAll(body, "{{name}}", name)

	if promo.Reward != nil {
		body += fmt.Sprintf(" Your reward: %s. Quote code %s when booking.", promo.Reward.Label, promo.Reward.PromoCode)
	}
	return body
}
