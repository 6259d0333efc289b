package tools

import (
	"context"
	"encoding/json"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
)

// ExecuteGetAvailablePromotions lists the promotions running today, with the
// reward and promo code the customer can quote when booking.
func (m *Manager) ExecuteGetAvailablePromotions(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	org := tc.Tenant.Organization
	today := org.Now().Format(domain.DateLayout)

	promotions, err := m.repos.Promotions().ListEnabledInWindow(ctx, org.ID, today)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(promotions))
	for _, promo := range promotions {
		entry := map[string]interface{}{
			"title":      promo.Title,
			"valid_from": promo.ValidFrom,
			"valid_to":   promo.ValidTo,
		}
		if promo.Reward != nil {
			entry["reward"] = promo.Reward.Label
			entry["promo_code"] = promo.Reward.PromoCode
		}
		out = append(out, entry)
	}
	return map[string]interface{}{"promotions": out}, nil
}
