package tools

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
)

type getMenuItemsArgs struct {
	Category       string `json:"category" validate:"required"`
	Classification string `json:"classification" validate:"required,oneof=MEAT FISH VEGETARIAN VEGAN"`
}

// ExecuteGetMenuItems lists active items of a category and classification.
func (m *Manager) ExecuteGetMenuItems(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in getMenuItemsArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}

	items, err := m.repos.MenuItems().ListActive(ctx, tc.Tenant.Organization.ID, in.Category, domain.MenuClassification(in.Classification))
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		combos, err := m.repos.MenuItems().CombinationNames(ctx, item.ID)
		if err != nil {
			combos = nil
		}
		out = append(out, map[string]interface{}{
			"name":                     item.Name,
			"description":              item.Description,
			"price":                    item.Price,
			"ingredients":              item.Ingredients,
			"allergens":                item.Allergens,
			"macronutrients":           item.Macronutrients,
			"recommended_combinations": combos,
		})
	}
	return map[string]interface{}{"items": out}, nil
}

// ExecuteGetPriorityMenuItems lists upselling-enabled items ordered by
// category then name.
func (m *Manager) ExecuteGetPriorityMenuItems(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	items, err := m.repos.MenuItems().ListUpselling(ctx, tc.Tenant.Organization.ID)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]interface{}{
			"uid":                item.ID,
			"name":               item.Name,
			"upselling_priority": item.UpsellingPriority,
		})
	}
	return map[string]interface{}{"items": out}, nil
}

type recommendationsArgs struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=20"`
}

// ExecuteGetPersonalizedRecommendations tallies the caller's past pre-orders
// and returns the most frequent items.
func (m *Manager) ExecuteGetPersonalizedRecommendations(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in recommendationsArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = 5
	}

	itemIDs, err := m.repos.Reservations().ListMenuItemIDsByClient(ctx, tc.Client.ID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, id := range itemIDs {
		counts[id]++
	}
	type tally struct {
		id    string
		count int
	}
	tallies := make([]tally, 0, len(counts))
	for id, count := range counts {
		tallies = append(tallies, tally{id: id, count: count})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].count != tallies[j].count {
			return tallies[i].count > tallies[j].count
		}
		return tallies[i].id < tallies[j].id
	})
	if len(tallies) > in.Limit {
		tallies = tallies[:in.Limit]
	}

	ids := make([]string, len(tallies))
	for i, t := range tallies {
		ids[i] = t.id
	}
	items, err := m.repos.MenuItems().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]map[string]interface{}, 0, len(tallies))
	for _, t := range tallies {
		item, ok := byID[t.id]
		if !ok {
			continue
		}
		out = append(out, map[string]interface{}{
			"name":        item.Name,
			"category":    item.Category,
			"price":       item.Price,
			"order_count": t.count,
		})
	}
	return map[string]interface{}{"recommendations": out}, nil
}
