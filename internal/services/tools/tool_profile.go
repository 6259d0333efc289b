package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
)

type profileUpdateArgs struct {
	Preferences     []string `json:"preferences"`
	Allergens       []string `json:"allergens"`
	DateOfBirth     string   `json:"date_of_birth"`
	AnniversaryDate string   `json:"anniversary_date"`
}

// ExecuteClientProfileUpdate overwrites the provided profile fields of the
// caller. Omitted fields are left as they are.
func (m *Manager) ExecuteClientProfileUpdate(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in profileUpdateArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Preferences == nil && in.Allergens == nil && in.DateOfBirth == "" && in.AnniversaryDate == "" {
		return nil, fmt.Errorf("nothing to update")
	}
	if in.DateOfBirth != "" {
		if _, err := domain.ParseDate(in.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if in.AnniversaryDate != "" {
		if _, err := domain.ParseDate(in.AnniversaryDate); err != nil {
			return nil, err
		}
	}

	client, err := m.repos.Clients().GetByID(ctx, tc.Client.ID)
	if err != nil {
		return nil, err
	}
	if in.Preferences != nil {
		client.Preferences = domain.StringList(in.Preferences)
	}
	if in.Allergens != nil {
		client.Allergens = domain.StringList(in.Allergens)
	}
	if in.DateOfBirth != "" {
		client.DateOfBirth = in.DateOfBirth
	}
	if in.AnniversaryDate != "" {
		client.AnniversaryDate = in.AnniversaryDate
	}
	if err := m.repos.Clients().Save(ctx, client); err != nil {
		return nil, err
	}

	*tc.Client = *client
	return map[string]interface{}{
		"status":           "updated",
		"preferences":      client.Preferences,
		"allergens":        client.Allergens,
		"date_of_birth":    client.DateOfBirth,
		"anniversary_date": client.AnniversaryDate,
	}, nil
}
