package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// getRestaurantInformationArgs are the arguments of get_restaurant_information.
type getRestaurantInformationArgs struct {
	Query string `json:"query" validate:"omitempty,oneof=name phone_number email website address location opening_hours contact_info all_info"`
}

// weekdays orders the opening-hours serialization.
var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ExecuteGetRestaurantInformation returns selected fields of the tenant's
// profile.
func (m *Manager) ExecuteGetRestaurantInformation(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	var in getRestaurantInformationArgs
	if err := m.decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Query == "" {
		in.Query = "all_info"
	}

	org := tc.Tenant.Organization
	openingHours := func() []map[string]string {
		out := make([]map[string]string, 0, len(weekdays))
		for _, day := range weekdays {
			hours := "closed"
			if v, ok := org.OpeningHours[day]; ok {
				if s, ok := v.(string); ok && s != "" {
					hours = s
				}
			}
			out = append(out, map[string]string{"day": day, "hours": hours})
		}
		return out
	}

	switch in.Query {
	case "name":
		return map[string]interface{}{"name": org.Name}, nil
	case "phone_number":
		return map[string]interface{}{"phone_number": org.Phone}, nil
	case "email":
		return map[string]interface{}{"email": org.Email}, nil
	case "website":
		return map[string]interface{}{"website": org.Website}, nil
	case "address", "location":
		return map[string]interface{}{"address": org.Address}, nil
	case "opening_hours":
		return map[string]interface{}{"opening_hours": openingHours()}, nil
	case "contact_info":
		return map[string]interface{}{
			"phone_number": org.Phone,
			"email":        org.Email,
			"website":      org.Website,
		}, nil
	default: // all_info
		return map[string]interface{}{
			"name":          org.Name,
			"address":       org.Address,
			"phone_number":  org.Phone,
			"email":         org.Email,
			"website":       org.Website,
			"opening_hours": openingHours(),
		}, nil
	}
}

// ExecuteSendMenuPDF sends the tenant's menu document as a media message and
// flags the turn so the reply path does not send it twice.
func (m *Manager) ExecuteSendMenuPDF(ctx context.Context, tc *Context, args json.RawMessage) (interface{}, error) {
	// The gateway is not idempotent for media; one document per turn.
	if tc.Turn.MediaSent {
		return map[string]interface{}{
			"status":  "already_sent",
			"message": "The menu was already sent to the customer in this conversation turn.",
		}, nil
	}

	url, err := m.menuDocs.MenuDocumentURL(ctx, tc.Tenant.Organization)
	if err != nil {
		return nil, fmt.Errorf("could not prepare the menu document: %v", err)
	}
	if url == "" {
		return nil, fmt.Errorf("no menu document is configured for this restaurant")
	}

	creds, err := tc.Tenant.Credentials()
	if err != nil {
		return nil, fmt.Errorf("messaging is not configured for this restaurant")
	}
	if err := m.messenger.SendMedia(creds, tc.Tenant.GatewayAddress(), tc.Client.MessagingAddress, url); err != nil {
		return nil, fmt.Errorf("failed to send the menu document")
	}

	tc.Turn.MediaSent = true
	return map[string]interface{}{
		"status":  "sent",
		"message": "The menu has been sent to the customer as a document.",
	}, nil
}
