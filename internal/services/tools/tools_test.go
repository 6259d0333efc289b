package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/availability"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMessage struct {
	from, to, body, mediaURL string
}

type fakeMessenger struct {
	texts []sentMessage
	media []sentMessage
	fail  bool
}

func (f *fakeMessenger) SendText(creds *tenant.Credentials, from, to, body string) error {
	if f.fail {
		return fmt.Errorf("gateway down")
	}
	f.texts = append(f.texts, sentMessage{from: from, to: to, body: body})
	return nil
}

func (f *fakeMessenger) SendMedia(creds *tenant.Credentials, from, to, mediaURL string) error {
	if f.fail {
		return fmt.Errorf("gateway down")
	}
	f.media = append(f.media, sentMessage{from: from, to: to, mediaURL: mediaURL})
	return nil
}

type fakeMenuDocs struct {
	url string
	err error
}

func (f *fakeMenuDocs) MenuDocumentURL(ctx context.Context, org *domain.Organization) (string, error) {
	return f.url, f.err
}

type harness struct {
	repos     repository.RepositoryManager
	manager   *Manager
	messenger *fakeMessenger
	org       *domain.Organization
	bot       *domain.Bot
	client    *domain.Client
	tc        *Context
}

func newHarness(t *testing.T, salesLevel int) *harness {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	repos := repository.NewGormRepositoryManager(db)
	ctx := context.Background()

	org := &domain.Organization{
		Name:     "Trattoria Bella",
		Address:  "Main Street 1",
		Phone:    "+49301234567",
		Email:    "hello@bella.example",
		Website:  "https://bella.example",
		Timezone: "UTC",
		OpeningHours: domain.JSONB{
			"monday": "12:00-23:00",
			"friday": "12:00-01:00",
		},
		ReminderOffsetMinutes: 120,
	}
	require.NoError(t, repos.Organizations().Create(ctx, org))

	bot := &domain.Bot{
		OrganizationID: org.ID,
		SalesLevel:     salesLevel,
		GatewayAddress: "+4915111111111",
	}
	require.NoError(t, repos.Bots().Create(ctx, bot))

	client, _, err := repos.Clients().GetOrCreate(ctx, org.ID, "+4917012345678")
	require.NoError(t, err)

	messenger := &fakeMessenger{}
	manager := NewManager(repos, availability.NewOracle(repos), messenger, &fakeMenuDocs{url: "https://bella.example/static/menus/menu.pdf"})

	return &harness{
		repos:     repos,
		manager:   manager,
		messenger: messenger,
		org:       org,
		bot:       bot,
		client:    client,
		tc: &Context{
			Tenant: &tenant.Tenant{Bot: bot, Organization: org},
			Client: client,
			Turn:   &TurnState{},
		},
	}
}

func (h *harness) addTable(t *testing.T, name string, capacity int) *domain.Table {
	t.Helper()
	table := &domain.Table{OrganizationID: h.org.ID, Name: name, Capacity: capacity}
	require.NoError(t, h.repos.Tables().Create(context.Background(), table))
	return table
}

func (h *harness) addMenuItem(t *testing.T, name, category string, class domain.MenuClassification, upselling bool) *domain.MenuItem {
	t.Helper()
	item := &domain.MenuItem{
		OrganizationID:  h.org.ID,
		Name:            name,
		Category:        category,
		Classification:  class,
		Price:           12,
		EnableUpselling: upselling,
	}
	require.NoError(t, h.repos.MenuItems().Create(context.Background(), item))
	return item
}

// execute runs a tool through the dispatcher and decodes the JSON result.
func (h *harness) execute(t *testing.T, tool string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	payload, err := json.Marshal(args)
	require.NoError(t, err)
	raw := h.manager.Execute(context.Background(), tool, string(payload), h.tc)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestDefinitionsSalesLevelGating(t *testing.T) {
	h := newHarness(t, 1)

	names := func(level int) []string {
		var out []string
		for _, def := range h.manager.Definitions(level) {
			fn := def.(map[string]interface{})["function"].(map[string]interface{})
			out = append(out, fn["name"].(string))
		}
		return out
	}

	level1 := names(1)
	assert.Contains(t, level1, "book_table")
	assert.Contains(t, level1, "get_restaurant_information")
	assert.NotContains(t, level1, "get_available_promotions")
	assert.NotContains(t, level1, "get_priority_menu_items")
	assert.NotContains(t, level1, "get_personalized_recommendations")

	level2 := names(2)
	assert.Contains(t, level2, "get_available_promotions")
	assert.NotContains(t, level2, "get_priority_menu_items")

	level3 := names(3)
	assert.Contains(t, level3, "get_priority_menu_items")
	assert.Contains(t, level3, "get_personalized_recommendations")
	assert.Len(t, level3, 13)
}

func TestExecuteUnknownAndGatedTools(t *testing.T) {
	h := newHarness(t, 1)

	out := h.execute(t, "summon_dragon", nil)
	assert.Contains(t, out["error"], "unknown tool")

	out = h.execute(t, "get_available_promotions", nil)
	assert.Contains(t, out["error"], "not available")
}

func TestGetRestaurantInformation(t *testing.T) {
	h := newHarness(t, 1)

	out := h.execute(t, "get_restaurant_information", map[string]interface{}{"query": "phone_number"})
	assert.Equal(t, "+49301234567", out["phone_number"])

	out = h.execute(t, "get_restaurant_information", nil)
	assert.Equal(t, "Trattoria Bella", out["name"])
	hours := out["opening_hours"].([]interface{})
	require.Len(t, hours, 7)
	monday := hours[0].(map[string]interface{})
	assert.Equal(t, "monday", monday["day"])
	assert.Equal(t, "12:00-23:00", monday["hours"])
	tuesday := hours[1].(map[string]interface{})
	assert.Equal(t, "closed", tuesday["hours"])
}

func TestSendMenuPDF(t *testing.T) {
	h := newHarness(t, 1)

	out := h.execute(t, "send_menu_pdf", nil)
	assert.Equal(t, "sent", out["status"])
	assert.True(t, h.tc.Turn.MediaSent)
	require.Len(t, h.messenger.media, 1)
	assert.Equal(t, "https://bella.example/static/menus/menu.pdf", h.messenger.media[0].mediaURL)
	assert.Equal(t, "+4915111111111", h.messenger.media[0].from)
	assert.Equal(t, "+4917012345678", h.messenger.media[0].to)
}

func TestSendMenuPDFOncePerTurn(t *testing.T) {
	h := newHarness(t, 1)

	out := h.execute(t, "send_menu_pdf", nil)
	require.Equal(t, "sent", out["status"])

	// A second request within the same turn must not reach the gateway.
	out = h.execute(t, "send_menu_pdf", nil)
	assert.Equal(t, "already_sent", out["status"])
	assert.Len(t, h.messenger.media, 1)

	// A fresh turn may send again.
	h.tc.Turn = &TurnState{}
	out = h.execute(t, "send_menu_pdf", nil)
	assert.Equal(t, "sent", out["status"])
	assert.Len(t, h.messenger.media, 2)
}

func TestGetMenuItems(t *testing.T) {
	h := newHarness(t, 1)
	carbonara := h.addMenuItem(t, "Spaghetti Carbonara", "mains", domain.MenuClassificationMeat, false)
	side := h.addMenuItem(t, "Garlic Bread", "sides", domain.MenuClassificationVegetarian, false)
	require.NoError(t, h.repos.MenuItems().AddCombination(context.Background(), carbonara.ID, side.ID))

	out := h.execute(t, "get_menu_items", map[string]interface{}{
		"category": "mains", "classification": "MEAT",
	})
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Spaghetti Carbonara", item["name"])
	assert.Equal(t, []interface{}{"Garlic Bread"}, item["recommended_combinations"])

	out = h.execute(t, "get_menu_items", map[string]interface{}{"category": "mains"})
	assert.Contains(t, out, "error")
}

func TestBookTableSuccess(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "Large", 8)
	small := h.addTable(t, "Small", 2)

	out := h.execute(t, "book_table", map[string]interface{}{
		"name":        "Anna",
		"date":        "2030-06-01",
		"time":        "19:00",
		"guests":      2,
		"phone":       "+4917012345678",
		"preferences": []string{"window seat"},
	})

	assert.Equal(t, "booked", out["status"])
	assert.Equal(t, "Small", out["table_name"])
	assert.NotEmpty(t, out["reservation_id"])
	assert.Equal(t, "2030-06-01", out["date"])
	assert.Equal(t, "19:00", out["time"])

	res, err := h.repos.Reservations().GetByID(context.Background(), out["reservation_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPlaced, res.Status)
	assert.Equal(t, small.ID, res.TableID)
	require.NotNil(t, res.ReminderDueAt)

	client, err := h.repos.Clients().GetByID(context.Background(), h.client.ID)
	require.NoError(t, err)
	assert.True(t, client.Preferences.Contains("window seat"))
}

func TestBookTableConflictSuggestsAlternatives(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "Only", 4)

	first := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", first["status"])

	second := h.execute(t, "book_table", map[string]interface{}{
		"name": "Ben", "date": "2030-06-01", "time": "19:30", "guests": 2,
	})
	assert.Equal(t, "time_unavailable", second["status"])
	slots := second["alternative_slots"].([]interface{})
	require.NotEmpty(t, slots)
	assert.LessOrEqual(t, len(slots), 3)
	assert.Equal(t, "09:00", slots[0])
}

func TestBookTableNoSuitableTables(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "Small", 2)

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 10,
	})
	assert.Equal(t, "no_suitable_tables", out["status"])
}

func TestBookTableRejectsPast(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2020-01-01", "time": "19:00", "guests": 2,
	})
	assert.Contains(t, out["error"], "past")
}

func seedPromo(t *testing.T, h *harness, from, to string) *domain.Promotion {
	t.Helper()
	ctx := context.Background()
	reward := &domain.Reward{
		OrganizationID: h.org.ID,
		Type:           domain.RewardTypeDessert,
		Label:          "Free tiramisu",
	}
	require.NoError(t, h.repos.Promotions().CreateReward(ctx, reward))
	promo := &domain.Promotion{
		OrganizationID: h.org.ID,
		Title:          "Dolce days",
		ValidFrom:      from,
		ValidTo:        to,
		TriggerType:    domain.TriggerReservationCount,
		MinCount:       1,
		RewardID:       reward.ID,
	}
	require.NoError(t, h.repos.Promotions().CreatePromotion(ctx, promo))
	promo.Reward = reward
	return promo
}

func TestBookTableWithPromoCode(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	promo := seedPromo(t, h, "2020-01-01", "2099-12-31")

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
		"promo_code": promo.Reward.PromoCode,
	})
	require.Equal(t, "booked", out["status"])
	assert.Equal(t, promo.Reward.PromoCode, out["promo_code"])

	log, err := h.repos.Promotions().GetSentLog(context.Background(), promo.ID, h.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PromotionSentStatusUsed, log.Status)

	// The code is single use per client.
	again := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-02", "time": "19:00", "guests": 2,
		"promo_code": promo.Reward.PromoCode,
	})
	assert.Contains(t, again["error"], "already been used")
}

func TestBookTablePromoCodeErrors(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	expired := seedPromo(t, h, "2020-01-01", "2020-12-31")

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
		"promo_code": "ZZZ99999",
	})
	assert.Contains(t, out["error"], "Unknown promo code")

	out = h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
		"promo_code": expired.Reward.PromoCode,
	})
	assert.Contains(t, out["error"], "expired")
}

func TestBookTableSalesLevelReward(t *testing.T) {
	h := newHarness(t, 2)
	h.addTable(t, "T1", 4)
	require.NoError(t, h.repos.Promotions().CreateReward(context.Background(), &domain.Reward{
		OrganizationID: h.org.ID,
		Type:           domain.RewardTypeDrink,
		Label:          "Welcome spritz",
		Category:       domain.RewardCategorySalesLevel,
	}))

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", out["status"])
	assert.Equal(t, "Welcome spritz", out["reward"])
}

func TestBookTableOccasionUpdatesProfile(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	out := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
		"reason": "Birthday dinner", "reason_date": "1990-06-01",
	})
	require.Equal(t, "booked", out["status"])

	client, err := h.repos.Clients().GetByID(context.Background(), h.client.ID)
	require.NoError(t, err)
	assert.Equal(t, "1990-06-01", client.DateOfBirth)
}

func TestAddMenuToReservation(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	h.addMenuItem(t, "Tiramisu", "desserts", domain.MenuClassificationVegetarian, false)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])

	out := h.execute(t, "add_menu_to_reservation", map[string]interface{}{
		"reservation_uid": booked["reservation_id"],
		"items": []map[string]interface{}{
			{"menu_name": "tiramisu"},
			{"menu_name": "Unicorn Steak"},
		},
	})
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, []interface{}{"Tiramisu"}, out["attached"])
	assert.Equal(t, []interface{}{"Unicorn Steak"}, out["not_found"])
}

func TestRescheduleReservation(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])

	out := h.execute(t, "reschedule_reservation", map[string]interface{}{
		"original_date": "2030-06-01",
		"date":          "2030-06-02",
	})
	assert.Equal(t, "rescheduled", out["status"])
	assert.Equal(t, "2030-06-02", out["date"])
	assert.Equal(t, "19:00", out["time"])
	assert.Equal(t, "2030-06-01", out["original_date"])

	original, err := h.repos.Reservations().GetByID(context.Background(), booked["reservation_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusRescheduled, original.Status)

	replacement, err := h.repos.Reservations().GetByID(context.Background(), out["reservation_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPlaced, replacement.Status)
	assert.Equal(t, "Anna", replacement.Name)
	assert.Equal(t, 2, replacement.Guests)
}

func TestRescheduleNeedsTimeSelection(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	h.addTable(t, "T2", 4)

	for _, tod := range []string{"12:00", "19:00"} {
		out := h.execute(t, "book_table", map[string]interface{}{
			"name": "Anna", "date": "2030-06-01", "time": tod, "guests": 2,
		})
		require.Equal(t, "booked", out["status"])
	}

	out := h.execute(t, "reschedule_reservation", map[string]interface{}{
		"original_date": "2030-06-01",
		"date":          "2030-06-05",
	})
	assert.Equal(t, "need_time_selection", out["status"])
	assert.Equal(t, []interface{}{"12:00", "19:00"}, out["times"])

	// With the time given, the move goes through.
	out = h.execute(t, "reschedule_reservation", map[string]interface{}{
		"original_date": "2030-06-01",
		"original_time": "12:00",
		"date":          "2030-06-05",
	})
	assert.Equal(t, "rescheduled", out["status"])
}

func TestRescheduleRefusesTerminal(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	res, err := h.repos.Reservations().GetByID(context.Background(), booked["reservation_id"].(string))
	require.NoError(t, err)
	require.NoError(t, h.repos.Reservations().Transition(context.Background(), res, domain.ReservationStatusCancelled))

	out := h.execute(t, "reschedule_reservation", map[string]interface{}{
		"original_date": "2030-06-01",
		"date":          "2030-06-02",
	})
	assert.Contains(t, out["error"], "CANCELLED")
}

func TestRescheduleIgnoresCancelledWhenOpenExists(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	h.addTable(t, "T2", 4)

	cancelled := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "12:00", "guests": 2,
	})
	res, err := h.repos.Reservations().GetByID(context.Background(), cancelled["reservation_id"].(string))
	require.NoError(t, err)
	require.NoError(t, h.repos.Reservations().Transition(context.Background(), res, domain.ReservationStatusCancelled))

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])

	// The cancelled sibling on the same day must not force a time selection.
	out := h.execute(t, "reschedule_reservation", map[string]interface{}{
		"original_date": "2030-06-01",
		"date":          "2030-06-02",
	})
	assert.Equal(t, "rescheduled", out["status"])
	assert.Equal(t, "19:00", out["original_time"])
}

func TestCancelReservation(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])

	out := h.execute(t, "cancel_reservation", map[string]interface{}{
		"reservation_date": "2030-06-01",
		"reason":           "change of plans",
	})
	assert.Equal(t, "cancelled", out["status"])

	res, err := h.repos.Reservations().GetByID(context.Background(), booked["reservation_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, res.Status)
	assert.Equal(t, domain.CancelledByCustomer, res.CancelledBy)
	assert.Equal(t, "change of plans", res.CancellationReason)

	// A second cancel hits the terminal state.
	out = h.execute(t, "cancel_reservation", map[string]interface{}{
		"reservation_date": "2030-06-01",
		"reason":           "again",
	})
	assert.Contains(t, out["error"], "CANCELLED")
}

func TestGetCustomerReservations(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)
	h.addTable(t, "T2", 4)

	for _, tod := range []string{"12:00", "19:00"} {
		out := h.execute(t, "book_table", map[string]interface{}{
			"name": "Anna", "date": "2030-06-01", "time": tod, "guests": 2,
		})
		require.Equal(t, "booked", out["status"])
	}

	out := h.execute(t, "get_customer_reservations", map[string]interface{}{
		"reservation_date":   "2030-06-01",
		"reservation_status": "PLACED",
	})
	reservations := out["reservations"].([]interface{})
	assert.Len(t, reservations, 2)

	out = h.execute(t, "get_customer_reservations", map[string]interface{}{
		"reservation_date":   "2030-06-01",
		"reservation_status": "CANCELLED",
	})
	assert.Empty(t, out["reservations"])

	out = h.execute(t, "get_customer_reservations", map[string]interface{}{
		"reservation_date": "2030-06-01",
	})
	assert.Contains(t, out, "error")
}

func TestGetAvailableTables(t *testing.T) {
	h := newHarness(t, 1)
	h.addTable(t, "T1", 4)

	out := h.execute(t, "get_available_tables", map[string]interface{}{
		"date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	available := out["available_tables"].([]interface{})
	require.Len(t, available, 1)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])

	out = h.execute(t, "get_available_tables", map[string]interface{}{
		"date": "2030-06-01", "time": "19:30", "guests": 2,
	})
	assert.Equal(t, "time_unavailable", out["status"])
	assert.Empty(t, out["available_tables"])
	assert.NotEmpty(t, out["alternative_slots"])
}

func TestGetAvailablePromotions(t *testing.T) {
	h := newHarness(t, 2)
	seedPromo(t, h, "2020-01-01", "2099-12-31")
	seedExpired := &domain.Promotion{
		OrganizationID: h.org.ID,
		Title:          "Long gone",
		ValidFrom:      "2019-01-01",
		ValidTo:        "2019-12-31",
		TriggerType:    domain.TriggerReservationCount,
		MinCount:       1,
	}
	require.NoError(t, h.repos.Promotions().CreatePromotion(context.Background(), seedExpired))

	out := h.execute(t, "get_available_promotions", nil)
	promos := out["promotions"].([]interface{})
	require.Len(t, promos, 1)
	promo := promos[0].(map[string]interface{})
	assert.Equal(t, "Dolce days", promo["title"])
	assert.Equal(t, "Free tiramisu", promo["reward"])
	assert.NotEmpty(t, promo["promo_code"])
}

func TestClientProfileUpdate(t *testing.T) {
	h := newHarness(t, 1)

	out := h.execute(t, "client_profile_update", map[string]interface{}{
		"preferences":   []string{"terrace"},
		"allergens":     []string{"peanuts"},
		"date_of_birth": "1990-06-01",
	})
	assert.Equal(t, "updated", out["status"])

	client, err := h.repos.Clients().GetByID(context.Background(), h.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"terrace"}, client.Preferences)
	assert.Equal(t, domain.StringList{"peanuts"}, client.Allergens)
	assert.Equal(t, "1990-06-01", client.DateOfBirth)

	// Omitted fields stay untouched, provided lists overwrite.
	out = h.execute(t, "client_profile_update", map[string]interface{}{
		"preferences": []string{"window seat"},
	})
	assert.Equal(t, "updated", out["status"])
	client, err = h.repos.Clients().GetByID(context.Background(), h.client.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"window seat"}, client.Preferences)
	assert.Equal(t, "1990-06-01", client.DateOfBirth)

	out = h.execute(t, "client_profile_update", map[string]interface{}{})
	assert.Contains(t, out["error"], "nothing to update")
}

func TestPersonalizedRecommendations(t *testing.T) {
	h := newHarness(t, 3)
	h.addTable(t, "T1", 4)
	tiramisu := h.addMenuItem(t, "Tiramisu", "desserts", domain.MenuClassificationVegetarian, false)
	espresso := h.addMenuItem(t, "Espresso", "drinks", domain.MenuClassificationVegan, false)

	booked := h.execute(t, "book_table", map[string]interface{}{
		"name": "Anna", "date": "2030-06-01", "time": "19:00", "guests": 2,
	})
	require.Equal(t, "booked", booked["status"])
	resID := booked["reservation_id"].(string)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, h.repos.Reservations().AttachMenuItem(ctx, &domain.ReservationMenuItem{
			ReservationID: resID, MenuItemID: tiramisu.ID,
		}))
	}
	require.NoError(t, h.repos.Reservations().AttachMenuItem(ctx, &domain.ReservationMenuItem{
		ReservationID: resID, MenuItemID: espresso.ID,
	}))

	out := h.execute(t, "get_personalized_recommendations", nil)
	recs := out["recommendations"].([]interface{})
	require.Len(t, recs, 2)
	first := recs[0].(map[string]interface{})
	assert.Equal(t, "Tiramisu", first["name"])
	assert.Equal(t, float64(2), first["order_count"])
}

func TestPriorityMenuItems(t *testing.T) {
	h := newHarness(t, 3)
	h.addMenuItem(t, "House Wine", "drinks", domain.MenuClassificationVegan, true)
	h.addMenuItem(t, "Water", "drinks", domain.MenuClassificationVegan, false)

	out := h.execute(t, "get_priority_menu_items", nil)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "House Wine", items[0].(map[string]interface{})["name"])
}
