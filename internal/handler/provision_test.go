package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ClareAI/astra-reserve-service/internal/cache"
	"github.com/ClareAI/astra-reserve-service/internal/config"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/availability"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/internal/services/tools"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAssistantServer mimics the assistant-creation endpoint and records the
// last request body.
func fakeAssistantServer(t *testing.T, fail bool) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var lastBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/assistants", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"message":"boom"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"asst_new"}`)
	}))
	t.Cleanup(server.Close)
	return server, &lastBody
}

func setupProvision(t *testing.T, assistantURL string) (*ProvisionHandler, repository.RepositoryManager, *config.Config) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	repos := repository.NewGormRepositoryManager(db)

	cfg := &config.Config{
		MasterPassword: "master-pw",
		OpenAIBaseURL:  assistantURL,
	}
	manager := tools.NewManager(repos, availability.NewOracle(repos), nil, nil)
	return NewProvisionHandler(repos, manager, cfg), repos, cfg
}

func provisionBody() map[string]interface{} {
	return map[string]interface{}{
		"name":            "Trattoria Bella",
		"address":         "Main Street 1",
		"phone":           "+49301234567",
		"email":           "hello@bella.example",
		"timezone":        "Europe/Berlin",
		"opening_hours":   map[string]interface{}{"monday": "12:00-23:00"},
		"sales_level":     3,
		"agent_name":      "Giulia",
		"tone":            "playful",
		"language":        "Italian",
		"gateway_address": "whatsapp:+4915100000000",
		"openai_api_key":  "sk-live-123",
		"gateway_sid":     "AC999",
		"gateway_token":   "token-xyz",
	}
}

func postProvision(t *testing.T, h *ProvisionHandler, body map[string]interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/tenants", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleProvision(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestHandleProvisionCreatesTenant(t *testing.T) {
	server, lastBody := fakeAssistantServer(t, false)
	h, repos, cfg := setupProvision(t, server.URL)

	rec, out := postProvision(t, h, provisionBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "asst_new", out["assistant_id"])
	assert.NotEmpty(t, out["organization_id"])
	assert.NotEmpty(t, out["bot_id"])

	// The assistant carries the tenant's persona and level-3 toolset.
	require.NotNil(t, *lastBody)
	instructions := (*lastBody)["instructions"].(string)
	assert.Contains(t, instructions, "Giulia")
	assert.Contains(t, instructions, "Trattoria Bella")
	assert.Len(t, (*lastBody)["tools"].([]interface{}), 13)

	// The stored bot resolves and its credentials decrypt.
	resolver := tenant.NewResolver(repos, cache.NewBotCache(), cfg.MasterPassword)
	tn, err := resolver.Resolve(context.Background(), "+4915100000000")
	require.NoError(t, err)
	assert.Equal(t, "+4915100000000", tn.GatewayAddress())
	assert.Equal(t, 3, tn.SalesLevel())

	creds, err := tn.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "sk-live-123", creds.OpenAIKey)
	assert.Equal(t, "asst_new", creds.AssistantID)
	assert.Equal(t, "AC999", creds.GatewaySID)
	assert.Equal(t, "token-xyz", creds.GatewayToken)
	assert.NotEmpty(t, tn.Bot.GatewaySIDHash)
}

func TestHandleProvisionAssistantFailure(t *testing.T) {
	server, _ := fakeAssistantServer(t, true)
	h, repos, _ := setupProvision(t, server.URL)

	rec, out := postProvision(t, h, provisionBody())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotEmpty(t, out["error"])

	// Nothing is persisted when the remote call fails.
	orgs, err := repos.Organizations().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestHandleProvisionValidation(t *testing.T) {
	server, _ := fakeAssistantServer(t, false)
	h, _, _ := setupProvision(t, server.URL)

	for _, field := range []string{"name", "timezone", "gateway_address", "openai_api_key"} {
		body := provisionBody()
		delete(body, field)
		rec, _ := postProvision(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "missing %s", field)
	}

	body := provisionBody()
	body["sales_level"] = 7
	rec, _ := postProvision(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
