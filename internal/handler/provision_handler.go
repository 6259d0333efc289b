package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/openai"
	"github.com/ClareAI/astra-reserve-service/internal/config"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/prompts"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/services/tools"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/ClareAI/astra-reserve-service/pkg/vault"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProvisionHandler onboards a new restaurant: organization, bot, encrypted
// credentials and a freshly created assistant.
type ProvisionHandler struct {
	repos    repository.RepositoryManager
	tools    *tools.Manager
	cfg      *config.Config
	validate *validator.Validate

	// newAssistantClient is swappable in tests.
	newAssistantClient func(apiKey string) *openai.Client
}

// NewProvisionHandler creates a provisioning handler.
func NewProvisionHandler(repos repository.RepositoryManager, toolManager *tools.Manager, cfg *config.Config) *ProvisionHandler {
	return &ProvisionHandler{
		repos:    repos,
		tools:    toolManager,
		cfg:      cfg,
		validate: validator.New(),
		newAssistantClient: func(apiKey string) *openai.Client {
			return openai.NewClient(cfg.OpenAIBaseURL, apiKey)
		},
	}
}

// ProvisionRequest is the onboarding payload.
type ProvisionRequest struct {
	Name         string                 `json:"name" validate:"required"`
	Address      string                 `json:"address"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email" validate:"omitempty,email"`
	Website      string                 `json:"website"`
	Timezone     string                 `json:"timezone" validate:"required"`
	OpeningHours map[string]interface{} `json:"opening_hours"`

	SalesLevel     int    `json:"sales_level" validate:"required,min=1,max=5"`
	AgentName      string `json:"agent_name"`
	Tone           string `json:"tone"`
	Language       string `json:"language"`
	GatewayAddress string `json:"gateway_address" validate:"required"`

	OpenAIAPIKey string `json:"openai_api_key" validate:"required"`
	GatewaySID   string `json:"gateway_sid" validate:"required"`
	GatewayToken string `json:"gateway_token" validate:"required"`
}

// HandleProvision creates the tenant. The assistant is created remotely first;
// nothing is persisted when that fails.
func (h *ProvisionHandler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	var req ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	org := &domain.Organization{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
		Timezone:     req.Timezone,
		OpeningHours: domain.JSONB(req.OpeningHours),
	}
	bot := &domain.Bot{
		SalesLevel:     req.SalesLevel,
		AgentName:      req.AgentName,
		Tone:           req.Tone,
		Language:       req.Language,
		GatewayAddress: domain.CanonicalAddress(req.GatewayAddress),
	}

	instructions := prompts.Instructions(bot, org)
	assistant, err := h.newAssistantClient(req.OpenAIAPIKey).
		CreateAssistant(ctx, req.Name+" host", instructions, h.tools.Definitions(req.SalesLevel))
	if err != nil {
		logger.Base().Error("assistant creation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not create assistant")
		return
	}

	if err := h.sealCredentials(bot, req, assistant.ID); err != nil {
		logger.Base().Error("credential sealing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store credentials")
		return
	}

	if err := h.repos.WithTx(ctx, func(ctx context.Context, repos repository.RepositoryManager) error {
		if err := repos.Organizations().Create(ctx, org); err != nil {
			return err
		}
		bot.OrganizationID = org.ID
		return repos.Bots().Create(ctx, bot)
	}); err != nil {
		logger.Base().Error("tenant persistence failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not persist tenant")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"organization_id": org.ID,
		"bot_id":          bot.ID,
		"assistant_id":    assistant.ID,
	})
}

// sealCredentials encrypts the third-party secrets onto the bot row.
func (h *ProvisionHandler) sealCredentials(bot *domain.Bot, req ProvisionRequest, assistantID string) error {
	seal := func(plain string) (string, string, error) {
		ct, err := vault.Encrypt(plain, h.cfg.MasterPassword)
		if err != nil {
			return "", "", err
		}
		return ct.Data, ct.Salt, nil
	}

	var err error
	if bot.OpenAIKeyData, bot.OpenAIKeySalt, err = seal(req.OpenAIAPIKey); err != nil {
		return fmt.Errorf("seal openai key: %w", err)
	}
	if bot.AssistantIDData, bot.AssistantIDSalt, err = seal(assistantID); err != nil {
		return fmt.Errorf("seal assistant id: %w", err)
	}
	if bot.GatewaySIDData, bot.GatewaySIDSalt, err = seal(req.GatewaySID); err != nil {
		return fmt.Errorf("seal gateway sid: %w", err)
	}
	if bot.GatewayTokenData, bot.GatewayTokenSalt, err = seal(req.GatewayToken); err != nil {
		return fmt.Errorf("seal gateway token: %w", err)
	}
	bot.GatewaySIDHash = vault.HashKey(req.GatewaySID)
	return nil
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
