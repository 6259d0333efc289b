package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/twilio"
	"github.com/ClareAI/astra-reserve-service/internal/domain"
	"github.com/ClareAI/astra-reserve-service/internal/services/conversation"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/internal/services/tools"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/ClareAI/astra-reserve-service/pkg/vault"
	"go.uber.org/zap"
)

// fallbackReply is sent to the customer when a turn fails for any reason.
const fallbackReply = "Sorry, something went wrong. Please try again."

// TurnHandler drives one assistant turn for one inbound message.
type TurnHandler interface {
	HandleTurn(ctx context.Context, t *tenant.Tenant, client *domain.Client, text string) (string, *tools.TurnState, error)
}

// WebhookHandler receives inbound WhatsApp messages from the gateway.
type WebhookHandler struct {
	resolver      *tenant.Resolver
	conversations *conversation.Store
	coordinator   TurnHandler
	messenger     twilio.Messenger
	limiter       *TenantRateLimiter
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(resolver *tenant.Resolver, conversations *conversation.Store, coordinator TurnHandler, messenger twilio.Messenger, limiter *TenantRateLimiter) *WebhookHandler {
	return &WebhookHandler{
		resolver:      resolver,
		conversations: conversations,
		coordinator:   coordinator,
		messenger:     messenger,
		limiter:       limiter,
	}
}

// HandleInbound processes one form-encoded gateway callback. The gateway
// retries non-200 responses, so malformed payloads are acknowledged with an
// error status instead of a 4xx.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	to := r.PostFormValue("To")
	sid := r.PostFormValue("AccountSid")
	if from == "" || body == "" || to == "" || sid == "" {
		logger.Base().Warn("webhook missing fields",
			zap.Bool("has_from", from != ""),
			zap.Bool("has_body", body != ""),
			zap.Bool("has_to", to != ""),
			zap.Bool("has_account_sid", sid != ""))
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	ctx := r.Context()
	t, err := h.resolver.Resolve(ctx, to)
	if err != nil {
		logger.Base().Warn("webhook for unknown tenant",
			zap.String("to", domain.CanonicalAddress(to)),
			zap.Error(err))
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	// The gateway sends its account sid with every callback; when the tenant
	// has one on file, a mismatch means the call is not from our gateway.
	if t.Bot.GatewaySIDHash != "" && vault.HashKey(sid) != t.Bot.GatewaySIDHash {
		logger.Base().Warn("webhook account sid mismatch", zap.String("bot_id", t.Bot.ID))
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	if h.limiter != nil && !h.limiter.Allow(t.Bot.ID) {
		logger.Base().Warn("webhook rate limited", zap.String("bot_id", t.Bot.ID))
		writeJSONStatus(w, http.StatusTooManyRequests, "error")
		return
	}

	client, _, err := h.conversations.GetOrCreate(ctx, t.Organization, from)
	if err != nil {
		logger.Base().Error("could not resolve client", zap.Error(err))
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	reply, turn, err := h.coordinator.HandleTurn(ctx, t, client, body)
	if err != nil {
		logger.Base().Error("turn failed",
			zap.String("client_id", client.ID),
			zap.Error(err))
		h.sendReply(t, client, fallbackReply)
		writeJSONStatus(w, http.StatusOK, "error")
		return
	}

	// A turn that only sent media may legitimately have no text reply.
	if reply != "" {
		h.sendReply(t, client, reply)
	} else if turn == nil || !turn.MediaSent {
		h.sendReply(t, client, fallbackReply)
	}
	writeJSONStatus(w, http.StatusOK, "ok")
}

func (h *WebhookHandler) sendReply(t *tenant.Tenant, client *domain.Client, body string) {
	creds, err := t.Credentials()
	if err != nil {
		logger.Base().Error("cannot send reply, credentials unavailable", zap.Error(err))
		return
	}
	if err := h.messenger.SendText(creds, t.GatewayAddress(), client.MessagingAddress, body); err != nil {
		logger.Base().Error("reply send failed",
			zap.String("client_id", client.ID),
			zap.Error(err))
	}
}

func writeJSONStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
