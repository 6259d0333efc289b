package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/gorilla/mux"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	repos repository.RepositoryManager
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(repos repository.RepositoryManager) *HealthHandler {
	return &HealthHandler{repos: repos}
}

// HandleHealth answers liveness probes, checking the database connection.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.repos.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// RegisterRoutes wires every HTTP route onto the router.
func RegisterRoutes(router *mux.Router, webhook *WebhookHandler, provision *ProvisionHandler, health *HealthHandler, staticDir string) {
	router.Use(LoggingMiddleware)

	router.HandleFunc("/webhook/whatsapp", webhook.HandleInbound).Methods("POST")
	router.HandleFunc("/admin/tenants", provision.HandleProvision).Methods("POST")
	router.HandleFunc("/health", health.HandleHealth).Methods("GET")

	router.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
}
