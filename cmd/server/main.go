package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/adapters/openai"
	"github.com/ClareAI/astra-reserve-service/internal/adapters/twilio"
	"github.com/ClareAI/astra-reserve-service/internal/cache"
	"github.com/ClareAI/astra-reserve-service/internal/config"
	"github.com/ClareAI/astra-reserve-service/internal/handler"
	"github.com/ClareAI/astra-reserve-service/internal/repository"
	"github.com/ClareAI/astra-reserve-service/internal/scheduler"
	"github.com/ClareAI/astra-reserve-service/internal/services/availability"
	"github.com/ClareAI/astra-reserve-service/internal/services/conversation"
	"github.com/ClareAI/astra-reserve-service/internal/services/run"
	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/internal/services/tools"
	"github.com/ClareAI/astra-reserve-service/internal/storage"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.LoadConfig()
	if cfg.MasterPassword == "" {
		logger.Base().Fatal("MASTER_CRYPTO_PASSWORD is required")
	}

	repos, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Fatal("failed to connect to database", zap.Error(err))
	}
	defer repos.Close()

	botCache := cache.NewBotCache()
	resolver := tenant.NewResolver(repos, botCache, cfg.MasterPassword)
	conversations := conversation.NewStore(repos)
	messenger := twilio.NewService()
	oracle := availability.NewOracle(repos)
	menuDocs := storage.NewMenuDocuments(repos, cfg.StaticDir, cfg.PublicBaseURL)
	toolManager := tools.NewManager(repos, oracle, messenger, menuDocs)

	coordinator := run.NewCoordinator(toolManager, conversations, func(apiKey string) run.AssistantAPI {
		return openai.NewClient(cfg.OpenAIBaseURL, apiKey)
	})

	worker := scheduler.NewWorker(repos, resolver, messenger)
	if err := worker.Start(cfg.SchedulerSpec); err != nil {
		logger.Base().Fatal("failed to start scheduler", zap.Error(err))
	}
	defer worker.Stop()

	limiter := handler.NewTenantRateLimiter(cfg.WebhookRatePerMinute)
	webhook := handler.NewWebhookHandler(resolver, conversations, coordinator, messenger, limiter)
	provision := handler.NewProvisionHandler(repos, toolManager, cfg)
	health := handler.NewHealthHandler(repos)

	router := mux.NewRouter()
	handler.RegisterRoutes(router, webhook, provision, health, cfg.StaticDir)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Base().Info("starting server", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Base().Fatal("server stopped", zap.Error(err))
	}
}
