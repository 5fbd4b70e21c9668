package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paysentinel/sentinel/internal/api/handlers"
	mw "github.com/paysentinel/sentinel/internal/api/middleware"
	"github.com/paysentinel/sentinel/internal/config"
	"github.com/paysentinel/sentinel/internal/domain"
	"github.com/paysentinel/sentinel/internal/facts"
	"github.com/paysentinel/sentinel/internal/llm"
	"github.com/paysentinel/sentinel/internal/service"
	"github.com/paysentinel/sentinel/internal/store"
	"github.com/paysentinel/sentinel/internal/tribunal"
	"go.uber.org/zap"
)

// App holds the router and request metrics.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(txStore domain.TransactionStore, logger *zap.Logger) *App {
	// Rationale provider via factory; the tribunal runs rule-based without one.
	llmClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
		llmClient = nil
	} else if llmClient != nil {
		logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))
	}

	cfg := tribunal.Config{
		ConsensusThreshold:   config.ConsensusThreshold(),
		MinConfidence:        config.MinConfidenceThreshold(),
		ConcessionConfidence: config.ConcessionConfidence(),
		ParticipantTimeout:   config.ParticipantTimeout(),
	}

	extractor := facts.NewExtractor(facts.NewDeterministicSource())
	orch := tribunal.NewOrchestrator(
		tribunal.NewAdvocate(cfg, llmClient),
		tribunal.NewRiskOfficer(cfg, llmClient),
		cfg,
		logger,
	)
	disputeSvc := service.NewDisputeService(extractor, orch, txStore, logger)

	webhookHandler := handlers.NewWebhookHandler(disputeSvc)
	txHandler := handlers.NewTransactionHandler(disputeSvc)
	statsHandler := handlers.NewStatsHandler(disputeSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Post("/webhook", webhookHandler.Process)
	r.Get("/stats", statsHandler.Get)
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", txHandler.List)
		r.Delete("/", txHandler.Clear)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", txHandler.GetByID)
			r.Post("/override", txHandler.Override)
		})
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure implementations satisfy interfaces at compile time.
var (
	_ domain.TransactionStore = (*store.TransactionStore)(nil)
	_ domain.LLMClient        = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient        = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient        = (*llm.MockClient)(nil)
	_ tribunal.Strategy       = (*tribunal.Advocate)(nil)
	_ tribunal.Strategy       = (*tribunal.RiskOfficer)(nil)
)
