package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	"github.com/iho/splitledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PolicyHandler     *handler.PolicyHandler
	SnapshotHandler   *handler.SnapshotHandler
	PayoutHandler     *handler.PayoutHandler
	DisputeHandler    *handler.DisputeHandler
	PeriodLockHandler *handler.PeriodLockHandler
	SummaryHandler    *handler.SummaryHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           *zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Actor)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Policies
		r.Route("/policies", func(r chi.Router) {
			r.Post("/", cfg.PolicyHandler.Create)
			r.Get("/", cfg.PolicyHandler.List)
			r.Get("/effective", cfg.PolicyHandler.Effective)
			r.Get("/{id}", cfg.PolicyHandler.Get)
		})

		// Snapshots and the approval workflow
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/compute", cfg.SnapshotHandler.Compute)
			r.Get("/pending", cfg.SnapshotHandler.ListPending)
			r.Get("/{id}", cfg.SnapshotHandler.Get)
			r.Post("/{id}/approve", cfg.SnapshotHandler.Approve)
			r.Post("/{id}/reject", cfg.SnapshotHandler.Reject)
			r.Post("/{id}/reverse", cfg.SnapshotHandler.Reverse)
		})

		// Payouts
		r.Route("/payouts", func(r chi.Router) {
			r.Post("/", cfg.PayoutHandler.Record)
			r.Get("/{id}", cfg.PayoutHandler.Get)
		})

		// Disputes
		r.Route("/disputes", func(r chi.Router) {
			r.Post("/", cfg.DisputeHandler.Open)
			r.Post("/escalate-overdue", cfg.DisputeHandler.EscalateOverdue)
			r.Get("/{id}", cfg.DisputeHandler.Get)
			r.Post("/{id}/status", cfg.DisputeHandler.SetStatus)
		})

		// Period locks
		r.Route("/period-locks", func(r chi.Router) {
			r.Post("/", cfg.PeriodLockHandler.Create)
			r.Get("/", cfg.PeriodLockHandler.List)
			r.Post("/{id}/release", cfg.PeriodLockHandler.Release)
		})

		// Read models
		r.Get("/users/{id}/commission-summary", cfg.SummaryHandler.UserSummary)
		r.Route("/deals/{dealId}", func(r chi.Router) {
			r.Get("/commission", cfg.SummaryHandler.DealDetail)
			r.Get("/ledger", cfg.LedgerHandler.ListByDeal)
			r.Get("/disputes", cfg.DisputeHandler.ListByDeal)
		})

		// Ledger consistency sweep
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
