// Package api provides the HTTP API for DateCast.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/datecast/datecast/internal/api/handler"
	"github.com/datecast/datecast/internal/api/middleware"
	"github.com/datecast/datecast/internal/weather"
	"github.com/datecast/datecast/internal/worker"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	WeatherSvc   *weather.QueryService
	Regions      weather.RegionRepository
	Orchestrator *worker.Orchestrator
	DB           handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "datecast-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherSvc, cfg.Regions)
	adminHandler := handler.NewAdminHandler(cfg.Orchestrator)

	// Rate limits per endpoint category
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Recommendation read endpoints - standard rate limiting
		r.Route("/weather", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/regions", weatherHandler.ListRegions)
			r.Route("/regions/{regionId}", func(r chi.Router) {
				r.Get("/daily", weatherHandler.GetDaily)
				r.Get("/weekly", weatherHandler.GetWeekly)
			})
			r.Post("/coordinate", weatherHandler.ByCoordinate)
			r.Get("/today", weatherHandler.GetToday)
		})

		// Admin endpoints - synchronous ingestion triggers, strict rate limiting
		r.Route("/admin", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Post("/refresh/short-term", adminHandler.RefreshShortTerm)
			r.Post("/refresh/medium-term", adminHandler.RefreshMediumTerm)
		})
	})

	return r
}
