// Package api provides the HTTP API for festweather.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/handler"
	"github.com/lankatrip/festweather/internal/api/middleware"
	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/provider/resilience"
	"github.com/lankatrip/festweather/internal/suggestion"
	"github.com/lankatrip/festweather/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	WeatherService    *weather.Service
	HolidayService    *holiday.Service
	FestivalService   *festival.Service
	SuggestionService *suggestion.Service

	// Cache and Registry feed the ops status endpoint.
	Cache    cache.Store
	Registry *resilience.Registry

	// AdminTokens validates bearer tokens on festival writes and ops status.
	// When nil those routes answer 403.
	AdminTokens middleware.TokenValidator

	// PublicRateLimit and AdminRateLimit are requests per minute; zero uses
	// the package defaults.
	PublicRateLimit int
	AdminRateLimit  int

	// RequireTLS rejects plain-HTTP forwarded requests.
	RequireTLS bool

	// PublicMaxAge is the Cache-Control max-age on successful public reads.
	// Zero sends no-store.
	PublicMaxAge time.Duration
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = handler.ServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing)   // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		ServiceName: serviceName,
		Version:     cfg.Version,
		Cache:       cfg.Cache,
		Registry:    cfg.Registry,
	})
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService, cfg.Logger)
	holidayHandler := handler.NewHolidayHandler(cfg.HolidayService, cfg.Logger)
	festivalHandler := handler.NewFestivalHandler(cfg.FestivalService, cfg.Logger)
	suggestionHandler := handler.NewSuggestionHandler(cfg.SuggestionService, cfg.Logger)

	adminAuth := middleware.AdminAuth(cfg.AdminTokens)

	publicCache := middleware.PublicCache(cfg.PublicMaxAge)
	publicRateLimit := middleware.RateLimitByIP(middleware.PerMinute(cfg.PublicRateLimit, middleware.PublicRateLimit))
	adminRateLimit := middleware.RateLimitByAdmin(middleware.PerMinute(cfg.AdminRateLimit, middleware.AdminRateLimit))

	r.Get("/", opsHandler.Root)
	r.Get("/health", opsHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.With(middleware.NoStore, adminAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Read endpoints (public) - per-IP rate limiting
		r.Group(func(r chi.Router) {
			r.Use(publicCache)
			r.Use(publicRateLimit)

			r.Route("/weather", func(r chi.Router) {
				r.Get("/current", weatherHandler.Current)
				r.Get("/forecast", weatherHandler.Forecast)
				r.Get("/alerts", weatherHandler.Alerts)
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", holidayHandler.List)
				r.Get("/check", holidayHandler.Check)
				r.Get("/upcoming", holidayHandler.Upcoming)
			})

			r.Route("/suggestions", func(r chi.Router) {
				r.Get("/smart", suggestionHandler.Smart)
				r.Get("/dashboard", suggestionHandler.Dashboard)
			})
		})

		r.Route("/festivals", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(publicCache)
				r.Use(publicRateLimit)
				r.Get("/", festivalHandler.List)
				r.Get("/search/by-location", festivalHandler.ByLocation)
				r.Get("/search/by-date", festivalHandler.ByDate)
				r.Get("/search/advanced", festivalHandler.Advanced)
				r.Get("/{festivalID}", festivalHandler.Get)
			})

			// Admin writes - bearer token, per-admin rate limiting
			r.Group(func(r chi.Router) {
				r.Use(middleware.NoStore)
				r.Use(adminAuth)
				r.Use(adminRateLimit)
				r.Use(middleware.RequireJSON(middleware.DefaultMaxBodyBytes))
				r.Post("/", festivalHandler.Create)
				r.Put("/{festivalID}", festivalHandler.Update)
				r.Delete("/{festivalID}", festivalHandler.Delete)
			})
		})
	})

	return r
}
