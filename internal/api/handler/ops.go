// Package handler provides HTTP handlers for the festweather API.
package handler

import (
	"net/http"
	"time"

	"github.com/lankatrip/festweather/internal/api/models"
	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/cache"
	"github.com/lankatrip/festweather/internal/provider/resilience"
)

// ServiceName is the default name reported by the health endpoint.
const ServiceName = "festweather-api"

// OpsConfig holds dependencies for the ops handler.
type OpsConfig struct {
	ServiceName string
	Version     string
	Cache       cache.Store
	Registry    *resilience.Registry
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	service  string
	version  string
	cache    cache.Store
	registry *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	service := cfg.ServiceName
	if service == "" {
		service = ServiceName
	}
	return &OpsHandler{
		service:  service,
		version:  version,
		cache:    cfg.Cache,
		registry: cfg.Registry,
	}
}

// Root handles GET / - API index.
func (h *OpsHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message": "Festival, Weather & Holiday Integration API",
		"health":  "/health",
		"endpoints": map[string]string{
			"weather":     "/api/weather",
			"holidays":    "/api/holidays",
			"festivals":   "/api/festivals",
			"suggestions": "/api/suggestions",
		},
	})
}

// HealthCheck handles GET /health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Service: h.service,
		Version: h.version,
		Time:    models.Timestamp(time.Now()),
	})
}

// SystemStatus handles GET /api/ops/status - cache and upstream status.
// The cache being disabled degrades the service but never fails it.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.cache != nil {
		sub := models.SubsystemStatus{Name: "cache:" + h.cache.Name(), Status: models.HealthStatusOK}
		if !h.cache.Enabled() {
			detail := "cache disabled, serving from upstream"
			sub.Status = models.HealthStatusDegraded
			sub.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
		status.Subsystems = append(status.Subsystems, sub)
	}

	if h.registry != nil {
		for _, ph := range h.registry.All() {
			ps := providerStatus(ph)
			if ps.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: int(ph.Counts.ConsecutiveFailures),
		TotalSuccesses:      ph.Successes,
		TotalFailures:       ph.Failures,
	}

	switch ph.Condition() {
	case resilience.ConditionUnavailable:
		ps.Status = models.HealthStatusFail
	case resilience.ConditionDegraded:
		ps.Status = models.HealthStatusDegraded
	}

	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
