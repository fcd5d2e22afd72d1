package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/suggestion"
)

// SuggestionHandler handles smart suggestion and dashboard endpoints.
type SuggestionHandler struct {
	service *suggestion.Service
	logger  zerolog.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(service *suggestion.Service, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: service, logger: logger}
}

// Smart handles GET /api/suggestions/smart?lat&lon&date&crowd_prediction.
// Upstream failures yield an empty list rather than an error.
func (h *SuggestionHandler) Smart(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat, lon := q.Coordinates()
	date := q.Date("date")
	crowd := q.Int("crowd_prediction", suggestion.DefaultCrowdPrediction, 0, 100)
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	suggestions := h.service.GenerateSuggestions(r.Context(), suggestion.Location{Lat: lat, Lon: lon}, date, crowd)
	response.List(w, r, suggestions)
}

// Dashboard handles GET /api/suggestions/dashboard?location_name&lat&lon&date.
func (h *SuggestionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	name := q.RequiredString("location_name")
	lat, lon := q.Coordinates()
	date := q.Date("date")
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	dashboard, err := h.service.BuildDashboard(r.Context(), name, suggestion.Location{Lat: lat, Lon: lon}, date)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to generate dashboard")
		return
	}
	response.JSON(w, r, http.StatusOK, dashboard)
}
