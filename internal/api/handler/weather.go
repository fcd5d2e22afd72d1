package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/weather"
)

// WeatherHandler handles weather endpoints.
type WeatherHandler struct {
	service *weather.Service
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service *weather.Service, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{service: service, logger: logger}
}

// Current handles GET /api/weather/current?lat&lon.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat, lon := q.Coordinates()
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	snapshot, err := h.service.GetCurrentWeather(r.Context(), lat, lon)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch weather data")
		return
	}
	response.JSON(w, r, http.StatusOK, snapshot)
}

// Forecast handles GET /api/weather/forecast?lat&lon.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat, lon := q.Coordinates()
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	forecast, err := h.service.GetForecast(r.Context(), lat, lon)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch forecast data")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string][]weather.ForecastPoint{"forecast": forecast})
}

// Alerts handles GET /api/weather/alerts?lat&lon.
func (h *WeatherHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	lat, lon := q.Coordinates()
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	alerts, err := h.service.GetAlerts(r.Context(), lat, lon)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch weather alerts")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string][]weather.Alert{"alerts": alerts})
}
