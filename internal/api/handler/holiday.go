package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/holiday"
)

// Holiday query bounds.
const (
	DefaultUpcomingDays = 30
	MaxUpcomingDays     = 365
)

// HolidayCheck is the response of the holiday check endpoint.
type HolidayCheck struct {
	IsHoliday bool             `json:"is_holiday"`
	Holiday   *holiday.Holiday `json:"holiday"`
}

// HolidayHandler handles holiday endpoints.
type HolidayHandler struct {
	service *holiday.Service
	logger  zerolog.Logger
}

// NewHolidayHandler creates a new HolidayHandler.
func NewHolidayHandler(service *holiday.Service, logger zerolog.Logger) *HolidayHandler {
	return &HolidayHandler{service: service, logger: logger}
}

// List handles GET /api/holidays?year. Year defaults to the current year.
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	year := q.Int("year", 0, 1, 9999)
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	holidays, err := h.service.GetPublicHolidays(r.Context(), year)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch holidays")
		return
	}
	response.List(w, r, holidays)
}

// Check handles GET /api/holidays/check?date.
func (h *HolidayHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	date := q.Date("date")
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	match, err := h.service.CheckIfHoliday(r.Context(), date)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to check holiday")
		return
	}
	response.JSON(w, r, http.StatusOK, HolidayCheck{IsHoliday: match != nil, Holiday: match})
}

// Upcoming handles GET /api/holidays/upcoming?days.
func (h *HolidayHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	days := q.Int("days", DefaultUpcomingDays, 1, MaxUpcomingDays)
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	holidays, err := h.service.GetUpcomingHolidays(r.Context(), days)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch upcoming holidays")
		return
	}
	response.List(w, r, holidays)
}
