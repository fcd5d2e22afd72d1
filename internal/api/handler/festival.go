package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/festival"
)

// FestivalHandler handles festival endpoints.
type FestivalHandler struct {
	service *festival.Service
	logger  zerolog.Logger
}

// NewFestivalHandler creates a new FestivalHandler.
func NewFestivalHandler(service *festival.Service, logger zerolog.Logger) *FestivalHandler {
	return &FestivalHandler{service: service, logger: logger}
}

// List handles GET /api/festivals?skip&limit.
func (h *FestivalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	skip := q.Int("skip", 0, 0, math.MaxInt)
	limit := q.Int("limit", festival.DefaultLimit, 1, festival.MaxLimit)
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	festivals, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch festivals")
		return
	}
	response.List(w, r, festivals)
}

// Get handles GET /api/festivals/{festivalID}.
func (h *FestivalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := festivalID(w, r)
	if !ok {
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to fetch festival")
		return
	}
	response.JSON(w, r, http.StatusOK, f)
}

// ByLocation handles GET /api/festivals/search/by-location?location.
func (h *FestivalHandler) ByLocation(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	location := q.RequiredString("location")
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	festivals, err := h.service.ByLocation(r.Context(), location)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to search festivals")
		return
	}
	response.List(w, r, festivals)
}

// ByDate handles GET /api/festivals/search/by-date?date.
func (h *FestivalHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	date := q.Date("date")
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	festivals, err := h.service.OnDate(r.Context(), date)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to search festivals")
		return
	}
	response.List(w, r, festivals)
}

// Advanced handles GET /api/festivals/search/advanced with optional
// location, festival_type, start_date and end_date filters.
func (h *FestivalHandler) Advanced(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filter := festival.SearchFilter{
		Location: q.value("location"),
		Type:     festival.Type(q.value("festival_type")),
		From:     q.OptionalDate("start_date"),
		To:       q.OptionalDate("end_date"),
	}
	if !q.Valid() {
		writeParamErrors(w, r, q)
		return
	}

	festivals, err := h.service.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to search festivals")
		return
	}
	response.List(w, r, festivals)
}

// Create handles POST /api/festivals (admin).
func (h *FestivalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req festival.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to create festival")
		return
	}
	response.Created(w, r, "/api/festivals/"+strconv.FormatInt(f.ID, 10), f)
}

// Update handles PUT /api/festivals/{festivalID} (admin).
func (h *FestivalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := festivalID(w, r)
	if !ok {
		return
	}

	var req festival.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, h.logger, err, "failed to update festival")
		return
	}
	response.JSON(w, r, http.StatusOK, f)
}

// Delete handles DELETE /api/festivals/{festivalID} (admin).
func (h *FestivalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := festivalID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err, "failed to delete festival")
		return
	}
	response.NoContent(w, r)
}

func festivalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "festivalID"), 10, 64)
	if err != nil || id < 1 {
		response.NotFound(w, r, "festival not found")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	detail := "invalid JSON body"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		detail = fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	}
	response.BadRequest(w, r, detail, nil)
	return false
}
