package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/api/models"
	"github.com/lankatrip/festweather/internal/api/response"
	"github.com/lankatrip/festweather/internal/festival"
	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/provider/resilience"
	"github.com/lankatrip/festweather/internal/weather"
)

// writeError maps a service error to a problem response. Upstream payloads
// are never echoed; action is the short message the client sees.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error, action string) {
	var validation *festival.ValidationError
	switch {
	case errors.As(err, &validation):
		response.BadRequest(w, r, "validation error", festivalFieldErrors(validation))
	case errors.Is(err, festival.ErrFestivalNotFound):
		response.NotFound(w, r, "festival not found")
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
	case errors.Is(err, weather.ErrProviderUnavailable),
		errors.Is(err, holiday.ErrProviderUnavailable),
		errors.Is(err, holiday.ErrUpstreamRejected),
		errors.Is(err, resilience.ErrCircuitOpen):
		logger.Error().Err(err).Str("path", r.URL.Path).Msg(action)
		response.ServiceUnavailable(w, r, action)
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg(action)
		response.InternalError(w, r, action)
	}
}

func festivalFieldErrors(v *festival.ValidationError) []models.FieldError {
	out := make([]models.FieldError, len(v.Errors))
	for i, e := range v.Errors {
		out[i] = models.FieldError{Field: e.Field, Message: e.Message}
	}
	return out
}

func writeParamErrors(w http.ResponseWriter, r *http.Request, q *queryParams) {
	response.BadRequest(w, r, "invalid query parameters", q.Errors())
}
