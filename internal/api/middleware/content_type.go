package middleware

import (
	"mime"
	"net/http"

	"github.com/lankatrip/festweather/internal/api/models"
)

// DefaultMaxBodyBytes bounds festival write payloads.
const DefaultMaxBodyBytes int64 = 64 << 10

// RequireJSON rejects POST, PUT and PATCH bodies declared as anything but
// application/json with 415, and caps the body at maxBytes. A missing
// Content-Type is accepted. maxBytes <= 0 uses DefaultMaxBodyBytes.
func RequireJSON(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					models.NewUnsupportedMediaType(GetRequestID(r.Context()), "Content-Type must be application/json").
						WithInstance(r.URL.Path).
						Write(w)
					return
				}
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
