package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/lankatrip/festweather/internal/api/models"
)

// RateLimitConfig allows Limit requests per client in each Window.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

var (
	// PublicRateLimit covers weather, holiday, festival and suggestion reads.
	PublicRateLimit = RateLimitConfig{Limit: 120, Window: time.Minute}

	// AdminRateLimit covers festival writes.
	AdminRateLimit = RateLimitConfig{Limit: 30, Window: time.Minute}
)

// PerMinute returns limit requests per minute, or fallback when limit is
// not positive.
func PerMinute(limit int, fallback RateLimitConfig) RateLimitConfig {
	if limit <= 0 {
		return fallback
	}
	return RateLimitConfig{Limit: limit, Window: time.Minute}
}

// RateLimitByIP keys on the client address. Mount it after chi's RealIP so
// X-Forwarded-For is honoured.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, keyByIP)
}

// RateLimitByAdmin keys on the admin token subject, so one admin shares a
// budget across addresses. Requests without a subject fall back to the IP.
func RateLimitByAdmin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, func(r *http.Request) (string, error) {
		if sub := GetAdminSubject(r.Context()); sub != "" {
			return "admin:" + sub, nil
		}
		return keyByIP(r)
	})
}

func keyByIP(r *http.Request) (string, error) {
	ip, err := httprate.KeyByRealIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}

func rateLimit(cfg RateLimitConfig, key httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Limit,
		cfg.Window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(tooManyRequests(cfg.Window)),
	)
}

// tooManyRequests answers with a 429 problem. Retry-After falls back to the
// full window when httprate has not set it.
func tooManyRequests(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))
	return func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Retry-After") == "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		models.NewTooManyRequests(GetRequestID(r.Context()), "rate limit exceeded, retry later").
			WithInstance(r.URL.Path).
			Write(w)
	}
}
