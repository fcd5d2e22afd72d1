package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lankatrip/festweather/internal/api/models"
	"github.com/lankatrip/festweather/internal/auth"
)

// TokenValidator checks an admin bearer token. *auth.JWTService implements it.
type TokenValidator interface {
	ValidateAdminToken(token string) (*auth.Claims, error)
}

type adminSubjectKey struct{}

// AdminAuth guards festival writes and the ops status page. A nil validator
// means no signing secret is configured, and every request gets a 403.
func AdminAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				deny(w, r, http.StatusForbidden, "admin access is not configured")
				return
			}

			token, problem := bearerToken(r.Header.Get("Authorization"))
			if problem != "" {
				deny(w, r, http.StatusUnauthorized, problem)
				return
			}

			claims, err := validator.ValidateAdminToken(token)
			if err != nil {
				status, detail := rejection(err)
				deny(w, r, status, detail)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminSubjectKey{}, claims.Subject)))
		})
	}
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively. A non-empty second result says
// what is wrong with the header.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

func rejection(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrNotAdmin):
		return http.StatusForbidden, "admin role required"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "access token has expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid access token"
	default:
		return http.StatusUnauthorized, "authentication failed"
	}
}

// deny writes the problem directly; the response package imports this one.
func deny(w http.ResponseWriter, r *http.Request, status int, detail string) {
	traceID := GetRequestID(r.Context())
	var p *models.Problem
	if status == http.StatusForbidden {
		p = models.NewForbidden(traceID, detail)
	} else {
		p = models.NewUnauthorized(traceID, detail)
	}
	p.WithInstance(r.URL.Path).Write(w)
}

// GetAdminSubject returns the subject of the verified admin token, or ""
// outside AdminAuth.
func GetAdminSubject(ctx context.Context) string {
	sub, _ := ctx.Value(adminSubjectKey{}).(string)
	return sub
}
