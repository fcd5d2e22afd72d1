package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lankatrip/festweather/internal/api/middleware"
)

// serveRequestID runs RequestID with the given incoming header and returns
// the ID seen by the handler and the one echoed in the response.
func serveRequestID(incoming string) (inContext, echoed string) {
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		inContext = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/holidays", http.NoBody)
	if incoming != "" {
		req.Header.Set(middleware.RequestIDHeader, incoming)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	return inContext, w.Header().Get(middleware.RequestIDHeader)
}

func TestRequestID_Generated(t *testing.T) {
	inContext, echoed := serveRequestID("")

	assert.True(t, strings.HasPrefix(inContext, "req_"))
	assert.Len(t, inContext, len("req_")+22)
	assert.Equal(t, inContext, echoed)
}

func TestRequestID_ReusesCallerID(t *testing.T) {
	inContext, echoed := serveRequestID("mobile-7f3a9c")

	assert.Equal(t, "mobile-7f3a9c", inContext)
	assert.Equal(t, "mobile-7f3a9c", echoed)
}

func TestRequestID_ReplacesUnsafeCallerID(t *testing.T) {
	tests := map[string]string{
		"too long":   strings.Repeat("a", 65),
		"whitespace": "abc def",
		"control":    "abc\x01",
		"non-ascii":  "réservation",
	}

	for name, incoming := range tests {
		t.Run(name, func(t *testing.T) {
			inContext, echoed := serveRequestID(incoming)

			assert.True(t, strings.HasPrefix(inContext, "req_"), "got %q", inContext)
			assert.Equal(t, inContext, echoed)
		})
	}
}

func TestGetRequestID_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, _ := serveRequestID("")
		assert.False(t, seen[id], "duplicate request ID %s", id)
		seen[id] = true
	}
}
