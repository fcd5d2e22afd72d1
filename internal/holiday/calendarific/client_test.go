package calendarific_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/holiday/calendarific"
	"github.com/lankatrip/festweather/internal/provider/resilience"
)

const holidaysBody = `{
  "meta": {"code": 200},
  "response": {"holidays": [
    {"name": "Tamil Thai Pongal Day", "description": "Tamil Thai Pongal Day is a public holiday in Sri Lanka",
     "country": {"id": "lk", "name": "Sri Lanka"}, "date": {"iso": "2026-01-14"},
     "type": ["National holiday"], "primary_type": "Public Holiday"},
    {"name": "March Equinox", "description": "March Equinox in Sri Lanka (Colombo)",
     "country": {"id": "lk", "name": "Sri Lanka"}, "date": {"iso": "2026-03-20T20:16:00+05:30"},
     "type": ["Season"], "primary_type": "Season"},
    {"name": "Vesak Full Moon Poya Day", "description": "",
     "country": {"id": "lk", "name": "Sri Lanka"}, "date": {"iso": "2026-05-01"},
     "type": ["National holiday", "Observance"], "primary_type": "Public, Bank, and Mercantile Holiday"}
  ]}
}`

func newTestClient(baseURL string) *calendarific.Client {
	return calendarific.NewClient(calendarific.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})
}

func TestClient_GetHolidays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/holidays", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "LK", r.URL.Query().Get("country"))
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		_, _ = w.Write([]byte(holidaysBody))
	}))
	defer server.Close()

	holidays, err := newTestClient(server.URL).GetHolidays(context.Background(), "LK", 2026)
	require.NoError(t, err)
	require.Len(t, holidays, 3)

	assert.Equal(t, holiday.Holiday{
		Name:        "Tamil Thai Pongal Day",
		Date:        civil.Date{Year: 2026, Month: 1, Day: 14},
		Types:       []string{"National holiday"},
		Description: "Tamil Thai Pongal Day is a public holiday in Sri Lanka",
		IsPublic:    true,
		PrimaryType: "Public Holiday",
		Country:     "Sri Lanka",
	}, holidays[0])

	assert.Equal(t, civil.Date{Year: 2026, Month: 3, Day: 20}, holidays[1].Date, "time part is dropped")
	assert.False(t, holidays[1].IsPublic)
	assert.True(t, holidays[2].IsPublic)
}

func TestClient_GetHolidays_EmbeddedErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"code":401,"error_type":"auth failed","error_detail":"Missing or invalid api credentials."},"response":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetHolidays(context.Background(), "LK", 2026)
	assert.ErrorIs(t, err, holiday.ErrUpstreamRejected)
	assert.NotContains(t, err.Error(), "api credentials")
}

func TestClient_GetHolidays_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, "unexpected status code: 429"},
		{"server error", http.StatusInternalServerError, `{}`, "unexpected status code: 500"},
		{"invalid json", http.StatusOK, `<html>`, "decoding response"},
		{"bad date", http.StatusOK, `{"meta":{"code":200},"response":{"holidays":[{"name":"X","date":{"iso":"soon"},"type":[]}]}}`, "parsing date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).GetHolidays(context.Background(), "LK", 2026)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
