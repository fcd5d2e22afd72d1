// Package calendarific implements holiday.Provider against the Calendarific v2 API.
package calendarific

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/provider/resilience"
)

const (
	// ProviderName identifies this holiday provider.
	ProviderName = "calendarific"

	// DefaultBaseURL is the Calendarific API base URL.
	DefaultBaseURL = "https://calendarific.com/api/v2"
)

// ClientConfig holds configuration for the Calendarific client.
type ClientConfig struct {
	// APIKey is the Calendarific API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Calendarific API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Calendarific client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetHolidays fetches every holiday for country in year.
func (c *Client) GetHolidays(ctx context.Context, country string, year int) ([]holiday.Holiday, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("country", country)
	q.Set("year", strconv.Itoa(year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/holidays?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var calResp holidaysResponse
	if err := json.NewDecoder(resp.Body).Decode(&calResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if calResp.Meta.Code != http.StatusOK {
		c.logger.Warn().
			Int("code", calResp.Meta.Code).
			Str("detail", calResp.Meta.ErrorDetail).
			Msg("calendarific rejected request")
		return nil, fmt.Errorf("%w: code %d", holiday.ErrUpstreamRejected, calResp.Meta.Code)
	}

	// On errors the upstream sends "response": [], so the body is only
	// decoded once the embedded code is known to be 200.
	var body holidaysBody
	if err := json.Unmarshal(calResp.Response, &body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	holidays := make([]holiday.Holiday, 0, len(body.Holidays))
	for _, h := range body.Holidays {
		date, err := parseISODate(h.Date.ISO)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}

		types := h.Type
		if types == nil {
			types = []string{}
		}

		holidays = append(holidays, holiday.Holiday{
			Name:        h.Name,
			Date:        date,
			Types:       types,
			Description: h.Description,
			IsPublic:    holiday.IsNational(types),
			PrimaryType: h.PrimaryType,
			Country:     h.Country.Name,
		})
	}

	return holidays, nil
}

// parseISODate reads the date part of a Calendarific iso field, which may
// carry a time and offset for observances such as equinoxes.
func parseISODate(iso string) (civil.Date, error) {
	if len(iso) > 10 {
		iso = iso[:10]
	}
	d, err := civil.ParseDate(iso)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing date %q: %w", iso, err)
	}
	return d, nil
}

// Calendarific API response structures.

type holidaysResponse struct {
	Meta struct {
		Code        int    `json:"code"`
		ErrorType   string `json:"error_type"`
		ErrorDetail string `json:"error_detail"`
	} `json:"meta"`
	Response json.RawMessage `json:"response"`
}

type holidaysBody struct {
	Holidays []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Country     struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"country"`
		Date struct {
			ISO string `json:"iso"`
		} `json:"date"`
		Type        []string `json:"type"`
		PrimaryType string   `json:"primary_type"`
	} `json:"holidays"`
}
