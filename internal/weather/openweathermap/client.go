// Package openweathermap implements weather.Provider against the
// OpenWeatherMap 2.5 API.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/provider/resilience"
	"github.com/lankatrip/festweather/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

var errMalformed = errors.New("malformed response")

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// OneCallURL is the alerts endpoint (optional, defaults to BaseURL + "/onecall").
	OneCallURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Now overrides the clock used to stamp snapshots, for tests.
	Now func() time.Time

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	oneCallURL string
	httpClient *resilience.Client
	now        func() time.Time
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	oneCallURL := cfg.OneCallURL
	if oneCallURL == "" {
		oneCallURL = baseURL + "/onecall"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		oneCallURL: oneCallURL,
		httpClient: httpClient,
		now:        now,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current weather for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Snapshot, error) {
	var owmResp currentWeatherResponse
	if err := c.get(ctx, c.baseURL+"/weather", c.query(lat, lon, "units", "metric"), &owmResp); err != nil {
		return nil, err
	}

	if len(owmResp.Weather) == 0 || owmResp.Main == nil {
		return nil, fmt.Errorf("%w: missing weather or main block", errMalformed)
	}

	location := owmResp.Name
	if location == "" {
		location = "Unknown"
	}

	return &weather.Snapshot{
		Location:    location,
		Temperature: owmResp.Main.Temp,
		FeelsLike:   owmResp.Main.FeelsLike,
		Condition:   weather.Condition(owmResp.Weather[0].Main),
		Description: owmResp.Weather[0].Description,
		Humidity:    roundInt(owmResp.Main.Humidity),
		Pressure:    roundInt(owmResp.Main.Pressure),
		WindSpeed:   owmResp.Wind.Speed,
		Rainfall:    owmResp.Rain.OneHour,
		Icon:        owmResp.Weather[0].Icon,
		Timestamp:   c.now(),
	}, nil
}

// GetForecast fetches the 5 day / 3 hour forecast for a location.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPoint, error) {
	var owmResp forecastResponse
	if err := c.get(ctx, c.baseURL+"/forecast", c.query(lat, lon, "units", "metric"), &owmResp); err != nil {
		return nil, err
	}

	forecast := make([]weather.ForecastPoint, 0, len(owmResp.List))
	for _, item := range owmResp.List {
		if len(item.Weather) == 0 {
			return nil, fmt.Errorf("%w: forecast step %q has no weather", errMalformed, item.DtTxt)
		}
		forecast = append(forecast, weather.ForecastPoint{
			DateTime:    item.DtTxt,
			Temperature: item.Main.Temp,
			Condition:   weather.Condition(item.Weather[0].Main),
			Description: item.Weather[0].Description,
			Rainfall:    item.Rain.ThreeHours,
			Humidity:    roundInt(item.Main.Humidity),
			Icon:        item.Weather[0].Icon,
		})
	}

	return forecast, nil
}

// GetAlerts fetches active alerts from the OneCall endpoint.
func (c *Client) GetAlerts(ctx context.Context, lat, lon float64) ([]weather.Alert, error) {
	var owmResp oneCallResponse
	if err := c.get(ctx, c.oneCallURL, c.query(lat, lon, "exclude", "minutely,hourly"), &owmResp); err != nil {
		return nil, err
	}

	alerts := make([]weather.Alert, 0, len(owmResp.Alerts))
	for _, a := range owmResp.Alerts {
		alerts = append(alerts, weather.Alert{
			Event:       a.Event,
			Start:       a.Start,
			End:         a.End,
			Description: a.Description,
			Sender:      a.SenderName,
		})
	}
	return alerts, nil
}

func (c *Client) query(lat, lon float64, extra ...string) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return q
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("openweathermap returned non-200")
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// OpenWeatherMap API response structures.

type conditionBlock struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentWeatherResponse struct {
	Weather []conditionBlock `json:"weather"`
	Main    *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []conditionBlock `json:"weather"`
		Rain    struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

type oneCallResponse struct {
	Alerts []struct {
		SenderName  string `json:"sender_name"`
		Event       string `json:"event"`
		Start       int64  `json:"start"`
		End         int64  `json:"end"`
		Description string `json:"description"`
	} `json:"alerts"`
}
