// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lankatrip/festweather/internal/database"
)

// Festival store backends.
const (
	FestivalStorePostgres = "postgres"
	FestivalStoreSQLite   = "sqlite"
	FestivalStoreMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Env      string
	Port     string
	LogLevel zerolog.Level

	OpenWeatherMapAPIKey  string
	OpenWeatherMapBaseURL string
	CalendarificAPIKey    string
	CalendarificBaseURL   string

	// RedisURL selects the shared cache. Empty means an in-process cache.
	RedisURL string

	WeatherCacheTTL          time.Duration
	HolidayCacheTTL          time.Duration
	CoordinateDecimals       int
	HolidayCountry           string
	HolidayUpcomingCrossYear bool

	UpstreamTimeout           time.Duration
	UpstreamRequestsPerSecond float64
	UpstreamBurst             int

	// PublicRateLimit and AdminRateLimit are requests per minute per client.
	PublicRateLimit int
	AdminRateLimit  int

	// AdminJWTSecret signs admin bearer tokens. Empty disables admin writes.
	AdminJWTSecret string

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// PublicMaxAge is the Cache-Control max-age sent on public reads.
	PublicMaxAge time.Duration

	FestivalStore string
	SQLitePath    string
	Database      database.Config

	OTELEnabled     bool
	OTLPEndpoint    string
	OTELSampleRatio float64

	GCPProjectID       string
	PubSubSubscription string
}

// Load reads an optional .env file (or the given files) and then the
// environment. Variables already set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	p := &parser{}

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: p.level("LOG_LEVEL", zerolog.InfoLevel),

		OpenWeatherMapAPIKey:  os.Getenv("OPENWEATHERMAP_API_KEY"),
		OpenWeatherMapBaseURL: os.Getenv("OPENWEATHERMAP_BASE_URL"),
		CalendarificAPIKey:    os.Getenv("CALENDARIFIC_API_KEY"),
		CalendarificBaseURL:   os.Getenv("CALENDARIFIC_BASE_URL"),

		RedisURL: os.Getenv("REDIS_URL"),

		WeatherCacheTTL:          p.seconds("WEATHER_CACHE_TTL", time.Hour),
		HolidayCacheTTL:          p.seconds("HOLIDAY_CACHE_TTL", 24*time.Hour),
		CoordinateDecimals:       p.integer("WEATHER_COORDINATE_DECIMALS", 0),
		HolidayCountry:           getEnv("HOLIDAY_COUNTRY", "LK"),
		HolidayUpcomingCrossYear: p.boolean("HOLIDAY_UPCOMING_CROSS_YEAR", false),

		UpstreamTimeout:           p.seconds("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRequestsPerSecond: p.float("UPSTREAM_REQUESTS_PER_SECOND", 5),
		UpstreamBurst:             p.integer("UPSTREAM_BURST", 10),

		PublicRateLimit: p.integer("RATE_LIMIT_PUBLIC", 120),
		AdminRateLimit:  p.integer("RATE_LIMIT_ADMIN", 30),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		RequireTLS:     p.boolean("REQUIRE_TLS", false),
		PublicMaxAge:   p.seconds("PUBLIC_CACHE_MAX_AGE", 5*time.Minute),

		FestivalStore: strings.ToLower(getEnv("FESTIVAL_STORE", FestivalStorePostgres)),
		SQLitePath:    getEnv("SQLITE_PATH", "festivals.db"),
		Database:      p.database(),

		OTELEnabled:     p.boolean("OTEL_ENABLED", false),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELSampleRatio: p.float("OTEL_TRACES_SAMPLE_RATIO", 1),

		GCPProjectID:       os.Getenv("GCP_PROJECT_ID"),
		PubSubSubscription: getEnv("PUBSUB_SUBSCRIPTION", "festweather-jobs"),
	}

	switch cfg.FestivalStore {
	case FestivalStorePostgres, FestivalStoreSQLite, FestivalStoreMemory:
	default:
		p.errs = append(p.errs, fmt.Errorf("FESTIVAL_STORE: unknown backend %q", cfg.FestivalStore))
	}
	if cfg.CoordinateDecimals < 0 {
		p.errs = append(p.errs, errors.New("WEATHER_COORDINATE_DECIMALS: must not be negative"))
	}

	if cfg.OTELSampleRatio < 0 || cfg.OTELSampleRatio > 1 {
		p.errs = append(p.errs, errors.New("OTEL_TRACES_SAMPLE_RATIO: must be between 0 and 1"))
	}

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// database reads DATABASE_URL, or the DB_* fields over database.Defaults.
func (p *parser) database() database.Config {
	db := database.Defaults()
	db.URL = os.Getenv("DATABASE_URL")
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = p.integer("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSL_MODE", db.SSLMode)
	db.MaxConns = int32(p.integer("DB_MAX_CONNS", int(db.MaxConns)))
	db.MinConns = int32(p.integer("DB_MIN_CONNS", int(db.MinConns)))
	db.MaxConnLifetime = p.seconds("DB_CONN_MAX_LIFETIME", db.MaxConnLifetime)
	if db.MinConns > db.MaxConns {
		p.errs = append(p.errs, errors.New("DB_MIN_CONNS: must not exceed DB_MAX_CONNS"))
	}
	return db
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

// seconds accepts either whole seconds ("3600") or a Go duration ("1h").
func (p *parser) seconds(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return d
}

func (p *parser) integer(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return defaultValue
	}
	return n
}

func (p *parser) float(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return defaultValue
	}
	return f
}

func (p *parser) level(key string, defaultValue zerolog.Level) zerolog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	l, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil || l == zerolog.NoLevel {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid log level %q", key, raw))
		return defaultValue
	}
	return l
}

func (p *parser) boolean(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return defaultValue
	}
	return b
}
