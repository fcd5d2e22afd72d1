package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lankatrip/festweather/internal/holiday"
	"github.com/lankatrip/festweather/internal/weather"
)

// WeatherSource is the part of the weather service the warm-up job uses.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Snapshot, error)
	GetForecast(ctx context.Context, lat, lon float64) ([]weather.ForecastPoint, error)
}

// HolidaySource is the part of the holiday service the warm-up job uses.
type HolidaySource interface {
	GetPublicHolidays(ctx context.Context, year int) ([]holiday.Holiday, error)
	Today() civil.Date
}

// WarmupJob pre-fetches upstream data so user requests hit a warm cache.
type WarmupJob struct {
	config   WarmupConfig
	logger   zerolog.Logger
	weather  WeatherSource
	holidays HolidaySource

	metrics *WarmupMetrics
}

// WarmupMetrics tracks warm-up job statistics.
type WarmupMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns         int64
	SuccessfulWarmups int64
	FailedWarmups     int64
	WeatherWarmups    int64
	ForecastWarmups   int64
	HolidayWarmups    int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmupJobConfig holds configuration for creating a WarmupJob.
type WarmupJobConfig struct {
	Config  WarmupConfig
	Logger  zerolog.Logger
	Weather WeatherSource
	// Holidays is optional; nil skips holiday warm-up.
	Holidays HolidaySource
}

// NewWarmupJob creates a new warm-up job.
func NewWarmupJob(cfg WarmupJobConfig) *WarmupJob {
	config := cfg.Config
	if len(config.Destinations) == 0 {
		config.Destinations = DefaultDestinations()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &WarmupJob{
		config:   config,
		logger:   cfg.Logger,
		weather:  cfg.Weather,
		holidays: cfg.Holidays,
		metrics:  &WarmupMetrics{},
	}
}

// WarmupResult contains the result of a warm-up run.
type WarmupResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Destinations int
	Successful   int
	Failed       int
	// Skipped counts destinations not attempted because the run was cancelled.
	Skipped      int
	HolidayYears []int
	Errors       []WarmupError
}

// WarmupError represents one failed fetch.
type WarmupError struct {
	Source string
	Target string
	Error  string
}

// Run warms the holiday lists, then every destination with bounded
// concurrency. Individual failures are recorded and never stop the run.
func (j *WarmupJob) Run(ctx context.Context) *WarmupResult {
	startTime := time.Now()
	destinations := j.config.Ordered()
	result := &WarmupResult{
		StartTime:    startTime,
		Destinations: len(destinations),
	}

	j.logger.Info().
		Int("destinations", result.Destinations).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm-up job")

	if j.config.WarmHolidays && j.holidays != nil {
		j.warmHolidays(ctx, result)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(j.config.Concurrency)

	for _, d := range destinations {
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			}

			errs := j.warmDestination(ctx, d)

			mu.Lock()
			defer mu.Unlock()
			if len(errs) == 0 {
				result.Successful++
			} else {
				result.Failed++
				result.Errors = append(result.Errors, errs...)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Ints("holiday_years", result.HolidayYears).
		Msg("cache warm-up job completed")

	return result
}

func (j *WarmupJob) warmHolidays(ctx context.Context, result *WarmupResult) {
	year := j.holidays.Today().Year
	for _, y := range []int{year, year + 1} {
		yearCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
		_, err := j.holidays.GetPublicHolidays(yearCtx, y)
		cancel()

		if err != nil {
			j.logger.Warn().Err(err).Int("year", y).Msg("holiday warm-up failed")
			result.Errors = append(result.Errors, WarmupError{
				Source: "holidays",
				Target: strconv.Itoa(y),
				Error:  err.Error(),
			})
			continue
		}

		result.HolidayYears = append(result.HolidayYears, y)
		j.metrics.mu.Lock()
		j.metrics.HolidayWarmups++
		j.metrics.mu.Unlock()
	}
}

func (j *WarmupJob) warmDestination(ctx context.Context, d Destination) []WarmupError {
	if j.weather == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	var errs []WarmupError
	record := func(source string, err error) {
		errs = append(errs, WarmupError{Source: source, Target: d.Name, Error: err.Error()})
	}

	if j.config.WarmWeather {
		if _, err := j.weather.GetCurrentWeather(ctx, d.Lat, d.Lon); err != nil {
			record("weather", err)
		} else {
			j.count(func(m *WarmupMetrics) { m.WeatherWarmups++ })
		}
	}

	if j.config.WarmForecast {
		if _, err := j.weather.GetForecast(ctx, d.Lat, d.Lon); err != nil {
			record("forecast", err)
		} else {
			j.count(func(m *WarmupMetrics) { m.ForecastWarmups++ })
		}
	}

	if len(errs) > 0 {
		j.logger.Warn().
			Str("destination", d.Name).
			Str("error", errs[0].Error).
			Int("failures", len(errs)).
			Msg("destination warm-up failed")
	}
	return errs
}

func (j *WarmupJob) count(inc func(*WarmupMetrics)) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	inc(j.metrics)
}

func (j *WarmupJob) updateMetrics(result *WarmupResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulWarmups += int64(result.Successful)
	j.metrics.FailedWarmups += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmupJob) GetMetrics() WarmupMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmupMetrics{
		TotalRuns:         j.metrics.TotalRuns,
		SuccessfulWarmups: j.metrics.SuccessfulWarmups,
		FailedWarmups:     j.metrics.FailedWarmups,
		WeatherWarmups:    j.metrics.WeatherWarmups,
		ForecastWarmups:   j.metrics.ForecastWarmups,
		HolidayWarmups:    j.metrics.HolidayWarmups,
		LastRunAt:         j.metrics.LastRunAt,
		LastRunDuration:   j.metrics.LastRunDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmupJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"successful_warmups": m.SuccessfulWarmups,
		"failed_warmups":     m.FailedWarmups,
		"weather_warmups":    m.WeatherWarmups,
		"forecast_warmups":   m.ForecastWarmups,
		"holiday_warmups":    m.HolidayWarmups,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_duration":     m.TotalDuration.String(),
	}
}
