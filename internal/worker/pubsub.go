package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the subscription.
const (
	JobTypeCacheWarmup = "cache_warmup"
	JobTypeHealthCheck = "health_check"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *JobProcessor
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	WarmupJob        *WarmupJob
	Logger           zerolog.Logger
}

// JobMessage is the payload published to the worker subscription.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Warm-up runs are long and idempotent; one at a time is enough.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor:        NewJobProcessor(cfg.WarmupJob, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if h.processor.Process(logger.WithContext(ctx), msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// JobProcessor decodes job messages and runs them. It is separate from the
// Pub/Sub client so message handling can be exercised without one.
type JobProcessor struct {
	warmup *WarmupJob
	logger zerolog.Logger
}

// NewJobProcessor creates a JobProcessor.
func NewJobProcessor(warmup *WarmupJob, logger zerolog.Logger) *JobProcessor {
	return &JobProcessor{warmup: warmup, logger: logger}
}

// Process handles one message and reports whether it should be acked.
// Malformed messages and failed jobs are nacked; unknown job types are
// acked so they are not redelivered.
func (p *JobProcessor) Process(ctx context.Context, data []byte) bool {
	startTime := time.Now()
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &p.logger
	}

	logger.Debug().Msg("received job message")

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return false
	}

	var err error
	switch msg.JobType {
	case JobTypeCacheWarmup:
		err = p.handleCacheWarmup(ctx)
	case JobTypeHealthCheck:
		err = p.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return true
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return false
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}

func (p *JobProcessor) handleCacheWarmup(ctx context.Context) error {
	result := p.warmup.Run(ctx)

	// Consider it successful if at least half the destinations warmed.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many warm-up failures: %d/%d", result.Failed, result.Destinations)
	}
	return nil
}

func (p *JobProcessor) handleHealthCheck(ctx context.Context) error {
	// Fetch current weather for the first destination only to verify
	// upstream connectivity.
	cfg := p.warmup.config
	cfg.Destinations = cfg.Ordered()[:1]
	cfg.Concurrency = 1
	cfg.WarmWeather = true
	cfg.WarmForecast = false
	cfg.WarmHolidays = false

	healthCheckJob := NewWarmupJob(WarmupJobConfig{
		Config:  cfg,
		Logger:  p.logger,
		Weather: p.warmup.weather,
	})

	result := healthCheckJob.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", len(result.Errors))
	}
	return nil
}
