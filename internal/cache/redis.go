package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds configuration for the Redis-backed store.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// DialTimeout bounds the initial connection check (default: 2s).
	DialTimeout time.Duration

	// Logger for connection state changes.
	Logger zerolog.Logger
}

// RedisStore is a Store backed by Redis.
//
// The connection is opened on first use. If that attempt fails the store
// disables itself for the rest of the process: every operation returns
// ErrCacheDisabled and the failure is logged exactly once.
type RedisStore struct {
	url         string
	dialTimeout time.Duration
	logger      zerolog.Logger

	once     sync.Once
	client   *redis.Client
	disabled atomic.Bool
}

// NewRedisStore creates a store. No connection is made until Connect or the
// first operation.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 2 * time.Second
	}

	return &RedisStore{
		url:         cfg.URL,
		dialTimeout: dialTimeout,
		logger:      cfg.Logger,
	}
}

// Connect opens the connection if it is not open yet and reports whether the
// store is usable. Calling it at startup is optional.
func (s *RedisStore) Connect(ctx context.Context) bool {
	_, err := s.conn(ctx)
	return err == nil
}

func (s *RedisStore) conn(ctx context.Context) (*redis.Client, error) {
	s.once.Do(func() { s.connect(ctx) })
	if s.disabled.Load() {
		return nil, ErrCacheDisabled
	}
	return s.client, nil
}

func (s *RedisStore) connect(ctx context.Context) {
	opts, err := redis.ParseURL(s.url)
	if err != nil {
		s.disable(fmt.Errorf("parsing redis url: %w", err))
		return
	}
	opts.DialTimeout = s.dialTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		s.disable(err)
		return
	}

	s.client = client
	s.logger.Info().Str("addr", opts.Addr).Msg("cache connected")
}

func (s *RedisStore) disable(err error) {
	s.disabled.Store(true)
	s.logger.Warn().Err(err).Msg("cache unavailable, caching disabled")
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	client, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache get failed")
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	return data, nil
}

// Set stores value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache set failed")
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	client, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return client.Del(ctx, key).Err()
}

// Enabled reports whether the store has not been disabled. A store that has
// not attempted a connection yet reports true.
func (s *RedisStore) Enabled() bool {
	return !s.disabled.Load()
}

// Name returns the backend name.
func (s *RedisStore) Name() string { return "redis" }

// Close closes the underlying connection, if any.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
