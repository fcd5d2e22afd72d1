// Package cache provides key-value storage with per-key expiry.
//
// The cache is an optimization only: callers must treat every error returned
// by a Store as a miss and fall back to the upstream source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Cache errors.
var (
	// ErrCacheMiss is returned when a key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled is returned by every operation once the backing
	// store has been found unreachable.
	ErrCacheDisabled = errors.New("cache disabled")
)

// Store is a key-value store with per-key TTL.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Enabled reports whether the store is serving requests.
	Enabled() bool

	// Name identifies the backend for logs and status output.
	Name() string

	// Close releases any resources held by the store.
	Close() error
}

// GetJSON reads key and decodes it into dst.
// A value that cannot be decoded is reported as a miss.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}

// IsMiss reports whether err means "nothing usable was cached".
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || errors.Is(err, ErrCacheDisabled)
}
