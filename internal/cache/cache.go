// Package cache stores generated article summaries between runs.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/logger"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a string key/value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Clear drops every entry under the store prefix.
	Clear(ctx context.Context) error
	Close() error
}

// New returns a Redis store when REDIS_URL is configured and reachable,
// otherwise an in-memory store.
func New(cfg *config.Config) Store {
	log := logger.Get()
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, using in-memory summary cache")
		return NewMemoryStore(cfg.RedisPrefix)
	}

	store, err := NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory summary cache")
		return NewMemoryStore(cfg.RedisPrefix)
	}
	return store
}
