// Package redis backs the narrative-brief cache with Redis, so a fleet of
// apiserver replicas shares one brief per country instead of each paying for
// its own generation.  Deployments without Redis use the in-process cache
// instead; the enrichment service is indifferent to which one it gets.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/sentinel-risk/internal/config"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/pkg/errors"
)

// ErrCacheMiss reports that no brief is stored for the requested key.
var ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

// commander is the slice of go-redis used by the store, abstracted for tests.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// BriefStore is a byte-level TTL store keyed by country code.  Serialization
// stays with the caller so the store never imports domain types.
type BriefStore struct {
	client commander
	prefix string
	logger logging.Logger
}

// NewBriefStore connects to Redis and verifies the connection.
func NewBriefStore(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*BriefStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis unreachable")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "sentinel:brief:"
	}
	return &BriefStore{
		client: client,
		prefix: prefix,
		logger: logger.Named("briefstore"),
	}, nil
}

func (s *BriefStore) key(code string) string {
	return s.prefix + code
}

// Get returns the stored payload for code, or ErrCacheMiss.
func (s *BriefStore) Get(ctx context.Context, code string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(code)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to read brief")
	}
	return data, nil
}

// Set stores the payload under code for ttl.  Writes are last-write-wins:
// concurrent generators for the same country simply overwrite each other,
// which is acceptable because every generation is equally fresh.
func (s *BriefStore) Set(ctx context.Context, code string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(code), payload, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store brief")
	}
	return nil
}

// Delete removes the stored payload for code.
func (s *BriefStore) Delete(ctx context.Context, code string) error {
	if err := s.client.Del(ctx, s.key(code)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete brief")
	}
	return nil
}
