package service

import (
	"context"
	"encoding/json"
	"time"

	"tripvote/internal/domain"
	"tripvote/pkg/redis"

	"go.uber.org/zap"
)

// CacheService caches the two polled GET payloads with a cache-aside
// pattern. Every method is a no-op when no Redis client is configured,
// which is the default deployment: aggregates are then recomputed from
// the record store on every read.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service. redisClient may be nil.
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured.
func (c *CacheService) Enabled() bool {
	return c != nil && c.redis != nil
}

// GetOptions returns the cached options payload, nil on miss or error.
func (c *CacheService) GetOptions(ctx context.Context) *domain.OptionsResponse {
	if !c.Enabled() {
		return nil
	}

	cached, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyOptions())
	if err != nil || cached == "" {
		return nil
	}

	var response domain.OptionsResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn("Options cache corrupted, falling back to store", zap.Error(err))
		return nil
	}
	return &response
}

// SetOptions caches the options payload, fire and forget.
func (c *CacheService) SetOptions(ctx context.Context, response *domain.OptionsResponse) {
	if !c.Enabled() {
		return
	}
	c.setAsync(c.redisKeyOptions(), response, redis.TTLOptions)
}

// GetResults returns the cached results payload, nil on miss or error.
func (c *CacheService) GetResults(ctx context.Context) *domain.ResultsResponse {
	if !c.Enabled() {
		return nil
	}

	cached, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyResults())
	if err != nil || cached == "" {
		return nil
	}

	var response domain.ResultsResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		c.logger.Warn("Results cache corrupted, falling back to store", zap.Error(err))
		return nil
	}
	return &response
}

// SetResults caches the results payload, fire and forget.
func (c *CacheService) SetResults(ctx context.Context, response *domain.ResultsResponse) {
	if !c.Enabled() {
		return
	}
	c.setAsync(c.redisKeyResults(), response, redis.TTLResults)
}

// InvalidatePoll drops both cached payloads after a recorded vote so
// the next display poll sees the new row within one store round-trip.
func (c *CacheService) InvalidatePoll(ctx context.Context) {
	if !c.Enabled() {
		return
	}

	keys := []string{c.redisKeyOptions(), c.redisKeyResults()}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate poll caches", zap.Error(err))
	}
}

// HealthCheck pings Redis when configured.
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.redis.Health(ctx)
}

func (c *CacheService) setAsync(key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to marshal cache payload", zap.Error(err))
		return
	}

	// Caching failure must never fail the request.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.redis.Set(cacheCtx, key, string(data), ttl); err != nil {
			c.logger.Warn("Failed to cache payload", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (c *CacheService) redisKeyOptions() string {
	return c.redis.KeyBuilder.KeyOptions()
}

func (c *CacheService) redisKeyResults() string {
	return c.redis.KeyBuilder.KeyResults()
}
