package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"conversation-intel/internal/common/database"
	"conversation-intel/internal/common/logger"
)

// CachedClient decorates a Client with a Redis response cache keyed on the
// full prompt. Identical analyses re-run within the TTL skip the paid call.
// Cache failures are never fatal: the request degrades to a direct call.
type CachedClient struct {
	inner  Client
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedClient wraps inner with a Redis-backed response cache.
func NewCachedClient(inner Client, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedClient {
	return &CachedClient{
		inner: inner,
		redis: redis,
		ttl:   ttl,
		logger: log.With(map[string]interface{}{
			"component": "inference-cache",
		}),
	}
}

func cacheKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(string(req.Tier)))
	h.Write([]byte{0})
	h.Write([]byte(req.SystemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(req.UserPrompt))
	return "inference:response:" + hex.EncodeToString(h.Sum(nil))
}

// Complete returns a cached response when available, otherwise calls the
// wrapped client and stores the result.
func (c *CachedClient) Complete(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)

	if cached, err := c.redis.Get(ctx, key); err == nil && cached != "" {
		c.logger.Debug("cache hit", map[string]interface{}{"tier": string(req.Tier)})
		return cached, nil
	}

	response, err := c.inner.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, response, c.ttl); err != nil {
		c.logger.Warn("failed to cache inference response", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return response, nil
}
