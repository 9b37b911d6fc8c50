// Package cache provides a redis-backed cache-aside for classification
// results, keyed by the ticket description. Identical descriptions skip the
// model call; everything here is best effort and a failure is just a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/persistence"
)

const keyPrefix = "classification:"

// ClassificationCache stores model-produced results. Fallback results are
// never cached; they are cheap to recompute and would pin a degraded answer.
type ClassificationCache struct {
	redis  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewClassificationCache wraps the shared redis client.
func NewClassificationCache(redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) *ClassificationCache {
	return &ClassificationCache{redis: redis, ttl: ttl, logger: logger}
}

// Get returns a cached result for the description, or nil on miss.
func (c *ClassificationCache) Get(ctx context.Context, description string) *domain.ClassificationResult {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil
	}
	payload, err := c.redis.Client.Get(ctx, Key(description)).Bytes()
	if err != nil {
		return nil
	}
	var result domain.ClassificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn("corrupt cache entry dropped", zap.Error(err))
		return nil
	}
	return &result
}

// Put stores a result under the description key.
func (c *ClassificationCache) Put(ctx context.Context, description string, result domain.ClassificationResult) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, Key(description), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
}

// Key hashes the description so arbitrary ticket text never becomes a raw
// redis key.
func Key(description string) string {
	sum := sha256.Sum256([]byte(description))
	return keyPrefix + hex.EncodeToString(sum[:])
}
