package similarity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/health-coach-server/internal/domain"
)

// resultCache is a two-tier cache for search results: an in-process
// expirable LRU in front of an optional shared Redis tier. Cache failures
// are logged and treated as misses.
type resultCache struct {
	local  *expirable.LRU[string, []domain.SimilarDay]
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func newResultCache(config *domain.CacheConfig, logger *logrus.Logger) *resultCache {
	size := config.LocalSize
	if size <= 0 {
		size = 512
	}

	c := &resultCache{
		local:  expirable.NewLRU[string, []domain.SimilarDay](size, nil, config.LocalTTL),
		ttl:    config.RedisTTL,
		logger: logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid redis URL, similarity cache runs local-only")
			return c
		}
		if config.PoolSize > 0 {
			opts.PoolSize = config.PoolSize
		}
		if config.PoolTimeout > 0 {
			opts.PoolTimeout = config.PoolTimeout
		}
		c.redis = redis.NewClient(opts)
	}

	return c
}

func (c *resultCache) get(ctx context.Context, key string) ([]domain.SimilarDay, bool) {
	if days, ok := c.local.Get(key); ok {
		return days, true
	}

	if c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Debug("Redis get failed, treating as miss")
		}
		return nil, false
	}

	var days []domain.SimilarDay
	if err := json.Unmarshal(raw, &days); err != nil {
		c.logger.WithError(err).Debug("Corrupt cached similarity entry, treating as miss")
		return nil, false
	}

	c.local.Add(key, days)
	return days, true
}

func (c *resultCache) set(ctx context.Context, key string, days []domain.SimilarDay) {
	c.local.Add(key, days)

	if c.redis == nil {
		return
	}

	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Debug("Redis set failed, entry cached locally only")
	}
}
