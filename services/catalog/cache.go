package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nutrimatch-go-worker/models"
	"nutrimatch-go-worker/services/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cachePrefix = "nutrimatch:catalog:"

// Cache is the subset of the redis client the catalog needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedCatalog keeps query results in redis for ttl. Cache failures are
// logged and the query goes to the wrapped catalog.
type CachedCatalog struct {
	inner FoodCatalog
	cache Cache
	ttl   time.Duration
	log   *logrus.Entry
}

func NewCachedCatalog(inner FoodCatalog, cache Cache, ttl time.Duration, log *logrus.Entry) *CachedCatalog {
	return &CachedCatalog{inner: inner, cache: cache, ttl: ttl, log: log}
}

func (c *CachedCatalog) Query(ctx context.Context, filter Filter) ([]models.Food, error) {
	key := cachePrefix + filter.Key()
	payload, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var foods []models.Food
		if jsonErr := json.Unmarshal(payload, &foods); jsonErr == nil {
			metrics.CatalogCacheHits.Inc()
			return foods, nil
		}
		c.log.WithField("key", key).Warn("discarding unreadable catalog cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.log.WithField("key", key).Warnf("catalog cache get: %v", err)
	}

	metrics.CatalogCacheMisses.Inc()
	foods, err := c.inner.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(foods); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.log.WithField("key", key).Warnf("catalog cache set: %v", err)
		}
	}
	return foods, nil
}

func (c *CachedCatalog) Get(ctx context.Context, id int64) (*models.Food, error) {
	return c.inner.Get(ctx, id)
}
