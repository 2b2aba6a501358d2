package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/twoflytrading/wholesale-backend/pkg/db/models"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/redis"
)

const activeView = "active"

// CacheStore is the slice of the redis client the catalog needs.
type CacheStore interface {
	CatalogKey(view string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// productCache is a read-through cache over the active product list.
// Cache failures fall back to the database; they never fail a request.
type productCache struct {
	store CacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

func newProductCache(store CacheStore, ttl time.Duration, logg *logger.Logger) *productCache {
	return &productCache{store: store, ttl: ttl, logg: logg}
}

func (c *productCache) getActive(ctx context.Context) ([]models.Product, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, c.store.CatalogKey(activeView))
	if err != nil {
		if err != redis.ErrCacheMiss && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "catalog cache read failed")
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "catalog cache payload corrupt")
		}
		return nil, false
	}
	return products, true
}

func (c *productCache) setActive(ctx context.Context, products []models.Product) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.store.CatalogKey(activeView), string(payload), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
}

func (c *productCache) invalidate(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Del(ctx, c.store.CatalogKey(activeView)); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "catalog cache invalidation failed")
	}
}
