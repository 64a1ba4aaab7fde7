package service

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
	"github.com/vishnuvardhan105222/E-commerce/internal/redisclient"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// ProductCache is a read-through Redis cache in front of a ProductRepository.
// Single-product reads are served from TTL'd JSON snapshots; writes and stock
// decrements invalidate the snapshot. Any Redis error falls back to the
// underlying repository, so a dead cache only costs latency.
type ProductCache struct {
	inner  ProductRepository
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductCache wraps a product repository with a Redis cache
func NewProductCache(inner ProductRepository, redis *redisclient.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// GetProductByID serves from cache when possible, otherwise reads through and
// populates the cache
func (c *ProductCache) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	payload, err := c.redis.GetProduct(ctx, id.Hex())
	if err != nil {
		c.logger.Warn("Product cache read failed, falling back to store",
			zap.String("product_id", id.Hex()),
			zap.Error(err))
	} else if payload != "" {
		var product models.Product
		if err := json.Unmarshal([]byte(payload), &product); err == nil {
			util.ProductCacheHits.Inc()
			return &product, nil
		}
	}

	util.ProductCacheMisses.Inc()
	product, err := c.inner.GetProductByID(ctx, id)
	if err != nil || product == nil {
		return product, err
	}

	c.cache(ctx, product)
	return product, nil
}

// GetProductsByIDs bypasses the cache; multi-document reads go straight to
// the store
func (c *ProductCache) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return c.inner.GetProductsByIDs(ctx, ids)
}

// ListProducts bypasses the cache
func (c *ProductCache) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.inner.ListProducts(ctx)
}

// InsertProduct writes through and caches the new product
func (c *ProductCache) InsertProduct(ctx context.Context, product *models.Product) error {
	if err := c.inner.InsertProduct(ctx, product); err != nil {
		return err
	}
	c.cache(ctx, product)
	return nil
}

// ReplaceProduct writes through and invalidates the snapshot
func (c *ProductCache) ReplaceProduct(ctx context.Context, product *models.Product) (bool, error) {
	ok, err := c.inner.ReplaceProduct(ctx, product)
	if err == nil && ok {
		c.invalidate(ctx, product.ID)
	}
	return ok, err
}

// DeleteProduct writes through and invalidates the snapshot
func (c *ProductCache) DeleteProduct(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ok, err := c.inner.DeleteProduct(ctx, id)
	if err == nil && ok {
		c.invalidate(ctx, id)
	}
	return ok, err
}

// DecrementStock writes through and invalidates the snapshot so the next read
// sees the decremented stock
func (c *ProductCache) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error) {
	product, err := c.inner.DecrementStock(ctx, id, qty)
	if err == nil && product != nil {
		c.invalidate(ctx, id)
	}
	return product, err
}

// WarmCache loads the whole catalog into Redis. Called once at startup;
// failures are logged and tolerated.
func (c *ProductCache) WarmCache(ctx context.Context) error {
	products, err := c.inner.ListProducts(ctx)
	if err != nil {
		return err
	}

	for i := range products {
		c.cache(ctx, &products[i])
	}

	c.logger.Info("Product cache warmed", zap.Int("count", len(products)))
	return nil
}

func (c *ProductCache) cache(ctx context.Context, product *models.Product) {
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.redis.SetProduct(ctx, product.ID.Hex(), string(payload), c.ttl); err != nil {
		c.logger.Warn("Failed to cache product",
			zap.String("product_id", product.ID.Hex()),
			zap.Error(err))
	}
}

func (c *ProductCache) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := c.redis.InvalidateProduct(ctx, id.Hex()); err != nil {
		c.logger.Warn("Failed to invalidate cached product",
			zap.String("product_id", id.Hex()),
			zap.Error(err))
	}
}
