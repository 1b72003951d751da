package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/b2bplatform/b2b-backend/internal/core/domain"
)

const imageCacheTTL = 10 * time.Minute

// ImageListCache caches per-product image listings in Redis.
// Key format: product_images:<product_id>
//
// Cache errors are logged and treated as misses; the repository stays
// authoritative. Every image mutation calls Invalidate explicitly.
type ImageListCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewImageListCache creates an ImageListCache wrapping the given Redis client.
func NewImageListCache(client *redis.Client, log zerolog.Logger) *ImageListCache {
	return &ImageListCache{client: client, log: log}
}

// Get returns the cached listing and whether it was present.
func (c *ImageListCache) Get(ctx context.Context, productID string) ([]domain.ProductImage, bool) {
	raw, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("image cache read failed")
		}
		return nil, false
	}

	var images []domain.ProductImage
	if err := json.Unmarshal(raw, &images); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("image cache entry corrupt, dropping")
		_ = c.client.Del(ctx, c.key(productID)).Err()
		return nil, false
	}
	return images, true
}

// Set stores the listing (expires after imageCacheTTL).
func (c *ImageListCache) Set(ctx context.Context, productID string, images []domain.ProductImage) {
	raw, err := json.Marshal(images)
	if err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("image cache encode failed")
		return
	}
	if err := c.client.Set(ctx, c.key(productID), raw, imageCacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("image cache write failed")
	}
}

// Invalidate drops the cached listing for the product.
func (c *ImageListCache) Invalidate(ctx context.Context, productID string) {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("image cache invalidation failed")
	}
}

func (c *ImageListCache) key(productID string) string {
	return fmt.Sprintf("product_images:%s", productID)
}
