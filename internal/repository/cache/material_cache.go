package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

const defaultTTL = 24 * time.Hour

// NewClient builds a Redis client from configuration and checks connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return client, nil
}

// MaterialCache is a read-through Redis cache in front of a material catalog.
// Cache failures are logged and served from the underlying catalog.
type MaterialCache struct {
	next   repository.MaterialCatalog
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.MaterialCatalog = (*MaterialCache)(nil)

// NewMaterialCache wraps next with a cache using keys material:{id}.
func NewMaterialCache(next repository.MaterialCatalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *MaterialCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MaterialCache{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *MaterialCache) ResolveMaterial(ctx context.Context, materialID string) (*models.Material, error) {
	key := materialKey(materialID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var m models.Material
		if err := json.Unmarshal(raw, &m); err == nil {
			return &m, nil
		}
		c.logger.Warn("discarding undecodable cached material", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("material cache read failed", zap.String("key", key), zap.Error(err))
	}

	m, err := c.next.ResolveMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return m, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("material cache write failed", zap.String("key", key), zap.Error(err))
	}
	return m, nil
}

func materialKey(materialID string) string {
	return fmt.Sprintf("material:%s", materialID)
}
