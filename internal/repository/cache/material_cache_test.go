package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

type countingCatalog struct {
	materials map[string]models.Material
	calls     int
}

func (c *countingCatalog) ResolveMaterial(_ context.Context, materialID string) (*models.Material, error) {
	c.calls++
	m, ok := c.materials[materialID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestMaterialCache_FallsBackWhenRedisDown(t *testing.T) {
	next := &countingCatalog{materials: map[string]models.Material{
		"m1": {ID: "m1", Name: "Cement", Unit: "bag"},
	}}
	c := NewMaterialCache(next, unreachableClient(t), 0, nil)

	m, err := c.ResolveMaterial(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Cement", m.Name)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, defaultTTL, c.ttl)
}

func TestMaterialCache_PropagatesNotFound(t *testing.T) {
	next := &countingCatalog{materials: map[string]models.Material{}}
	c := NewMaterialCache(next, unreachableClient(t), time.Minute, nil)

	_, err := c.ResolveMaterial(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNewClient_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewClient(ctx, config.RedisConfig{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestMaterialKey(t *testing.T) {
	assert.Equal(t, "material:abc", materialKey("abc"))
}

func TestMessageLog_ErrorWhenRedisDown(t *testing.T) {
	log := NewMessageLog(unreachableClient(t), 0)
	assert.Equal(t, defaultTTL, log.ttl)

	_, err := log.FirstSeen(context.Background(), "wamid.1")
	assert.Error(t, err)
	assert.Equal(t, "wamsg:wamid.1", messageKey("wamid.1"))
}
