package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := &domain.Cart{
		UserID:  "user123",
		Version: 3,
		Items: []domain.CartLine{
			{ProductID: "65a1b2c3d4e5f60718293a4b", Name: "Serum", Price: 499, Quantity: 2},
			{ProductID: "sku-2", Name: "Toner", Price: 299, Quantity: 1},
		},
	}
	require.NoError(t, c.Set(ctx, "user123", cart))

	assert.True(t, mr.Exists("cart:user123"))
	ttl := mr.TTL("cart:user123")
	assert.GreaterOrEqual(t, ttl, defaultTTL)
	assert.Less(t, ttl, defaultTTL+maxJitterMins*time.Minute)

	got, err := c.Get(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", got.UserID)
	assert.Equal(t, int64(3), got.Version)
	require.Len(t, got.Items, 2)
	assert.Equal(t, domain.ProductID("65a1b2c3d4e5f60718293a4b"), got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "Toner", got.Items[1].Name)
}

func TestSet_IgnoresOlderVersion(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	fresh := &domain.Cart{UserID: "u1", Version: 2, Items: []domain.CartLine{{ProductID: "p1", Quantity: 2}}}
	stale := &domain.Cart{UserID: "u1", Version: 1, Items: []domain.CartLine{}}
	require.NoError(t, c.Set(ctx, "u1", fresh))
	require.NoError(t, c.Set(ctx, "u1", stale))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestSet_ReplacesWithNewerVersion(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", &domain.Cart{UserID: "u1", Version: 0, Items: []domain.CartLine{}}))
	require.NoError(t, c.Set(ctx, "u1", &domain.Cart{UserID: "u1", Version: 1, Items: []domain.CartLine{{ProductID: "p1", Quantity: 1}}}))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Len(t, got.Items, 1)
}

func TestSet_OverwritesUnreadableEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:u1", "{not json"))

	require.NoError(t, c.Set(context.Background(), "u1", &domain.Cart{UserID: "u1", Version: 1}))

	got, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_CorruptEntry(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:u1", "{not json"))

	_, err := c.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "u1", &domain.Cart{UserID: "u1"}))

	require.NoError(t, c.Delete(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))

	require.NoError(t, c.Delete(ctx, "u1"))
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
