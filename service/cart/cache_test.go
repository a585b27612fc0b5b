package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront.GO/model/entity"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)
	got, err := cache.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	cart := &entity.Cart{UserID: "u1", Items: []entity.CartLine{
		{ProductID: "p1", Quantity: 2, Title: "Tee", Price: 20},
	}}

	require.NoError(t, cache.Set(ctx, "u1", cart))

	ttl := mr.TTL(cacheKey("u1"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be base + max jitter")

	got, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, cart, got)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("u1"), `{"userId":`))
	_, err := cache.Get(context.Background(), "u1")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	raw, _ := json.Marshal(&entity.Cart{UserID: "u1"})
	require.NoError(t, mr.Set(cacheKey("u1"), string(raw)))

	require.NoError(t, cache.Delete(context.Background(), "u1"))
	assert.False(t, mr.Exists(cacheKey("u1")))
	assert.NoError(t, cache.Delete(context.Background(), "u1"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}

func TestRedisCache_InvalidateProducts(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "u1", &entity.Cart{UserID: "u1", Items: []entity.CartLine{
		{ProductID: "tee", Quantity: 1}, {ProductID: "cap", Quantity: 2},
	}}))
	require.NoError(t, cache.Set(ctx, "u2", &entity.Cart{UserID: "u2", Items: []entity.CartLine{
		{ProductID: "tee", Quantity: 1},
	}}))
	require.NoError(t, cache.Set(ctx, "u3", &entity.Cart{UserID: "u3", Items: []entity.CartLine{
		{ProductID: "dress", Quantity: 1},
	}}))
	assert.True(t, mr.Exists(productIndexKey("cap")))

	require.NoError(t, cache.InvalidateProducts(ctx, "cap"))
	assert.False(t, mr.Exists(cacheKey("u1")))
	assert.True(t, mr.Exists(cacheKey("u2")), "carts without the product stay cached")
	assert.False(t, mr.Exists(productIndexKey("cap")))

	require.NoError(t, cache.InvalidateProducts(ctx, "tee", "unknown"))
	assert.False(t, mr.Exists(cacheKey("u2")))
	assert.True(t, mr.Exists(cacheKey("u3")))

	assert.NoError(t, cache.InvalidateProducts(ctx))
}
