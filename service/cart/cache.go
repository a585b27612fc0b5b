package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront.GO/model/entity"
)

// Cache stores assembled carts by user id.
type Cache interface {
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	Set(ctx context.Context, userID string, cart *entity.Cart) error
	Delete(ctx context.Context, userID string) error
	// InvalidateProducts drops every cached cart holding one of productIDs.
	InvalidateProducts(ctx context.Context, productIDs ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// Set stores the cart for baseTTL plus up to 4 minutes of jitter and indexes
// the user under every product the cart holds.
func (r RedisCache) Set(ctx context.Context, userID string, cart *entity.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, cacheKey(userID), raw, ttl)
	if cart != nil {
		for _, l := range cart.Items {
			pipe.SAdd(ctx, productIndexKey(l.ProductID), userID)
			// Outlives every cart it points at.
			pipe.Expire(ctx, productIndexKey(l.ProductID), r.baseTTL+5*time.Minute)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// InvalidateProducts deletes the carts indexed under each product, then the index.
// Index members whose cart no longer holds the product only cost an extra delete.
func (r RedisCache) InvalidateProducts(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		idx := productIndexKey(id)
		users, err := r.client.SMembers(ctx, idx).Result()
		if err != nil {
			return fmt.Errorf("redis smembers failed: %w", err)
		}
		for _, u := range users {
			keys = append(keys, cacheKey(u))
		}
		keys = append(keys, idx)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func productIndexKey(productID string) string {
	return fmt.Sprintf("cart:byproduct:%s", productID)
}

// NoopCache always misses. Used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*entity.Cart, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, string, *entity.Cart) error { return nil }
func (NoopCache) Delete(context.Context, string) error { return nil }
func (NoopCache) InvalidateProducts(context.Context, ...string) error { return nil }
