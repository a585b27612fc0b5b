package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront.GO/model/filter"
)

// FiltersKey is where the filter selection is persisted.
const FiltersKey = "filters"

// SessionStore is browsing-session scoped key/value storage.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemorySessionStore lives as long as the process.
type MemorySessionStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{m: make(map[string]string)}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemorySessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

// RedisSessionStore keeps one hash per session id, expiring after ttl of inactivity.
type RedisSessionStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisSessionStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *RedisSessionStore) key() string {
	return "session:" + s.sessionID
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// SaveFilters persists the full selection as JSON.
func SaveFilters(ctx context.Context, store SessionStore, sel filter.Selection) error {
	if sel == nil {
		sel = filter.Selection{}
	}
	b, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	return store.Set(ctx, FiltersKey, string(b))
}

// LoadFilters rehydrates the persisted selection; absent state is an empty selection.
func LoadFilters(ctx context.Context, store SessionStore) (filter.Selection, error) {
	raw, ok, err := store.Get(ctx, FiltersKey)
	if err != nil {
		return filter.Selection{}, err
	}
	if !ok || raw == "" || raw == "null" {
		return filter.Selection{}, nil
	}
	var sel filter.Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return filter.Selection{}, fmt.Errorf("decode filters: %w", err)
	}
	if sel == nil {
		sel = filter.Selection{}
	}
	return sel, nil
}
