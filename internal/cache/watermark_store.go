// Package cache provides the persisted per-viewer conversation watermark
// stores: Redis for production, in-memory for tests and single-node demo
// setups.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/config"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/conversation"
)

// RedisWatermarkStore keeps one hash per viewer; fields are the
// "convSeen:{requestID}:{approvalID}" keys, values the normalized timestamp
// strings. Watermarks survive restarts and are shared across instances.
type RedisWatermarkStore struct {
	client *redis.Client
}

// NewRedisWatermarkStore connects a watermark store to Redis.
func NewRedisWatermarkStore(cfg *config.RedisConfig) *RedisWatermarkStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisWatermarkStore{client: client}
}

// Ping verifies the Redis connection.
func (s *RedisWatermarkStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func viewerHash(viewer string) string {
	return "watermarks:" + viewer
}

// GetLastSeen returns the stored watermark, or "" when absent.
func (s *RedisWatermarkStore) GetLastSeen(ctx context.Context, viewer, requestID, approvalID string) (string, error) {
	val, err := s.client.HGet(ctx, viewerHash(viewer), conversation.StoreKey(requestID, approvalID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read watermark: %w", err)
	}
	return val, nil
}

// SetLastSeen stores the watermark.
func (s *RedisWatermarkStore) SetLastSeen(ctx context.Context, viewer, requestID, approvalID, key string) error {
	if err := s.client.HSet(ctx, viewerHash(viewer), conversation.StoreKey(requestID, approvalID), key).Err(); err != nil {
		return fmt.Errorf("failed to store watermark: %w", err)
	}
	return nil
}

// MemoryWatermarkStore is the in-process fallback used when Redis is
// disabled, and by tests.
type MemoryWatermarkStore struct {
	mu    sync.RWMutex
	marks map[string]map[string]string
}

// NewMemoryWatermarkStore creates an empty in-memory store.
func NewMemoryWatermarkStore() *MemoryWatermarkStore {
	return &MemoryWatermarkStore{marks: make(map[string]map[string]string)}
}

// GetLastSeen returns the stored watermark, or "" when absent.
func (s *MemoryWatermarkStore) GetLastSeen(ctx context.Context, viewer, requestID, approvalID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks[viewer][conversation.StoreKey(requestID, approvalID)], nil
}

// SetLastSeen stores the watermark.
func (s *MemoryWatermarkStore) SetLastSeen(ctx context.Context, viewer, requestID, approvalID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marks[viewer] == nil {
		s.marks[viewer] = make(map[string]string)
	}
	s.marks[viewer][conversation.StoreKey(requestID, approvalID)] = key
	return nil
}
