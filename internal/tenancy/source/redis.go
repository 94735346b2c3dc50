package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// DefaultRedisKey is where the registry document lives unless overridden.
const DefaultRedisKey = "tenancy:registry"

// RedisStore keeps the registry document as a JSON blob under one key.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a registry store; an empty key uses DefaultRedisKey.
func NewRedisStore(redisClient *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{redis: redisClient, key: key}
}

func (s *RedisStore) Name() string { return "redis" }

// Get retrieves the stored document.
func (s *RedisStore) Get(ctx context.Context) (tenancy.Document, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return tenancy.Document{}, fmt.Errorf("source: redis key %s: %w", s.key, ErrRegistryNotFound)
	}
	if err != nil {
		return tenancy.Document{}, fmt.Errorf("source: redis: get: %w", err)
	}
	doc, err := tenancy.ParseDocument(data)
	if err != nil {
		return tenancy.Document{}, fmt.Errorf("source: redis: %w", err)
	}
	return doc, nil
}

func (s *RedisStore) Load(ctx context.Context) (*tenancy.Registry, error) {
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := doc.Registry()
	if err != nil {
		return nil, fmt.Errorf("source: redis: %w", err)
	}
	return reg, nil
}

// Save validates doc and stores it. Invalid documents are never written.
func (s *RedisStore) Save(ctx context.Context, doc tenancy.Document) error {
	if _, err := doc.Registry(); err != nil {
		return fmt.Errorf("source: redis: refusing invalid registry: %w", err)
	}
	data, err := doc.JSON()
	if err != nil {
		return fmt.Errorf("source: redis: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("source: redis: set: %w", err)
	}
	return nil
}
