package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func NewRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	return &RedisStorage{
		client:    client,
		namespace: namespace,
	}
}

type RedisStorage struct {
	client    *redis.Client
	namespace string
}

func (r RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Set stores the value without expiry; shopper state lives until it is deleted.
func (r RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.storageKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisStorage) Close() error {
	return r.client.Close()
}

func (r RedisStorage) storageKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}
