// Package redisstore keeps saved designs in redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"flex-designer-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore stores values under prefix+key without expiry.
type KeyValueStore struct {
	client *redis.Client
	prefix string
}

var _ contract.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore stores values through client. The caller owns the
// client; the websocket hub shares the same connection.
func NewKeyValueStore(client *redis.Client, prefix string) *KeyValueStore {
	return &KeyValueStore{client: client, prefix: prefix}
}

func (s *KeyValueStore) key(k string) string {
	return s.prefix + k
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
