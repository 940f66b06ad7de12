package memory

import (
	"context"

	"flex-designer-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// KeyValueStore keeps values in process memory. Entries never expire.
type KeyValueStore struct {
	cache *cache.Cache
}

var _ contract.KeyValueStore = (*KeyValueStore)(nil)

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := s.cache.Get(key); found {
		return append([]byte(nil), x.([]byte)...), true, nil
	}
	return nil, false, nil
}

func (s *KeyValueStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}
