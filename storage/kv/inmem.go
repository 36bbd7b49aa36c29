package kvstore

import (
	"context"
	"sync"

	"github.com/myschool/myschool/core"
)

type memStore struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

var _ core.KVStore = (*memStore)(nil)

// NewMemStore returns a process-local KVStore, used when no Redis server is configured.
func NewMemStore() core.KVStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}
