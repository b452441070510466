package store

import (
	"context"
	"sync"

	"github.com/EdgeApp/infinite-ramp/core"
	"github.com/EdgeApp/infinite-ramp/ports"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	items map[string]string
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.Store {
	return &MemoryStore{
		items: make(map[string]string),
	}
}

// GetItem retrieves a value by plugin and key
func (s *MemoryStore) GetItem(ctx context.Context, pluginID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.items[pluginID+":"+key]
	if !exists {
		return "", core.ErrNotFound
	}

	return value, nil
}

// SetItem stores a value under plugin and key
func (s *MemoryStore) SetItem(ctx context.Context, pluginID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[pluginID+":"+key] = value

	return nil
}

// DeleteItem removes a value by plugin and key
func (s *MemoryStore) DeleteItem(ctx context.Context, pluginID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, pluginID+":"+key)

	return nil
}
