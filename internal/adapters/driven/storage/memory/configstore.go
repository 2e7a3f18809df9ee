package memory

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/config/values"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save and Load persist nothing; Save
// calls are counted so tests can assert that a change was committed.
type ConfigStore struct {
	mu    sync.RWMutex
	data  map[string]any
	saves int
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return NewConfigStoreFrom(nil)
}

// NewConfigStoreFrom creates a store seeded with a copy of data.
func NewConfigStoreFrom(data map[string]any) *ConfigStore {
	s := &ConfigStore{data: make(map[string]any, len(data))}
	maps.Copy(s.data, data)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *ConfigStore) lookup(key string) any {
	v, _ := s.Get(key)
	return v
}

func (s *ConfigStore) GetString(key string) string { return values.String(s.lookup(key)) }

func (s *ConfigStore) GetInt(key string) int { return values.Int(s.lookup(key)) }

func (s *ConfigStore) GetBool(key string) bool { return values.Bool(s.lookup(key)) }

func (s *ConfigStore) GetDuration(key string) time.Duration {
	return values.Duration(s.lookup(key))
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
