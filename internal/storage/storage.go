package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store is durable key-value storage partitioned by scope (one scope per chat user).
// Writes are last-write-wins; no merge is attempted.
type Store interface {
	Get(ctx context.Context, scope, key string) (value string, found bool, err error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
}

// Scoped binds a Store to a single scope.
type Scoped struct {
	store Store
	scope string
}

// Scope returns a view of store restricted to scope.
func Scope(store Store, scope string) *Scoped {
	return &Scoped{store: store, scope: scope}
}

func (s *Scoped) Scope() string {
	return s.scope
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.scope, key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.scope, key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.scope, key)
}

// Driver names accepted by the storage.driver setting.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ParseDriver normalises a storage.driver value, defaulting to memory.
func ParseDriver(s string) (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(s)); d {
	case "":
		return DriverMemory, nil
	case DriverMemory, DriverMongo, DriverPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unknown storage driver %q", s)
	}
}

// MemoryStore keeps entries in process memory. Used in tests and single-instance demos.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[string]string),
	}
}

func (m *MemoryStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[scope][key]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[scope] == nil {
		m.entries[scope] = make(map[string]string)
	}
	m.entries[scope][key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[scope], key)
	return nil
}

// Reset removes every entry in every scope.
func (m *MemoryStore) Reset(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, entries := range m.entries {
		n += int64(len(entries))
	}
	m.entries = make(map[string]map[string]string)
	return n, nil
}
