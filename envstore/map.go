package envstore

import (
	"sort"
	"strings"
	"sync"
)

// Map is an in-memory store. Individual operations are atomic; a Has followed by a
// Set from two goroutines is not, which mirrors the process environment.
type Map struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMap creates a store seeded with a copy of seed (which may be nil).
func NewMap(seed map[string]string) *Map {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &Map{values: values}
}

// Get returns the value of key and whether it is set.
func (m *Map) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is set.
func (m *Map) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}

// Set assigns value to key.
func (m *Map) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (m *Map) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of all entries.
func (m *Map) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
