package status

import (
	"slices"
	"sync"
)

// MetricMap holds one kind of metric keyed by dotted name ("rhythm.taps", "audio.played")
// Components look their pointers up once at construction and update them without locking
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewMetricMap returns an empty map
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric named key, registering a zero value the first time it is asked for
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok = m.items[key]; !ok {
		ptr = new(T)
		m.items[key] = ptr
	}
	return ptr
}

// Range calls fn for each metric in key order
// fn runs outside the lock so it may call Get
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	ptrs := make(map[string]*T, len(m.items))
	for k, p := range m.items {
		keys = append(keys, k)
		ptrs[k] = p
	}
	m.mu.RUnlock()

	slices.Sort(keys)
	for _, k := range keys {
		fn(k, ptrs[k])
	}
}

// Count returns how many metrics are registered
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
