// Package memo contains lazy keyed caches.
//
// MapMemo works over any map-like store, StrongMemo keeps its keys alive for
// the lifetime of the memo, and WeakMemo lets a key be collected once nothing
// else points to it. Slot is a single lazily-computed value with an optional
// time-to-live.
package memo

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Store is the map-like backing of a MapMemo.
type Store[K comparable, V any] interface {
	Load(key K) (V, bool)
	Store(key K, value V)
}

// MapMemo computes a value on first access of a key and stores it. There is
// no invalidation.
type MapMemo[K comparable, V any] struct {
	mu      sync.Mutex
	store   Store[K, V]
	factory func(K) V
}

func NewMapMemo[K comparable, V any](store Store[K, V], factory func(K) V) *MapMemo[K, V] {
	return &MapMemo[K, V]{store: store, factory: factory}
}

func (m *MapMemo[K, V]) Get(key K) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.store.Load(key); ok {
		return v
	}
	v := m.factory(key)
	m.store.Store(key, v)
	return v
}

// StrongMemo holds normal references to its keys.
type StrongMemo[K comparable, V any] struct {
	entries *xsync.MapOf[K, V]
	factory func(K) V
}

func NewStrongMemo[K comparable, V any](factory func(K) V) *StrongMemo[K, V] {
	return &StrongMemo[K, V]{
		entries: xsync.NewMapOf[K, V](),
		factory: factory,
	}
}

// Get returns the value for key, running the factory at most once per key.
func (m *StrongMemo[K, V]) Get(key K) V {
	v, _ := m.entries.LoadOrCompute(key, func() V {
		return m.factory(key)
	})
	return v
}

// Peek returns the value for key without creating it.
func (m *StrongMemo[K, V]) Peek(key K) (V, bool) {
	return m.entries.Load(key)
}

func (m *StrongMemo[K, V]) Len() int {
	return m.entries.Size()
}
