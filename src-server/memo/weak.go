package memo

import (
	"runtime"
	"sync"
	"weak"
)

// WeakMemo memoizes one value per *K without keeping the key reachable. When
// the key is collected its entry is dropped.
//
// Values must not point back at their key: the memo holds values strongly, so
// such a value would keep the key alive forever.
type WeakMemo[K any, V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[K]]V
	factory func(*K) V
}

func NewWeakMemo[K any, V any](factory func(*K) V) *WeakMemo[K, V] {
	return &WeakMemo[K, V]{
		entries: make(map[weak.Pointer[K]]V),
		factory: factory,
	}
}

func (m *WeakMemo[K, V]) Get(key *K) V {
	wp := weak.Make(key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.entries[wp]; ok {
		return v
	}
	v := m.factory(key)
	m.entries[wp] = v
	runtime.AddCleanup(key, m.forget, wp)
	return v
}

func (m *WeakMemo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *WeakMemo[K, V]) forget(wp weak.Pointer[K]) {
	m.mu.Lock()
	delete(m.entries, wp)
	m.mu.Unlock()
}
