package memo

import (
	"sync"
	"time"
)

// Slot is a single lazily-computed value. With a positive TTL the value is
// recomputed on the first access after it has been held for longer than TTL.
type Slot[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	value   T
	present bool
	setAt   time.Time
}

type SlotOption func(*slotOptions)

type slotOptions struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL makes the slot expire ttl after its value was last set.
func WithTTL(ttl time.Duration) SlotOption {
	return func(o *slotOptions) { o.ttl = ttl }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SlotOption {
	return func(o *slotOptions) { o.now = now }
}

func NewSlot[T any](opts ...SlotOption) *Slot[T] {
	o := slotOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slot[T]{ttl: o.ttl, now: o.now}
}

// GetOrCreate returns the live value or stores and returns factory().
func (s *Slot[T]) GetOrCreate(factory func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveLocked() {
		return s.value
	}
	s.setLocked(factory())
	return s.value
}

// Get returns the value if one is present and not expired.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.liveLocked() {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Set overwrites the value and restarts its TTL.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(v)
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.present = false
}

func (s *Slot[T]) liveLocked() bool {
	if !s.present {
		return false
	}
	if s.ttl > 0 && s.now().Sub(s.setAt) >= s.ttl {
		return false
	}
	return true
}

func (s *Slot[T]) setLocked(v T) {
	s.value = v
	s.present = true
	s.setAt = s.now()
}
