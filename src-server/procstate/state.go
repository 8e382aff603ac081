// Package procstate holds caches that live as long as the process and are
// shared by every plugin that asks for the same namespace.
package procstate

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

type State struct {
	entries *xsync.MapOf[string, any]
}

func New() *State {
	return &State{entries: xsync.NewMapOf[string, any]()}
}

// Map returns the cache map for ns, creating it on first use. Every caller
// asking for the same namespace with the same K and V gets the same map.
// Asking for an existing namespace with different types panics.
func Map[K comparable, V any](s *State, ns string) *xsync.MapOf[K, V] {
	key := "cache:" + ns
	value, _ := s.entries.LoadOrCompute(key, func() any {
		return xsync.NewMapOf[K, V]()
	})
	m, ok := value.(*xsync.MapOf[K, V])
	if !ok {
		panic(fmt.Sprintf("procstate: namespace %q holds %T", ns, value))
	}
	return m
}

// Namespaces lists the namespaces created so far.
func (s *State) Namespaces() []string {
	var out []string
	s.entries.Range(func(key string, _ any) bool {
		out = append(out, key[len("cache:"):])
		return true
	})
	return out
}
