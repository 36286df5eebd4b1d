// Package guard provides single-flight exclusion keyed by an identifier.
//
// The automation scheduler holds a key for the duration of one account's
// pipeline so that sweeps and manual triggers never overlap for the same
// account. Local only covers a single process; running several replicas
// needs a Guard backed by a shared lease.
package guard

import (
	"sort"
	"sync"
)

// Guard grants at most one holder per key at a time.
type Guard interface {
	// TryAcquire claims key without blocking. ok is false when key is
	// already held. release is idempotent.
	TryAcquire(key string) (release func(), ok bool)
}

// Local is an in-memory Guard.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal creates an empty in-memory guard
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// TryAcquire implements Guard
func (l *Local) TryAcquire(key string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently claimed
func (l *Local) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// Keys returns the currently claimed keys in sorted order
func (l *Local) Keys() []string {
	l.mu.Lock()
	keys := make([]string, 0, len(l.held))
	for k := range l.held {
		keys = append(keys, k)
	}
	l.mu.Unlock()
	sort.Strings(keys)
	return keys
}
