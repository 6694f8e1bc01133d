package crud

import "sync"

// Locks hands out one mutex per collection name. Every service bound to the
// same collection must draw its lock from the same Locks.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks returns an empty registry.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// For returns the mutex guarding collection, creating it on first use.
func (l *Locks) For(collection string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[collection]
	if !ok {
		m = &sync.Mutex{}
		l.locks[collection] = m
	}
	return m
}

// processLocks is used by services built without WithLocks.
var processLocks = NewLocks()
