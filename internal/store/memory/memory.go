// Package memory implements an in-process storage port. Slots live in a map
// and vanish with the process; it backs tests and the "memory" backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Store is a map of slot name to content.
type Store struct {
	mu    sync.RWMutex
	slots map[string][]byte
	quota int
}

// Option configures a Store.
type Option func(*Store)

// WithQuota caps the total bytes held across all slots. A Save that would
// exceed it fails with types.ErrQuotaExceeded and leaves the slot unchanged.
func WithQuota(bytes int) Option {
	return func(s *Store) { s.quota = bytes }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{slots: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the slot content.
func (s *Store) Load(_ context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%s: %w", slot, types.ErrSlotNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data in slot.
func (s *Store) Save(_ context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used := len(data)
		for name, v := range s.slots {
			if name != slot {
				used += len(v)
			}
		}
		if used > s.quota {
			return fmt.Errorf("%s: %d of %d bytes: %w", slot, used, s.quota, types.ErrQuotaExceeded)
		}
	}
	s.slots[slot] = append([]byte(nil), data...)
	return nil
}

// Slots returns the names of every written slot, sorted.
func (s *Store) Slots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
