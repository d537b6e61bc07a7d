// Package optimistic applies local state changes before the remote write
// confirms them and puts the previous state back when the write fails.
package optimistic

import (
	"context"
	"fmt"
	"sync"
)

// Store is a keyed, mutex-guarded cache of values that are mutated optimistically.
// clone must return a deep copy; values handed out never alias stored ones.
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	clone   func(V) V
	seq     uint64
}

type entry[V any] struct {
	value V
	seq   uint64 // bumped on every write, used to detect newer writes during persist
}

// NewStore creates an empty store.
func NewStore[K comparable, V any](clone func(V) V) *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]entry[V]),
		clone:   clone,
	}
}

// Get returns a copy of the value at key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return s.clone(e.value), true
}

// Set replaces the value at key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value)
}

// Delete drops the value at key.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *Store[K, V]) setLocked(key K, value V) uint64 {
	s.seq++
	s.entries[key] = entry[V]{value: s.clone(value), seq: s.seq}
	return s.seq
}

// Mutate applies apply to a copy of the current value, installs the result
// immediately, then calls persist with it. When persist fails the snapshot
// taken before apply is restored, unless a newer write replaced the
// optimistic value in the meantime. The key must already hold a value.
//
// persist may return a replacement value (for example with a server-assigned
// version); a nil pointer keeps the optimistic one.
func (s *Store[K, V]) Mutate(ctx context.Context, key K, apply func(V) (V, error), persist func(context.Context, V) (*V, error)) (V, error) {
	var zero V

	s.mu.Lock()
	current, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return zero, fmt.Errorf("optimistic: no value for key %v", key)
	}
	snapshot := s.clone(current.value)

	next, err := apply(s.clone(current.value))
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}
	seq := s.setLocked(key, next)
	s.mu.Unlock()

	confirmed, err := persist(ctx, s.clone(next))

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, stillOurs := s.entries[key]
	stillOurs = stillOurs && latest.seq == seq

	if err != nil {
		if stillOurs {
			s.setLocked(key, snapshot)
		}
		return zero, fmt.Errorf("persist failed, local change reverted: %w", err)
	}

	if confirmed != nil {
		next = *confirmed
		if stillOurs {
			s.setLocked(key, next)
		}
	}
	return s.clone(next), nil
}
