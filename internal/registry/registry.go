// Package registry provides the guarded in-memory stores backing the room
// and session registries. Every method is individually atomic; compound
// read-modify-write sequences must be serialized by the caller (see the
// locks package).
package registry

import "sync"

type Store[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

func New[V any]() *Store[V] {
	return &Store[V]{items: make(map[string]V)}
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// SetIfAbsent stores value only when key is not already present, reporting
// whether the store happened.
func (s *Store[V]) SetIfAbsent(key string, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = value
	return true
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *Store[V]) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	return ok
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a snapshot of the store at call time. Mutating the returned
// map does not affect the store.
func (s *Store[V]) Items() map[string]V {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]V, len(s.items))
	for k, v := range s.items {
		snapshot[k] = v
	}
	return snapshot
}

func (s *Store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}
