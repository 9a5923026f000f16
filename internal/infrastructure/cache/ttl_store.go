package cache

import (
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlStore is a mutex-guarded map whose entries expire lazily on read
type ttlStore[V any] struct {
	mu      sync.Mutex
	entries map[string]ttlEntry[V]
	now     func() time.Time
}

func newTTLStore[V any]() *ttlStore[V] {
	return &ttlStore[V]{entries: make(map[string]ttlEntry[V]), now: time.Now}
}

func (s *ttlStore[V]) get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (s *ttlStore[V]) set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ttlEntry[V]{value: value, expiresAt: s.now().Add(ttl)}
}

// setIfAbsent stores value unless a live entry exists and reports whether it stored
func (s *ttlStore[V]) setIfAbsent(key string, value V, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	s.entries[key] = ttlEntry[V]{value: value, expiresAt: now.Add(ttl)}
	return true
}

// deleteIf removes key when match accepts its live value
func (s *ttlStore[V]) deleteIf(key string, match func(V) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !match(e.value) {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *ttlStore[V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]ttlEntry[V])
}
