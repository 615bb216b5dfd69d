package utils

import (
	"sync"
	"time"
)

// VisitStore keeps referral code observations keyed by visitor token.
// Entries expire after their TTL; Take removes the entry (clear-on-use), so
// a referral converts at most once per observation.
type VisitStore interface {
	Set(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
	Take(key string) (string, bool)
}

type visitEntry struct {
	value     string
	expiresAt time.Time
}

type memoryVisitStore struct {
	mu    sync.Mutex
	items map[string]visitEntry
}

// NewVisitStore returns an in-memory VisitStore.
func NewVisitStore() VisitStore {
	return &memoryVisitStore{items: make(map[string]visitEntry)}
}

func (s *memoryVisitStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = visitEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (s *memoryVisitStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.items, key)
		return "", false
	}
	return entry.value, true
}

func (s *memoryVisitStore) Take(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", false
	}
	delete(s.items, key)
	if time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

// ReferralVisits is the process-wide store checkout consumes from.
var ReferralVisits = NewVisitStore()
