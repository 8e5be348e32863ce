// Package drafts keeps booking-wizard progress per user so a half-finished
// booking resumes on another device.
package drafts

import (
	"context"
	"errors"
	"sync"
	"time"

	"coachhub/internal/domain/draft"
)

// ErrNotFound is returned when a user has no live draft.
var ErrNotFound = errors.New("draft not found")

// Store saves one draft per user for draft.TTL after its last write.
type Store interface {
	Get(ctx context.Context, userID string) (draft.Draft, error)
	Put(ctx context.Context, userID string, d draft.Draft) error
	Delete(ctx context.Context, userID string) error
}

type memoryItem struct {
	d       draft.Draft
	expires time.Time
}

// MemoryStore keeps drafts in process memory. Drafts are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store using draft.TTL.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), ttl: draft.TTL, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Get returns the user's draft unless it expired.
func (s *MemoryStore) Get(_ context.Context, userID string) (draft.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[userID]
	if !ok {
		return draft.Draft{}, ErrNotFound
	}
	if !s.now().Before(it.expires) {
		delete(s.items, userID)
		return draft.Draft{}, ErrNotFound
	}
	return it.d, nil
}

// Put replaces the user's draft and restarts its TTL.
func (s *MemoryStore) Put(_ context.Context, userID string, d draft.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	d.UpdatedAt = now
	s.items[userID] = memoryItem{d: d, expires: now.Add(s.ttl)}
	return nil
}

// Delete removes the user's draft if any.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}

// Sweep drops expired drafts and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, it := range s.items {
		if !now.Before(it.expires) {
			delete(s.items, k)
			n++
		}
	}
	return n
}
