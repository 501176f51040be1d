package tutorsy

import (
	"context"
	"sync"
	"time"
)

// ProfileStore persists per-user personalization attributes. Upsert carries
// merge semantics (new non-zero fields overwrite, others are retained) and
// must serialize read-merge-write per user so concurrent turns for the same
// user never lose an update. A store failure is fatal for the turn:
// personalization correctness and backfill depend on it.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
}

// MemoryStore is an in-process ProfileStore. A single mutex serializes every
// read-merge-write, which trivially satisfies the per-user ordering
// requirement for an in-memory map.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		now:      time.Now,
	}
}

// Get returns the stored profile for userID, reporting absence via ok=false.
func (s *MemoryStore) Get(_ context.Context, userID string) (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p, ok, nil
}

// Upsert merges p into the stored profile for p.UserID and returns the merged
// result. Profiles without a user id are ignored.
func (s *MemoryStore) Upsert(_ context.Context, p Profile) (Profile, error) {
	if p.UserID == "" {
		return p, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.profiles[p.UserID].Merge(p)
	merged.LastInteraction = s.now()
	s.profiles[p.UserID] = merged
	return merged, nil
}

var _ ProfileStore = (*MemoryStore)(nil)
