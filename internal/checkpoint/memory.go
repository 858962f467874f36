package checkpoint

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements in-memory checkpoints. Useful for tests and
// for runs where durability across processes is not needed.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new memory store. Records never expire; a
// claim's checkpoint lives until the run completes and deletes it.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves the checkpoint for a claim
func (s *MemoryStore) Get(claimID string) (Record, bool) {
	if val, found := s.cache.Get(claimID); found {
		return val.(Record), true
	}
	return Record{}, false
}

// Put stores the checkpoint for a claim
func (s *MemoryStore) Put(claimID string, rec Record) error {
	s.cache.Set(claimID, rec, gocache.NoExpiration)
	return nil
}

// Delete removes the checkpoint for a claim
func (s *MemoryStore) Delete(claimID string) error {
	s.cache.Delete(claimID)
	return nil
}
