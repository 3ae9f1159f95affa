// Package memory implements the ephemeral persistence tier: process-scoped
// keyed stores for guest sessions. Nothing here survives a restart - that is
// the contract of the ephemeral durability tier, not a limitation.
package memory

import (
	"context"
	"sync"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/badge"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// EPHEMERAL IDENTITY STORE
// ══════════════════════════════════════════════════════════════════════════════

// IdentityStore implements identity.Store on a mutex-guarded map.
type IdentityStore struct {
	mu      sync.RWMutex
	records map[identity.OwnerID]*identity.Record
}

// NewIdentityStore creates an empty ephemeral identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{records: make(map[identity.OwnerID]*identity.Record)}
}

// Load returns the owner's record, synthesizing the default record on a miss
// (get-or-create, mirroring the durable tier's at-most-once initialization).
func (s *IdentityStore) Load(_ context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[ownerID]; ok {
		return record.Clone(), nil
	}

	record, err := identity.NewRecord(ownerID, identity.TierEphemeral)
	if err != nil {
		return nil, err
	}
	// Guest sessions carry the guest_mode badge from the first moment.
	record.GrantBadge(badge.GuestMode)
	s.records[ownerID] = record

	return record.Clone(), nil
}

// Save overwrites the owner's record in full (last-writer-wins).
func (s *IdentityStore) Save(_ context.Context, record *identity.Record) error {
	if !record.OwnerID.IsValid() {
		return identity.ErrInvalidOwnerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.OwnerID] = record.Clone()
	return nil
}

// List returns all session records, used for ranking cache rebuilds.
func (s *IdentityStore) List(_ context.Context) ([]*identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*identity.Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record.Clone())
	}
	return records, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EPHEMERAL PROGRESS STORE
// ══════════════════════════════════════════════════════════════════════════════

// ProgressStore implements progress.Store on a mutex-guarded map.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[identity.OwnerID]*progress.Weekly
}

// NewProgressStore creates an empty ephemeral progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[identity.OwnerID]*progress.Weekly)}
}

// Load returns the owner's weekly record or progress.ErrProgressNotFound.
func (s *ProgressStore) Load(_ context.Context, ownerID identity.OwnerID) (*progress.Weekly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weekly, ok := s.records[ownerID]
	if !ok {
		return nil, progress.ErrProgressNotFound
	}
	return weekly.Clone(), nil
}

// Save overwrites the owner's weekly record in full.
func (s *ProgressStore) Save(_ context.Context, weekly *progress.Weekly) error {
	if !weekly.OwnerID.IsValid() {
		return progress.ErrInvalidOwnerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[weekly.OwnerID] = weekly.Clone()
	return nil
}
