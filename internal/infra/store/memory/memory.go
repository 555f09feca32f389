// Package memory provides an in-process snapshot store used by tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"relieftrack/pkg/domain"
)

// Store keeps the full request snapshot in memory behind a mutex. Version
// tokens are opaque UUIDs regenerated on every successful save.
type Store struct {
	mu      sync.RWMutex
	records []domain.RequestRecord
	version domain.VersionToken
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Seed replaces the snapshot unconditionally, used by tests to set up state.
func (s *Store) Seed(records []domain.RequestRecord) domain.VersionToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = domain.CloneRecords(records)
	s.version = domain.VersionToken(uuid.NewString())
	return s.version
}

// LoadAll returns a deep copy of the snapshot with its version token.
func (s *Store) LoadAll(_ context.Context) ([]domain.RequestRecord, domain.VersionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneRecords(s.records), s.version, nil
}

// Save replaces the snapshot when expected still matches the stored version.
func (s *Store) Save(_ context.Context, records []domain.RequestRecord, expected domain.VersionToken) (domain.VersionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expected != s.version {
		return domain.NoVersion, domain.VersionConflictError{Expected: expected, Current: s.version}
	}
	s.records = domain.CloneRecords(records)
	s.version = domain.VersionToken(uuid.NewString())
	return s.version, nil
}
