// Package memory provides in-memory store implementations, used in
// tests and as fallbacks when persistent storage is disabled.
package memory

import (
	"context"
	"sync"

	"github.com/meridian-labs/kickoff-cli/internal/core/domain"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu      sync.RWMutex
	records map[domain.PlatformID]domain.TokenRecord
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		records: make(map[domain.PlatformID]domain.TokenRecord),
	}
}

// Save stores a record, replacing any existing one for the platform.
func (s *TokenStore) Save(_ context.Context, record domain.TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Platform] = record
	return nil
}

// Get retrieves the record for a platform.
func (s *TokenStore) Get(_ context.Context, platform domain.PlatformID) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[platform]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// Delete removes the record for a platform.
func (s *TokenStore) Delete(_ context.Context, platform domain.PlatformID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, platform)
	return nil
}
