// Package testhelpers provides shared test utilities for the claim ranker.
package testhelpers

import (
	"context"
	"sync"

	"github.com/jonesrussell/claim-ranker/internal/domain"
)

// MemClaimStore is a mutex-guarded in-memory claim store for tests.
type MemClaimStore struct {
	mu       sync.Mutex
	claims   []domain.Claim
	attempts int
	err      error
}

// NewMemClaimStore creates an empty in-memory store.
func NewMemClaimStore() *MemClaimStore {
	return &MemClaimStore{}
}

// SetError makes subsequent Insert calls fail with err.
func (s *MemClaimStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Insert records the claim by value.
func (s *MemClaimStore) Insert(_ context.Context, claim *domain.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.err != nil {
		return s.err
	}
	s.claims = append(s.claims, *claim)
	return nil
}

// Stored returns a copy of the claims inserted so far.
func (s *MemClaimStore) Stored() []domain.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Claim, len(s.claims))
	copy(out, s.claims)
	return out
}

// Attempts reports how many Insert calls were made, failed ones included.
func (s *MemClaimStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
