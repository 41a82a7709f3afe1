// Package store persists accepted contact submissions.
package store

import (
	"context"
	"sync"

	"github.com/hyrx/studio-backend/internal/model/contact"
)

// ContactStore writes one row per accepted submission.
type ContactStore interface {
	InsertSubmission(ctx context.Context, rec contact.Record) error
	Close() error
}

// MemoryStore keeps submissions in process memory. Used by tests and when
// the hosted store is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []contact.Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertSubmission appends the record.
func (s *MemoryStore) InsertSubmission(_ context.Context, rec contact.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything inserted so far.
func (s *MemoryStore) Records() []contact.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]contact.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Close implements ContactStore.
func (s *MemoryStore) Close() error {
	return nil
}
