package store

import (
	"context"
	"testing"
	"time"

	"github.com/hyrx/studio-backend/internal/model/contact"
)

func TestMemoryStoreInsert(t *testing.T) {
	s := NewMemoryStore()

	rec := contact.Record{
		ID:        "rec-1",
		Name:      "Jo",
		Email:     "jo@studio.dev",
		Status:    contact.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.InsertSubmission(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	records := s.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "rec-1" || records[0].Status != contact.StatusPending {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestMemoryStoreRecordsIsCopy(t *testing.T) {
	s := NewMemoryStore()
	_ = s.InsertSubmission(context.Background(), contact.Record{ID: "rec-1"})

	records := s.Records()
	records[0].ID = "mutated"

	if s.Records()[0].ID != "rec-1" {
		t.Fatal("mutation of returned slice leaked into the store")
	}
}
