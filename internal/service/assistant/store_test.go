package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/hyrx/studio-backend/internal/model/chat"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	session := &chat.Session{ID: "s1", Messages: []chat.Message{chat.Welcome()}}

	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Version != 1 || session.CreatedAt.IsZero() {
		t.Fatalf("expected initialized metadata, got %+v", session)
	}

	got, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].ID != chat.WelcomeID {
		t.Fatalf("unexpected stored transcript %+v", got.Messages)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	session := &chat.Session{ID: "s1", Messages: []chat.Message{chat.Welcome()}}
	_ = store.Create(context.Background(), session)

	got, _ := store.Get(context.Background(), "s1")
	got.Messages[0].Content = "mutated"
	got.Messages = append(got.Messages, chat.Message{ID: "x"})

	fresh, _ := store.Get(context.Background(), "s1")
	if len(fresh.Messages) != 1 || fresh.Messages[0].Content == "mutated" {
		t.Fatal("mutation of a returned session leaked into the store")
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Update(context.Background(), &chat.Session{ID: "nope"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on update, got %v", err)
	}
}

func TestMemoryStoreVersionConflict(t *testing.T) {
	store := NewMemoryStore()
	session := &chat.Session{ID: "s1"}
	_ = store.Create(context.Background(), session)

	a, _ := store.Get(context.Background(), "s1")
	b, _ := store.Get(context.Background(), "s1")

	if err := store.Update(context.Background(), a); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := store.Update(context.Background(), b); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Create(context.Background(), &chat.Session{ID: "s1"})

	if err := store.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	// Deleting an unknown session is a no-op.
	if err := store.Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}
