package completion

import (
	"fmt"
	"testing"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/model/chat"
)

func TestBuildHistoryTrailingWindow(t *testing.T) {
	s := &Service{cfg: config.AIConfig{HistorySize: 4}}

	var transcript []chat.Message
	for i := 0; i < 10; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		transcript = append(transcript, chat.Message{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}

	history := s.buildHistory(transcript)
	if len(history) != 4 {
		t.Fatalf("expected trailing 4 turns, got %d", len(history))
	}
	if history[0].Content != "turn-6" || history[3].Content != "turn-9" {
		t.Fatalf("expected most recent turns, got %q..%q", history[0].Content, history[3].Content)
	}
}

func TestBuildHistoryDefaultsLimit(t *testing.T) {
	s := &Service{cfg: config.AIConfig{}}

	var transcript []chat.Message
	for i := 0; i < 15; i++ {
		transcript = append(transcript, chat.Message{Role: chat.RoleUser, Content: "x"})
	}

	if got := len(s.buildHistory(transcript)); got != 10 {
		t.Fatalf("expected default window of 10, got %d", got)
	}
}

func TestBuildHistoryEmpty(t *testing.T) {
	s := &Service{cfg: config.AIConfig{HistorySize: 4}}

	if got := s.buildHistory(nil); got != nil {
		t.Fatalf("expected nil history, got %v", got)
	}
}

func TestBuildHistorySkipsUnknownRoles(t *testing.T) {
	s := &Service{cfg: config.AIConfig{HistorySize: 10}}

	history := s.buildHistory([]chat.Message{
		{Role: chat.RoleUser, Content: "a"},
		{Role: "weird", Content: "b"},
		{Role: chat.RoleAssistant, Content: "c"},
	})

	if len(history) != 2 {
		t.Fatalf("expected unknown roles dropped, got %d turns", len(history))
	}
}
