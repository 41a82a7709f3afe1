package chat

import "testing"

func TestUpstreamExcludesWelcome(t *testing.T) {
	s := &Session{Messages: []Message{
		Welcome(),
		{ID: "u1", Role: RoleUser, Content: "hi"},
		{ID: "a1", Role: RoleAssistant, Content: "hello"},
	}}

	upstream := s.Upstream()
	if len(upstream) != 2 {
		t.Fatalf("expected 2 upstream turns, got %d", len(upstream))
	}
	for _, m := range upstream {
		if m.ID == WelcomeID {
			t.Fatal("welcome turn leaked upstream")
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAssistant, RoleSystem} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	for _, role := range []string{"", "admin", "User"} {
		if ValidRole(role) {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}
