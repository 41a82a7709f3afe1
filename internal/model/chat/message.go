package chat

// Roles accepted in a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Limits enforced on inbound transcripts before anything reaches the
// completion provider.
const (
	MaxContentLength = 4000
	MaxTranscript    = 50
)

// WelcomeID marks the synthetic greeting turn. It is rendered to the
// visitor but never forwarded upstream.
const WelcomeID = "welcome"

// Message is a single turn in the assistant transcript.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Welcome returns the fixed greeting that seeds every new session.
func Welcome() Message {
	return Message{
		ID:      WelcomeID,
		Role:    RoleAssistant,
		Content: "Hi! I'm the HYRX Assistant. I can help you understand our AI services, find the right solution for your needs, or get started with a quote. What can I help you with today?",
	}
}

// ValidRole reports whether role is one of the accepted turn roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}
