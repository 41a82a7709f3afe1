package chat

import "time"

// Session captures a transient anonymous conversation with the widget.
// The transcript is append-only for the lifetime of the session; nothing
// outlives it.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int64     `json:"version"`
	Messages     []Message `json:"messages"`
	Awaiting     bool      `json:"awaiting"`
	LastError    string    `json:"lastError,omitempty"`
	VoiceEnabled bool      `json:"voiceEnabled"`
}

// Upstream returns the turns that may be forwarded to the completion
// provider: the synthetic welcome turn is excluded.
func (s *Session) Upstream() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.ID == WelcomeID {
			continue
		}
		out = append(out, m)
	}
	return out
}
