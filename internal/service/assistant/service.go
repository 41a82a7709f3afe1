package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hyrx/studio-backend/internal/model/chat"
	"github.com/hyrx/studio-backend/internal/service/completion"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrReplyPending = errors.New("a reply is already pending")
)

// fallbackReply is appended whenever the provider call fails, so a user
// turn is never left unanswered.
const fallbackReply = "I'm having trouble connecting right now. You can reach us directly at hyrx.aistudio@gmail.com or visit our Contact page."

// Completer produces an assistant reply for the given transcript and new
// user turn.
type Completer interface {
	Complete(ctx context.Context, history []chat.Message, userMessage string) (string, error)
}

// Speaker voices an assistant reply. Implementations must be safe to call
// with any text and must never block the conversation.
type Speaker interface {
	Speak(text string)
}

// Service manages conversation state for the assistant widget: one
// transcript per session, at most one in-flight completion per session.
type Service struct {
	store     Store
	completer Completer
	speaker   Speaker

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the conversation manager. completer may be nil when the
// provider is not configured; sends then take the fallback path. speaker
// may be nil when voice output is unavailable.
func NewService(store Store, completer Completer, speaker Speaker) *Service {
	return &Service{
		store:     store,
		completer: completer,
		speaker:   speaker,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CreateSession provisions a session seeded with the welcome turn.
func (s *Service) CreateSession(ctx context.Context, voiceEnabled bool) (*chat.Session, error) {
	session := &chat.Session{
		ID:           uuid.NewString(),
		Messages:     []chat.Message{chat.Welcome()},
		VoiceEnabled: voiceEnabled,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*chat.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// EndSession discards a session and its transcript.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
	return s.store.Delete(ctx, sessionID)
}

// Send appends a user turn and produces the assistant's reply.
//
// The send is dropped when text trims to empty or a reply is already
// pending for the session. On provider failure the session records a
// human-readable lastError and the fixed fallback turn is appended, so
// the transcript always ends with an assistant turn. The pending flag is
// cleared on every exit path.
func (s *Service) Send(ctx context.Context, sessionID, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		lock.Unlock()
		return chat.Message{}, err
	}
	if session.Awaiting {
		lock.Unlock()
		return chat.Message{}, ErrReplyPending
	}

	history := session.Upstream()

	userTurn := chat.Message{
		ID:      "user-" + uuid.NewString(),
		Role:    chat.RoleUser,
		Content: text,
	}
	session.Messages = append(session.Messages, userTurn)
	session.Awaiting = true
	session.LastError = ""

	// Persist the user turn and the pending flag before the provider
	// call, then release the lock: a send arriving while the completion
	// is in flight must observe Awaiting and be dropped, not queued
	// behind the mutex.
	if err := s.store.Update(ctx, session); err != nil {
		lock.Unlock()
		return chat.Message{}, err
	}
	lock.Unlock()

	content, cerr := s.complete(ctx, history, text)

	lock.Lock()
	defer lock.Unlock()

	session.Awaiting = false

	var reply chat.Message
	if cerr != nil {
		session.LastError = completion.UserMessage(cerr)
		slog.Warn("completion failed, appending fallback turn", "session", sessionID, "err", cerr)
		reply = chat.Message{
			ID:      "assistant-error-" + uuid.NewString(),
			Role:    chat.RoleAssistant,
			Content: fallbackReply,
		}
	} else {
		reply = chat.Message{
			ID:      "assistant-" + uuid.NewString(),
			Role:    chat.RoleAssistant,
			Content: content,
		}
	}
	session.Messages = append(session.Messages, reply)

	if err := s.store.Update(ctx, session); err != nil {
		slog.Error("failed to persist session after send", "session", sessionID, "err", err)
	}

	if cerr == nil && session.VoiceEnabled && s.speaker != nil {
		s.speaker.Speak(content)
	}

	return reply, nil
}

func (s *Service) complete(ctx context.Context, history []chat.Message, text string) (string, error) {
	if s.completer == nil {
		return "", completion.ErrUnavailable
	}
	return s.completer.Complete(ctx, history, text)
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
