package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyrx/studio-backend/internal/model/chat"
	"github.com/hyrx/studio-backend/internal/service/assistant"
	"github.com/hyrx/studio-backend/internal/service/completion"
	"github.com/hyrx/studio-backend/pkg/utils"
)

// Completer abstracts the completion service for testing.
type Completer interface {
	Complete(ctx context.Context, history []chat.Message, userMessage string) (string, error)
}

// AssistantService abstracts the conversation manager for testing.
type AssistantService interface {
	CreateSession(ctx context.Context, voiceEnabled bool) (*chat.Session, error)
	GetSession(ctx context.Context, sessionID string) (*chat.Session, error)
	EndSession(ctx context.Context, sessionID string) error
	Send(ctx context.Context, sessionID, text string) (chat.Message, error)
}

// Handler serves the chat completion proxy and the assistant session API.
type Handler struct {
	completer Completer
	assistant AssistantService
}

// New creates the chat handler. completer may be nil when the provider is
// not configured.
func New(completer Completer, assistantSvc AssistantService) *Handler {
	return &Handler{completer: completer, assistant: assistantSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)

	r.Route("/assistant", func(r chi.Router) {
		r.Post("/session", h.handleCreateSession)
		r.Get("/session/{sessionID}", h.handleGetSession)
		r.Delete("/session/{sessionID}", h.handleEndSession)
		r.Post("/session/{sessionID}/messages", h.handleSend)
	})
}

type chatRequest struct {
	Messages []chat.Message `json:"messages"`
}

// handleChat is the stateless proxy consumed by the widget: the full
// transcript in, one assistant reply out. Provider failures map onto the
// endpoint's status contract without leaking raw provider errors.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if msg, ok := validateTranscript(payload.Messages); !ok {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	if h.completer == nil {
		utils.RespondError(w, http.StatusInternalServerError, "AI service not configured")
		return
	}

	last := payload.Messages[len(payload.Messages)-1]
	history := payload.Messages[:len(payload.Messages)-1]

	reply, err := h.completer.Complete(r.Context(), history, last.Content)
	if err != nil {
		status := http.StatusInternalServerError
		switch completion.Classify(err) {
		case completion.ErrRateLimited:
			status = http.StatusTooManyRequests
		case completion.ErrUnavailable:
			status = http.StatusPaymentRequired
		}
		utils.RespondError(w, status, completion.UserMessage(err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": reply})
}

// validateTranscript enforces the endpoint's input contract and returns
// the first violation's message.
func validateTranscript(messages []chat.Message) (string, bool) {
	if len(messages) == 0 {
		return "At least one message required", false
	}
	if len(messages) > chat.MaxTranscript {
		return "Too many messages in history", false
	}
	for _, m := range messages {
		if !chat.ValidRole(m.Role) {
			return "Invalid role", false
		}
		if m.Content == "" {
			return "Message cannot be empty", false
		}
		if len([]rune(m.Content)) > chat.MaxContentLength {
			return "Message too long", false
		}
	}
	return "", true
}

type createSessionRequest struct {
	VoiceEnabled bool `json:"voiceEnabled"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	session, err := h.assistant.CreateSession(r.Context(), payload.VoiceEnabled)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.assistant.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, assistant.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.assistant.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sendRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload sendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.assistant.Send(r.Context(), chi.URLParam(r, "sessionID"), payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, "message content is required")
		case errors.Is(err, assistant.ErrReplyPending):
			utils.RespondError(w, http.StatusTooManyRequests, "a reply is already pending")
		case errors.Is(err, assistant.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}
