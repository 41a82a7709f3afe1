package voice

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/speech"
	"github.com/hyrx/studio-backend/pkg/utils"
)

// Handler serves the voice capture and visualization endpoints.
type Handler struct {
	capability speech.Capability
	cfg        config.SpeechConfig
	upgrader   websocket.Upgrader

	mu          sync.Mutex
	visualizers map[string]*speech.Visualizer
}

// New creates the voice handler around a resolved speech capability.
func New(capability speech.Capability, cfg config.SpeechConfig) *Handler {
	return &Handler{
		capability: capability,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		visualizers: make(map[string]*speech.Visualizer),
	}
}

// RegisterRoutes mounts the voice routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/voice", func(r chi.Router) {
		r.Post("/transcribe", h.handleTranscribe)
		r.Post("/synthesize", h.handleSynthesize)
		r.Get("/ws/{sessionID}", h.handleStream)
		r.Get("/levels/{sessionID}", h.handleLevels)
		r.Get("/health", h.handleHealth)
	})
}

// handleTranscribe runs single-shot recognition over one uploaded clip.
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.capability.Supported() {
		utils.RespondError(w, http.StatusServiceUnavailable, "Voice input not supported")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	type outcome struct {
		text string
		err  error
	}
	var result outcome
	done := make(chan struct{})

	recognizer := speech.NewInlineRecognizer(h.capability.Engine(), speech.Hooks{
		OnResult: func(text string) { result.text = text },
		OnError:  func(err error) { result.err = err },
	})

	go func() {
		defer close(done)
		recognizer.Start(r.Context(), file, inferAudioFormat(header.Filename))
	}()
	<-done

	if result.err != nil {
		log.Printf("[voice] transcription failed: %v", result.err)
		utils.RespondError(w, http.StatusBadGateway, "Voice input not available. Please type your message.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": result.text})
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// handleSynthesize renders text to audio through the engine.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if !h.capability.Supported() {
		utils.RespondError(w, http.StatusServiceUnavailable, "Voice output not supported")
		return
	}

	var payload synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.capability.Engine().Synthesize(r.Context(), payload.Text, payload.Voice)
	if err != nil {
		log.Printf("[voice] synthesis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "Voice output not available")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// handleLevels streams orb animation frames for a session over SSE. A
// session without live capture gets the idle pulse.
func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	visualizer, owned := h.visualizer(sessionID)
	if owned {
		defer visualizer.Close()
	}

	utils.SetupSSEHeaders(w)

	frames := make(chan speech.OrbFrame, 4)
	go visualizer.Run(r.Context(), frames, 50*time.Millisecond)

	for frame := range frames {
		utils.SendSSEChunk(w, flusher, frame)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"supported": h.capability.Supported(),
	}
	if !h.capability.Supported() {
		status["reason"] = h.capability.Reason()
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

// visualizer returns the live visualizer registered for the session, or
// an idle one owned by the caller when no capture is active.
func (h *Handler) visualizer(sessionID string) (*speech.Visualizer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if v, ok := h.visualizers[sessionID]; ok {
		return v, false
	}
	return speech.NewVisualizer(h.cfg.Sensitivity, false), true
}

func (h *Handler) registerVisualizer(sessionID string, v *speech.Visualizer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.visualizers[sessionID]; ok {
		old.Close()
	}
	h.visualizers[sessionID] = v
}

func (h *Handler) releaseVisualizer(sessionID string) {
	h.mu.Lock()
	v, ok := h.visualizers[sessionID]
	if ok {
		delete(h.visualizers, sessionID)
	}
	h.mu.Unlock()

	if ok {
		v.Close()
	}
}

func inferAudioFormat(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "mp3", "wav", "webm", "ogg", "pcm":
		return ext
	default:
		return "wav"
	}
}
