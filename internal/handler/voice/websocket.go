package voice

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hyrx/studio-backend/internal/speech"
	"github.com/hyrx/studio-backend/pkg/utils"
)

type streamOutbound struct {
	Type      string `json:"type"` // "listening", "partial", "final", "error"
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type streamControl struct {
	Type string `json:"type"` // "stop"
}

// handleStream runs a continuous (modal) recognition session over a
// websocket: binary audio frames in, interim and final transcripts out.
// The session auto-closes after the first final segment.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if !h.capability.Supported() {
		utils.RespondError(w, http.StatusServiceUnavailable, "Voice input not supported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[voice] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Live energy levels for the orb while this capture session owns the
	// microphone. SkipCapture keeps the orb on its idle pulse instead, to
	// avoid contending with speech capture on mobile.
	visualizer := speech.NewVisualizer(h.cfg.Sensitivity, !h.cfg.SkipCapture)
	h.registerVisualizer(sessionID, visualizer)
	defer h.releaseVisualizer(sessionID)

	frames := make(chan []byte, 16)

	recognizer := speech.NewModalRecognizer(h.capability.Engine(), speech.Hooks{
		OnPartial: func(text string) {
			h.send(conn, streamOutbound{Type: "partial", Text: text})
		},
		OnResult: func(text string) {
			h.send(conn, streamOutbound{Type: "final", Text: text})
		},
		OnError: func(err error) {
			log.Printf("[voice] recognition error for session=%s: %v", sessionID, err)
			h.send(conn, streamOutbound{Type: "error", Message: "Voice input not available. Please type your message."})
		},
	})

	h.send(conn, streamOutbound{Type: "listening"})

	recognized := make(chan struct{})
	go func() {
		defer close(recognized)
		recognizer.Start(ctx, frames)
	}()

	// Reader loop: audio frames feed recognition and the level meter;
	// a stop control or connection loss tears the session down.
	go func() {
		defer close(frames)
		defer recognizer.Stop()

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			switch msgType {
			case websocket.BinaryMessage:
				visualizer.Feed(data)
				select {
				case frames <- data:
				case <-ctx.Done():
					return
				}
			case websocket.TextMessage:
				var control streamControl
				if err := json.Unmarshal(data, &control); err != nil {
					continue
				}
				if control.Type == "stop" {
					return
				}
			}
		}
	}()

	<-recognized

	// Give the final frame time to flush before closing.
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (h *Handler) send(conn *websocket.Conn, msg streamOutbound) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[voice] failed to write websocket message: %v", err)
	}
}
