package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hyrx/studio-backend/internal/config"
)

// Benign recognition outcomes: the session resets to idle without
// surfacing an error to the visitor.
var (
	ErrAborted  = errors.New("recognition aborted")
	ErrNoSpeech = errors.New("no speech detected")
)

// Transcript is one recognition result.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Event is one message from a streaming recognition session.
type Event struct {
	Text  string
	Final bool
	Err   error
}

// Voice describes one synthesis voice offered by the engine.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// Transcriber converts audio to text, either in one shot or as a stream
// of interim results.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, format string) (Transcript, error)
	StreamTranscribe(ctx context.Context, frames <-chan []byte) (<-chan Event, error)
}

// SynthBackend converts text to audio.
type SynthBackend interface {
	Voices(ctx context.Context) ([]Voice, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Engine is the HTTP/WebSocket client for the external speech service.
type Engine struct {
	baseURL    string
	token      string
	language   string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewEngine builds an engine client from configuration.
func NewEngine(cfg config.SpeechConfig) *Engine {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Engine{
		baseURL:    strings.TrimRight(cfg.EngineURL, "/"),
		token:      cfg.AccessToken,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: timeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: timeout},
	}
}

type transcribeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
	Code       string  `json:"code,omitempty"`
}

// Transcribe runs single-shot recognition over a complete audio clip.
func (e *Engine) Transcribe(ctx context.Context, audio io.Reader, format string) (Transcript, error) {
	endpoint := fmt.Sprintf("%s/v1/transcribe?format=%s&language=%s",
		e.baseURL, url.QueryEscape(format), url.QueryEscape(e.language))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, audio)
	if err != nil {
		return Transcript{}, fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("speech engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The engine reports failures as JSON, but an intermediary can
		// answer with anything; surface the status when the body is not
		// a recognizable error payload.
		var failure transcribeResponse
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && (failure.Error != "" || failure.Code != "") {
			return Transcript{}, engineError(failure.Code, failure.Error, resp.StatusCode)
		}
		return Transcript{}, fmt.Errorf("speech engine status %d", resp.StatusCode)
	}

	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Transcript{}, fmt.Errorf("malformed transcribe response: %w", err)
	}
	if result.Error != "" {
		return Transcript{}, engineError(result.Code, result.Error, resp.StatusCode)
	}

	return Transcript{Text: result.Text, Confidence: result.Confidence}, nil
}

type streamMessage struct {
	Type    string `json:"type"` // "partial", "final", "error"
	Text    string `json:"text,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// StreamTranscribe opens a streaming recognition session. Audio frames
// from the channel are forwarded to the engine; interim and final results
// come back on the returned channel, which is closed when the session
// ends. Closing the frames channel finishes the session.
func (e *Engine) StreamTranscribe(ctx context.Context, frames <-chan []byte) (<-chan Event, error) {
	wsURL := strings.Replace(e.baseURL, "http", "ws", 1) +
		"/v1/transcribe/stream?language=" + url.QueryEscape(e.language)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+e.token)

	conn, _, err := e.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("speech engine dial: %w", err)
	}

	events := make(chan Event, 8)

	// Writer: pump audio frames until the source closes or the context
	// ends, then signal end-of-audio.
	go func() {
		defer func() {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"end"}`))
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-frames:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					return
				}
			}
		}
	}()

	// Reader: surface engine messages as events.
	go func() {
		defer close(events)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					events <- Event{Err: ErrAborted}
				} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					events <- Event{Err: fmt.Errorf("speech engine stream: %w", err)}
				}
				return
			}

			var msg streamMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				events <- Event{Err: fmt.Errorf("malformed stream message: %w", err)}
				return
			}

			switch msg.Type {
			case "partial":
				events <- Event{Text: msg.Text}
			case "final":
				events <- Event{Text: msg.Text, Final: true}
				return
			case "error":
				events <- Event{Err: engineError(msg.Code, msg.Message, 0)}
				return
			}
		}
	}()

	return events, nil
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// Voices lists the synthesis voices the engine offers.
func (e *Engine) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("build voices request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech engine status %d", resp.StatusCode)
	}

	var result voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed voices response: %w", err)
	}
	return result.Voices, nil
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesize renders text to audio with the given voice. An empty voice
// uses the engine default.
func (e *Engine) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	payload, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice, Language: e.language})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build synthesize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech engine status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func engineError(code, message string, status int) error {
	switch code {
	case "no-speech":
		return ErrNoSpeech
	case "aborted":
		return ErrAborted
	}
	if message != "" {
		return fmt.Errorf("speech engine: %s", message)
	}
	return fmt.Errorf("speech engine status %d", status)
}

var (
	_ Transcriber  = (*Engine)(nil)
	_ SynthBackend = (*Engine)(nil)
)
