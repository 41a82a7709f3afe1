package voice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hyrx/studio-backend/internal/speech"
)

// fakeEngineWS acts as the engine's streaming recognition endpoint:
// it echoes a partial for the first frame and a final for the second.
func fakeEngineWS(t *testing.T) http.Handler {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transcribe/stream" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frames := 0
		for {
			msgType, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			frames++
			switch frames {
			case 1:
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"partial","text":"build me"}`))
			case 2:
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"final","text":"build me a chatbot"}`))
				return
			}
		}
	})
}

func TestStreamEndpoint(t *testing.T) {
	engineSrv := httptest.NewServer(fakeEngineWS(t))
	defer engineSrv.Close()

	cfg := speechConfig(engineSrv.URL)
	r := chi.NewRouter()
	New(speech.Detect(cfg), cfg).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/voice/ws/session-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	readMessage := func() streamOutbound {
		t.Helper()
		var msg streamOutbound
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal %q: %v", data, err)
		}
		return msg
	}

	if msg := readMessage(); msg.Type != "listening" {
		t.Fatalf("expected listening first, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("frame-1")); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if msg := readMessage(); msg.Type != "partial" || msg.Text != "build me" {
		t.Fatalf("expected partial, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("frame-2")); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if msg := readMessage(); msg.Type != "final" || msg.Text != "build me a chatbot" {
		t.Fatalf("expected final, got %+v", msg)
	}

	// The session auto-closes after the final segment.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection closed after final")
	}
}
