package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hyrx/studio-backend/internal/model/contact"
	contactservice "github.com/hyrx/studio-backend/internal/service/contact"
)

type fakePipeline struct {
	result   contactservice.Result
	received []contact.Submission
	remoteIP string
}

func (f *fakePipeline) Submit(_ context.Context, sub contact.Submission, remoteIP string) contactservice.Result {
	f.received = append(f.received, sub)
	f.remoteIP = remoteIP
	return f.result
}

func setupRouter(pipeline *fakePipeline) *chi.Mux {
	r := chi.NewRouter()
	New(pipeline).RegisterRoutes(r)
	return r
}

func submit(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:51234"
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSubmitSuccess(t *testing.T) {
	pipeline := &fakePipeline{result: contactservice.Result{Success: true}}
	r := setupRouter(pipeline)

	resp := submit(r, `{"name":"Jo","email":"jo@studio.dev","message":"Hi","recaptchaToken":"tok"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result contactservice.Result
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	if !result.Success || result.Error != "" {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(pipeline.received) != 1 {
		t.Fatalf("expected one pipeline call, got %d", len(pipeline.received))
	}
	if pipeline.received[0].Name != "Jo" || pipeline.received[0].RecaptchaToken != "tok" {
		t.Fatalf("unexpected submission %+v", pipeline.received[0])
	}
	if pipeline.remoteIP != "203.0.113.9" {
		t.Fatalf("expected client ip without port, got %q", pipeline.remoteIP)
	}
}

func TestSubmitRejectionStaysHTTP200(t *testing.T) {
	pipeline := &fakePipeline{result: contactservice.Result{
		Success:       false,
		Error:         "Verification failed. Please try again.",
		FallbackEmail: "hyrx.aistudio@gmail.com",
	}}
	r := setupRouter(pipeline)

	resp := submit(r, `{"name":"Jo","email":"jo@studio.dev","message":"Hi"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("rejections must still be 200, got %d", resp.Code)
	}
	var result contactservice.Result
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Success {
		t.Fatal("expected in-band failure")
	}
	if result.FallbackEmail != "hyrx.aistudio@gmail.com" {
		t.Fatalf("expected fallback email, got %q", result.FallbackEmail)
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	pipeline := &fakePipeline{result: contactservice.Result{Success: true}}
	r := setupRouter(pipeline)

	resp := submit(r, `{broken`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 even for malformed body, got %d", resp.Code)
	}
	var result contactservice.Result
	_ = json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Success || !strings.Contains(result.Error, "Invalid request body") {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(pipeline.received) != 0 {
		t.Fatal("pipeline must not run for malformed bodies")
	}
}
