package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	mu         sync.Mutex
	voices     []Voice
	voicesErr  error
	synthErr   error
	requests   []string
	usedVoices []string
	delay      time.Duration
}

func (f *fakeBackend) Voices(context.Context) ([]Voice, error) {
	return f.voices, f.voicesErr
}

func (f *fakeBackend) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, text)
	f.usedVoices = append(f.usedVoices, voice)
	f.mu.Unlock()

	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return []byte("audio:" + text), nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSpeakDeliversAudio(t *testing.T) {
	backend := &fakeBackend{voices: []Voice{{Name: "Samantha", Lang: "en-US"}}}

	var mu sync.Mutex
	var got [][]byte
	s := NewSynthesizer(backend, []string{"Samantha"}, true, func(audio []byte) {
		mu.Lock()
		got = append(got, audio)
		mu.Unlock()
	})

	s.Speak("hello there")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	if string(got[0]) != "audio:hello there" {
		t.Fatalf("unexpected audio %q", got[0])
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.usedVoices[0] != "Samantha" {
		t.Fatalf("expected preferred voice, got %q", backend.usedVoices[0])
	}
}

func TestSpeakNoOps(t *testing.T) {
	backend := &fakeBackend{}

	disabled := NewSynthesizer(backend, nil, false, nil)
	disabled.Speak("text")

	enabled := NewSynthesizer(backend, nil, true, nil)
	enabled.Speak("   ")

	nilBackend := NewSynthesizer(nil, nil, true, nil)
	nilBackend.Speak("text")

	time.Sleep(20 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.requests) != 0 {
		t.Fatalf("expected no synthesis calls, got %v", backend.requests)
	}
}

func TestSpeakCancelsInFlight(t *testing.T) {
	backend := &fakeBackend{delay: 200 * time.Millisecond}

	var mu sync.Mutex
	var got []string
	s := NewSynthesizer(backend, nil, true, func(audio []byte) {
		mu.Lock()
		got = append(got, string(audio))
		mu.Unlock()
	})

	s.Speak("first")
	time.Sleep(20 * time.Millisecond)
	s.Speak("second")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1
	})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "audio:second" {
		t.Fatalf("expected only the superseding utterance, got %v", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	backend := &fakeBackend{delay: time.Second}
	delivered := make(chan struct{}, 1)
	s := NewSynthesizer(backend, nil, true, func([]byte) { delivered <- struct{}{} })

	s.Stop() // never started

	s.Speak("text")
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case <-delivered:
		t.Fatal("expected no delivery after stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSpeakSurvivesBackendError(t *testing.T) {
	backend := &fakeBackend{synthErr: errors.New("engine down")}
	s := NewSynthesizer(backend, nil, true, nil)

	s.Speak("text")
	waitFor(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.requests) == 1
	})
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Hans", Lang: "de-DE"},
		{Name: "Google US English", Lang: "en-US"},
		{Name: "Samantha", Lang: "en-US"},
		{Name: "Daniel", Lang: "en-GB"},
	}

	if got := SelectVoice(voices, []string{"Google", "Samantha", "Daniel"}); got != "Google US English" {
		t.Fatalf("expected first preference match, got %q", got)
	}
	if got := SelectVoice(voices, []string{"Karen", "Daniel"}); got != "Daniel" {
		t.Fatalf("expected second preference match, got %q", got)
	}
	if got := SelectVoice(voices, []string{"Karen"}); got != "Google US English" {
		t.Fatalf("expected first English voice fallback, got %q", got)
	}
	if got := SelectVoice([]Voice{{Name: "Hans", Lang: "de-DE"}}, []string{"Karen"}); got != "" {
		t.Fatalf("expected empty for platform default, got %q", got)
	}
	if got := SelectVoice(nil, nil); got != "" {
		t.Fatalf("expected empty for no voices, got %q", got)
	}
}
