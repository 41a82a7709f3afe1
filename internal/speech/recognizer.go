package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Hooks receive recognition callbacks. Any hook may be nil.
type Hooks struct {
	// OnPartial fires for interim results (continuous mode only).
	OnPartial func(text string)
	// OnResult fires at most once per activation with the final transcript.
	OnResult func(text string)
	// OnError fires for non-benign failures. "aborted" and "no-speech"
	// reset the recognizer to idle silently.
	OnError func(err error)
}

// State mirrors the voice session: idle or listening, with the interim
// and final transcripts observed so far.
type State struct {
	Listening bool
	Partial   string
	Final     string
}

// Recognizer is one speech-capture strategy. Implementations auto-stop
// after emitting their final transcript; Stop is always safe to call and
// never raises.
type Recognizer interface {
	State() State
	Stop()
}

// InlineRecognizer is the single-shot strategy used by the inline widget:
// one complete audio clip in, exactly one final transcript out.
type InlineRecognizer struct {
	transcriber Transcriber
	hooks       Hooks

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewInlineRecognizer builds the single-shot strategy.
func NewInlineRecognizer(transcriber Transcriber, hooks Hooks) *InlineRecognizer {
	return &InlineRecognizer{transcriber: transcriber, hooks: hooks}
}

// Start recognizes one complete clip. It blocks until the transcript is
// produced or the activation fails, then returns to idle.
func (r *InlineRecognizer) Start(ctx context.Context, audio io.Reader, format string) {
	r.mu.Lock()
	if r.state.Listening {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = State{Listening: true}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.state.Listening = false
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	if r.transcriber == nil {
		r.fail(errors.New("speech recognition not supported"))
		return
	}

	result, err := r.transcriber.Transcribe(ctx, audio, format)
	if err != nil {
		r.fail(err)
		return
	}

	r.mu.Lock()
	r.state.Final = result.Text
	r.mu.Unlock()

	if r.hooks.OnResult != nil {
		r.hooks.OnResult(result.Text)
	}
}

// State implements Recognizer.
func (r *InlineRecognizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop aborts any in-flight activation. Idempotent; never raises.
func (r *InlineRecognizer) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *InlineRecognizer) fail(err error) {
	if benign(err) {
		slog.Debug("recognition ended without speech", "err", err)
		return
	}
	if r.hooks.OnError != nil {
		r.hooks.OnError(err)
	}
}

// ModalRecognizer is the continuous strategy used by the full-screen
// voice modal: interim results stream live, and the session closes after
// the first final segment.
type ModalRecognizer struct {
	transcriber Transcriber
	hooks       Hooks

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewModalRecognizer builds the continuous strategy.
func NewModalRecognizer(transcriber Transcriber, hooks Hooks) *ModalRecognizer {
	return &ModalRecognizer{transcriber: transcriber, hooks: hooks}
}

// Start consumes audio frames until the first final segment, an error, or
// cancellation. It blocks for the duration of the session.
func (r *ModalRecognizer) Start(ctx context.Context, frames <-chan []byte) {
	r.mu.Lock()
	if r.state.Listening {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = State{Listening: true}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.state.Listening = false
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	if r.transcriber == nil {
		r.fail(errors.New("speech recognition not supported"))
		return
	}

	events, err := r.transcriber.StreamTranscribe(ctx, frames)
	if err != nil {
		r.fail(err)
		return
	}

	for event := range events {
		if event.Err != nil {
			r.fail(event.Err)
			return
		}

		if !event.Final {
			r.mu.Lock()
			r.state.Partial = event.Text
			r.mu.Unlock()
			if r.hooks.OnPartial != nil {
				r.hooks.OnPartial(event.Text)
			}
			continue
		}

		r.mu.Lock()
		r.state.Final = event.Text
		r.mu.Unlock()
		if r.hooks.OnResult != nil {
			r.hooks.OnResult(event.Text)
		}
		return
	}
}

// State implements Recognizer.
func (r *ModalRecognizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stop cancels the session. Idempotent; never raises.
func (r *ModalRecognizer) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *ModalRecognizer) fail(err error) {
	if benign(err) {
		slog.Debug("recognition ended without speech", "err", err)
		return
	}
	if r.hooks.OnError != nil {
		r.hooks.OnError(err)
	}
}

func benign(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, ErrNoSpeech) || errors.Is(err, context.Canceled)
}
