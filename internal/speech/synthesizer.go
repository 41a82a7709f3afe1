package speech

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Synthesizer voices assistant replies. At most one utterance is speaking
// at a time: a new Speak cancels whatever is in flight.
type Synthesizer struct {
	backend SynthBackend
	prefs   []string
	enabled bool
	sink    func(audio []byte)

	mu        sync.Mutex
	cancel    context.CancelFunc
	voice     string
	voiceOnce sync.Once
}

// NewSynthesizer builds the output adapter. backend may be nil (speech
// unsupported) and sink may be nil (audio discarded); both degrade to
// no-ops. prefs is the voice preference order, matched against voice
// names before falling back to any English-tagged voice.
func NewSynthesizer(backend SynthBackend, prefs []string, enabled bool, sink func(audio []byte)) *Synthesizer {
	return &Synthesizer{
		backend: backend,
		prefs:   prefs,
		enabled: enabled,
		sink:    sink,
	}
}

// Speak renders text asynchronously, cancelling any in-flight utterance
// first. No-op when text is empty, output is disabled, or no backend is
// available.
func (s *Synthesizer) Speak(text string) {
	if strings.TrimSpace(text) == "" || !s.enabled || s.backend == nil {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()

		voice := s.selectVoice(ctx)
		audio, err := s.backend.Synthesize(ctx, text, voice)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("speech synthesis failed", "err", err)
			}
			return
		}
		if ctx.Err() != nil {
			// Superseded by a newer utterance.
			return
		}
		if s.sink != nil {
			s.sink(audio)
		}
	}()
}

// Stop cancels the current utterance immediately. Idempotent.
func (s *Synthesizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// selectVoice resolves the preferred voice once and caches it. Failure to
// list voices falls back to the engine default.
func (s *Synthesizer) selectVoice(ctx context.Context) string {
	s.voiceOnce.Do(func() {
		voices, err := s.backend.Voices(ctx)
		if err != nil {
			slog.Debug("voice list unavailable, using engine default", "err", err)
			return
		}
		s.mu.Lock()
		s.voice = SelectVoice(voices, s.prefs)
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// SelectVoice picks a natural-sounding voice: first a name matching the
// preference order, then any English-tagged voice, else empty for the
// platform default.
func SelectVoice(voices []Voice, prefs []string) string {
	for _, pref := range prefs {
		for _, v := range voices {
			if strings.Contains(v.Name, pref) {
				return v.Name
			}
		}
	}
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			return v.Name
		}
	}
	return ""
}
