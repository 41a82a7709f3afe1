package speech

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestLevelMeterSilence(t *testing.T) {
	m := LevelMeter{Sensitivity: 1.5}

	if got := m.Level(nil); got != 0 {
		t.Fatalf("expected 0 for empty frame, got %f", got)
	}
	if got := m.Level(make([]byte, 128)); got != 0 {
		t.Fatalf("expected 0 for silent frame, got %f", got)
	}
}

func TestLevelMeterRMS(t *testing.T) {
	m := LevelMeter{Sensitivity: 1.0}

	// Uniform half-scale magnitudes: rms = 64/255, level = rms * 3.
	frame := []byte{64, 64, 64, 64}
	want := (64.0 / 255.0) * 3.0
	if got := m.Level(frame); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestLevelMeterClamps(t *testing.T) {
	m := LevelMeter{Sensitivity: 1.5}

	if got := m.Level([]byte{255, 255, 255, 255}); got != 1 {
		t.Fatalf("expected clamp to 1, got %f", got)
	}
}

func TestAnimatorFrame(t *testing.T) {
	a := NewAnimator()

	frame := a.Frame(0.05, 0.6)
	if !frame.VoiceDetected {
		t.Fatal("expected voice detected above threshold")
	}
	if frame.Rotation <= 0 {
		t.Fatal("expected rotation to advance at speaking level")
	}
	if frame.Hover != 1.0 {
		t.Fatalf("expected hover saturated at level 0.6, got %f", frame.Hover)
	}
	if frame.HoverIntensity > a.MaxHover {
		t.Fatalf("hover intensity %f exceeds bound %f", frame.HoverIntensity, a.MaxHover)
	}
}

func TestAnimatorHoldsRotationWhenQuiet(t *testing.T) {
	a := NewAnimator()

	frame := a.Frame(0.05, 0.01)
	if frame.VoiceDetected {
		t.Fatal("expected no voice detection near silence")
	}
	if frame.Rotation != 0 {
		t.Fatalf("expected rotation held at silence, got %f", frame.Rotation)
	}
}

func TestAnimatorIdlePulse(t *testing.T) {
	a := NewAnimator()

	var prev OrbFrame
	rising := false
	for i := 0; i < 40; i++ {
		frame := a.IdleFrame(0.05)
		if frame.Level != 0 || frame.VoiceDetected {
			t.Fatalf("idle frame must not report voice, got %+v", frame)
		}
		if frame.Hover < 0.05 || frame.Hover > 0.55 {
			t.Fatalf("idle pulse out of range: %f", frame.Hover)
		}
		if i > 0 && frame.Hover != prev.Hover {
			rising = true
		}
		prev = frame
	}
	if !rising {
		t.Fatal("expected the idle pulse to oscillate")
	}
	if prev.Rotation <= 0 {
		t.Fatal("expected slow rotation while idle")
	}
}

func TestVisualizerRunEmitsFrames(t *testing.T) {
	v := NewVisualizer(1.5, true)
	defer v.Close()

	v.Feed([]byte{200, 200, 200, 200})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := make(chan OrbFrame, 4)
	go v.Run(ctx, out, time.Millisecond)

	frame, ok := <-out
	if !ok {
		t.Fatal("expected at least one frame")
	}
	if frame.Level == 0 {
		t.Fatalf("expected non-zero level from fed frame, got %+v", frame)
	}
}

func TestVisualizerIdleWhenNotLive(t *testing.T) {
	v := NewVisualizer(1.5, false)
	defer v.Close()

	// Fed frames are ignored without a live source.
	v.Feed([]byte{255, 255, 255, 255})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out := make(chan OrbFrame, 4)
	go v.Run(ctx, out, time.Millisecond)

	frame := <-out
	if frame.Level != 0 || frame.VoiceDetected {
		t.Fatalf("expected idle frame, got %+v", frame)
	}
}

func TestVisualizerCloseStopsRun(t *testing.T) {
	v := NewVisualizer(1.5, true)

	out := make(chan OrbFrame, 4)
	done := make(chan struct{})
	go func() {
		v.Run(context.Background(), out, time.Millisecond)
		close(done)
	}()

	// Let the loop start, then close.
	time.Sleep(10 * time.Millisecond)
	v.Close()
	v.Close() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Close")
	}

	// Feeding after Close is a no-op.
	v.Feed([]byte{1, 2, 3})
}

func TestVisualizerRunAfterClose(t *testing.T) {
	v := NewVisualizer(1.5, true)
	v.Close()

	out := make(chan OrbFrame)
	v.Run(context.Background(), out, time.Millisecond)

	if _, ok := <-out; ok {
		t.Fatal("expected closed out channel without frames")
	}
}

func TestVisualizerRejectsConcurrentRun(t *testing.T) {
	v := NewVisualizer(1.5, true)
	defer v.Close()

	out1 := make(chan OrbFrame, 4)
	go v.Run(context.Background(), out1, time.Millisecond)
	<-out1 // first loop is emitting

	out2 := make(chan OrbFrame, 4)
	v.Run(context.Background(), out2, time.Millisecond)

	if _, ok := <-out2; ok {
		t.Fatal("expected second consumer refused while a loop is active")
	}
}
