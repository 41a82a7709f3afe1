package speech

import (
	"context"
	"math"
	"sync"
	"time"
)

// LevelMeter derives a scalar energy level in [0,1] from a frame of
// magnitude samples.
type LevelMeter struct {
	// Sensitivity scales the raw RMS before clamping.
	Sensitivity float64
}

// Level computes the root-mean-square of the normalized magnitudes,
// scaled by sensitivity and clamped to [0,1]. An empty frame is silence.
func (m LevelMeter) Level(magnitudes []byte) float64 {
	if len(magnitudes) == 0 {
		return 0
	}

	var sum float64
	for _, b := range magnitudes {
		v := float64(b) / 255.0
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(magnitudes)))

	level := rms * m.Sensitivity * 3.0
	if level > 1 {
		level = 1
	}
	return level
}

// OrbFrame carries the per-frame animation parameters derived from the
// energy level.
type OrbFrame struct {
	Level          float64 `json:"level"`
	Rotation       float64 `json:"rotation"`
	Hover          float64 `json:"hover"`
	HoverIntensity float64 `json:"hoverIntensity"`
	VoiceDetected  bool    `json:"voiceDetected"`
}

// Animator integrates energy levels into the orb's rotation and hover
// parameters. When no capture source exists it produces a gentle idle
// pulse instead.
type Animator struct {
	BaseSpeed float64
	MaxSpeed  float64
	MaxHover  float64

	rot float64
	t   float64
}

// NewAnimator returns an animator with the orb's default motion bounds.
func NewAnimator() *Animator {
	return &Animator{BaseSpeed: 0.3, MaxSpeed: 1.2, MaxHover: 0.8}
}

// Frame advances the animation by dt seconds at the given energy level.
func (a *Animator) Frame(dt, level float64) OrbFrame {
	a.t += dt

	speed := a.BaseSpeed + level*a.MaxSpeed*2.0
	if level > 0.05 {
		a.rot += dt * speed
	}

	hover := math.Min(level*2.0, 1.0)
	intensity := math.Min(level*a.MaxHover*0.8, a.MaxHover)

	return OrbFrame{
		Level:          level,
		Rotation:       a.rot,
		Hover:          hover,
		HoverIntensity: intensity,
		VoiceDetected:  level > 0.1,
	}
}

// IdleFrame advances the fallback pulse used when capture is denied,
// unavailable, or deliberately skipped.
func (a *Animator) IdleFrame(dt float64) OrbFrame {
	a.t += dt
	a.rot += dt * a.BaseSpeed

	pulse := 0.3 + math.Sin(a.t*1.5)*0.2

	return OrbFrame{
		Rotation:       a.rot,
		Hover:          pulse,
		HoverIntensity: pulse * a.MaxHover * 0.5,
	}
}

// Visualizer samples live audio frames on a fixed interval and emits orb
// animation frames. It degrades to the idle pulse when it has no source,
// and Close releases everything it holds.
type Visualizer struct {
	meter    LevelMeter
	animator *Animator

	mu     sync.Mutex
	latest []byte
	live    bool
	closed  bool
	running bool
	cancel  context.CancelFunc
}

// NewVisualizer builds a visualizer. If live is false (capture denied or
// skipped to avoid microphone contention) only the idle animation runs.
func NewVisualizer(sensitivity float64, live bool) *Visualizer {
	return &Visualizer{
		meter:    LevelMeter{Sensitivity: sensitivity},
		animator: NewAnimator(),
		live:     live,
	}
}

// Feed records the most recent audio frame for sampling. Safe to call
// from the capture path at any rate.
func (v *Visualizer) Feed(frame []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.latest = frame
}

// Run emits animation frames on interval until ctx ends or the
// visualizer is closed. The out channel is closed on return. Only one
// loop may run at a time; a second call is refused so Close keeps
// control of the active loop.
func (v *Visualizer) Run(ctx context.Context, out chan<- OrbFrame, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	v.mu.Lock()
	if v.closed || v.running {
		v.mu.Unlock()
		cancel()
		close(out)
		return
	}
	v.running = true
	v.cancel = cancel
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.running = false
		v.cancel = nil
		v.mu.Unlock()
	}()
	defer close(out)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := interval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := v.nextFrame(dt)
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (v *Visualizer) nextFrame(dt float64) OrbFrame {
	v.mu.Lock()
	live := v.live
	latest := v.latest
	v.latest = nil
	v.mu.Unlock()

	if !live {
		return v.animator.IdleFrame(dt)
	}
	return v.animator.Frame(dt, v.meter.Level(latest))
}

// Close stops the sampling loop and drops any held frame. Idempotent.
func (v *Visualizer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	v.latest = nil
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
