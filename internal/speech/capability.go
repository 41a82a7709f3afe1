// Package speech adapts the external speech engine: recognition input,
// synthesized output, and the energy levels that drive the orb
// visualization.
package speech

import "github.com/hyrx/studio-backend/internal/config"

// Capability is the result of probing for speech support. It is resolved
// once at startup; callers branch on Supported instead of re-probing.
type Capability struct {
	engine *Engine
	reason string
}

// Detect checks the configuration and returns either a usable engine
// handle or the reason speech is unavailable. It never fails hard:
// missing support degrades to a disabled affordance.
func Detect(cfg config.SpeechConfig) Capability {
	if !cfg.Enabled {
		return Capability{reason: "speech engine credentials not configured"}
	}
	return Capability{engine: NewEngine(cfg)}
}

// Supported reports whether a speech engine is available.
func (c Capability) Supported() bool {
	return c.engine != nil
}

// Engine returns the engine handle; nil when unsupported.
func (c Capability) Engine() *Engine {
	return c.engine
}

// Reason explains why speech is unavailable. Empty when supported.
func (c Capability) Reason() string {
	return c.reason
}
