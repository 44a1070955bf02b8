package transition

import (
	"time"

	"github.com/jmylchreest/navstack/internal/screen"
)

// Kind distinguishes screen slides from bar visibility slides.
type Kind int

const (
	KindScreen Kind = iota
	KindBar
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindBar:
		return "bar"
	default:
		return "unknown"
	}
}

// Request describes one transition. It is created per transition and
// discarded once the completion resolves.
type Request struct {
	Kind      Kind
	From      screen.Screen // Outgoing screen (nil for bar transitions)
	To        screen.Screen // Incoming screen (nil for bar transitions)
	BarHidden bool          // Target bar state for KindBar
	Duration  time.Duration
	Direction Direction
	Style     Style
	Animated  bool
}

// Instantaneous reports whether the request should complete without
// any visible motion.
func (r Request) Instantaneous() bool {
	return !r.Animated || r.Duration <= 0
}

// Engine runs a single transition. The returned Completion must resolve
// exactly once, on the goroutine that drives the engine.
type Engine interface {
	Run(req Request) *Completion
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(req Request) *Completion

// Run calls f(req).
func (f EngineFunc) Run(req Request) *Completion {
	return f(req)
}

// Instant is an Engine that applies every transition immediately.
type Instant struct{}

// Run resolves synchronously with finished == true.
func (Instant) Run(Request) *Completion {
	return Resolved(true)
}
