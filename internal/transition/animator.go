package transition

import (
	"time"

	"github.com/jmylchreest/navstack/internal/screen"
)

// Frame is the slide geometry at a point in time. Offsets are fractions
// of the axis length: 0 means at rest in view, ±1 means fully off the
// positive (right/bottom) or negative (left/top) edge.
type Frame struct {
	Active    bool
	Kind      Kind
	From      screen.Screen
	To        screen.Screen
	Direction Direction
	Progress  float64
	Outgoing  float64
	Incoming  float64
}

// Vertical reports whether offsets apply to the y axis.
func (f Frame) Vertical() bool {
	return f.Direction.Vertical()
}

// ComputeFrame returns the geometry of req at progress p (clamped to [0,1]).
// The incoming visual enters from the named edge while the outgoing one
// exits toward the opposite edge. StyleStack pins the lower screen of a
// horizontal pair in place.
func ComputeFrame(req Request, p float64) Frame {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	sign := req.Direction.sign()
	f := Frame{
		Active:    p < 1,
		Kind:      req.Kind,
		From:      req.From,
		To:        req.To,
		Direction: req.Direction,
		Progress:  p,
		Outgoing:  -sign * p,
		Incoming:  sign * (1 - p),
	}

	if req.Style == StyleStack && req.Kind == KindScreen && !req.Direction.Vertical() {
		switch req.Direction {
		case FromRight:
			f.Outgoing = 0
		case FromLeft:
			f.Incoming = 0
		}
	}

	// Clean up negative zero so callers can compare against 0.
	if f.Outgoing == 0 {
		f.Outgoing = 0
	}
	if f.Incoming == 0 {
		f.Incoming = 0
	}
	return f
}

// Animator is a frame-stepped Engine. The host loop calls Advance with the
// elapsed time each tick; completions therefore resolve on the host loop.
type Animator struct {
	req        Request
	elapsed    time.Duration
	completion *Completion
	lastFrame  Frame
}

// NewAnimator creates an idle Animator.
func NewAnimator() *Animator {
	return &Animator{}
}

// Run starts animating req. Instantaneous requests resolve before Run
// returns. A request arriving while another is active interrupts the
// active one first.
func (a *Animator) Run(req Request) *Completion {
	if a.completion != nil {
		a.Interrupt()
	}

	if req.Instantaneous() {
		a.lastFrame = ComputeFrame(req, 1)
		return Resolved(true)
	}

	c := NewCompletion()
	a.req = req
	a.elapsed = 0
	a.completion = c
	a.lastFrame = ComputeFrame(req, 0)
	return c
}

// Advance moves the active animation forward by dt. It returns true while
// an animation is still running afterward.
func (a *Animator) Advance(dt time.Duration) bool {
	if a.completion == nil {
		return false
	}

	a.elapsed += dt
	p := float64(a.elapsed) / float64(a.req.Duration)
	a.lastFrame = ComputeFrame(a.req, p)
	if p < 1 {
		return true
	}

	// Clear before resolving: continuations may start the next run.
	c := a.completion
	a.completion = nil
	c.Resolve(true)
	return a.completion != nil
}

// Interrupt stops the active animation, resolving it with finished == false.
func (a *Animator) Interrupt() {
	if a.completion == nil {
		return
	}
	a.lastFrame = ComputeFrame(a.req, 1)
	c := a.completion
	a.completion = nil
	c.Resolve(false)
}

// Active reports whether an animation is running.
func (a *Animator) Active() bool {
	return a.completion != nil
}

// Frame returns the geometry of the current (or last) animation.
func (a *Animator) Frame() Frame {
	return a.lastFrame
}

// Drain advances in steps of frame until the active animation, and any
// animation chained from its completion, has finished.
func (a *Animator) Drain(frame time.Duration) int {
	if frame <= 0 {
		frame = time.Millisecond
	}
	steps := 0
	for a.Active() {
		a.Advance(frame)
		steps++
	}
	return steps
}
