package nav

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/navbar"
	"github.com/jmylchreest/navstack/internal/screen"
	"github.com/jmylchreest/navstack/internal/transition"
)

// Controller owns the screen stack and drives transitions between its top
// elements.
type Controller struct {
	stack []screen.Screen
	modal screen.Screen

	engine   transition.Engine
	style    transition.Style
	bar      *navbar.Bar
	delegate Delegate
	logger   *slog.Logger
	metrics  *metrics.Recorder
	strict   bool

	// Flags. Mutated only by the controller.
	state        State
	popping      bool // a pop is logically underway
	poppingGuard bool // a bar back tap is being handled
	generation   uint64
	rejections   int
}

// New creates a controller with root as its only screen. No transition
// runs, but DidShow fires for the root.
func New(root screen.Screen, opts ...Option) (*Controller, error) {
	if root == nil {
		return nil, ErrNilScreen
	}
	if !screen.Comparable(root) {
		return nil, ErrIncomparableScreen
	}

	c := &Controller{
		stack:  []screen.Screen{root},
		engine: transition.Instant{},
		bar:    navbar.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.bar.OnBack(c.backTapped)
	c.bar.Sync(root, nil)
	c.metrics.SetDepth(len(c.stack))

	c.logger.Debug("navigation controller created", "root", screen.Label(root), "style", c.style)
	c.delegate.didShow(root, false)
	return c, nil
}

// Create is New with an explicit transition style.
func Create(root screen.Screen, style transition.Style, opts ...Option) (*Controller, error) {
	return New(root, append([]Option{WithStyle(style)}, opts...)...)
}

// Push appends s and slides it in from the right. Pushing a screen that
// is already on the stack is a no-op.
func (c *Controller) Push(s screen.Screen, animated bool) {
	if !c.admit("push") {
		return
	}
	if !screen.Comparable(s) || screen.Contains(c.stack, s) {
		c.logger.Debug("push ignored: screen nil, incomparable or already on stack", "screen", screen.Label(s))
		return
	}
	if s == c.modal {
		c.logger.Debug("push ignored: screen is presented modally", "screen", screen.Label(s))
		return
	}

	from := c.Top()
	c.stack = append(c.stack, s)
	c.runScreen(StatePushing, from, s, transition.FromRight, animated)
}

// Pop removes the top screen and returns it. The root is never popped.
func (c *Controller) Pop(animated bool) screen.Screen {
	if !c.admit("pop") {
		return nil
	}
	if len(c.stack) <= 1 {
		c.logger.Debug("pop ignored: only the root is on the stack")
		return nil
	}

	removed := c.truncate(len(c.stack) - 1)
	c.popping = true
	c.runScreen(StatePopping, removed[0], c.Top(), transition.FromLeft, animated)
	return removed[0]
}

// PopTo removes every screen above target with a single transition and
// returns them top first. It does nothing if target is absent or already
// on top.
func (c *Controller) PopTo(target screen.Screen, animated bool) []screen.Screen {
	if !c.admit("pop_to") {
		return nil
	}
	idx := screen.IndexOf(c.stack, target)
	if idx < 0 || idx == len(c.stack)-1 {
		c.logger.Debug("pop_to ignored: target absent or already on top", "target", screen.Label(target))
		return nil
	}

	removed := c.truncate(idx + 1)
	c.popping = true
	c.runScreen(StatePopping, removed[0], target, transition.FromLeft, animated)
	return removed
}

// PopToRoot is PopTo with the root as target.
func (c *Controller) PopToRoot(animated bool) []screen.Screen {
	if len(c.stack) == 0 {
		return nil
	}
	return c.PopTo(c.stack[0], animated)
}

// SetStack replaces the whole stack. If the new top was already on the old
// stack the change is presented as a pop, otherwise as a push. Empty
// input, or input naming a screen twice or holding an incomparable
// screen, is a no-op.
func (c *Controller) SetStack(screens []screen.Screen, animated bool) {
	if !c.admit("set_stack") {
		return
	}
	if len(screens) == 0 || !screen.Unique(screens) {
		c.logger.Debug("set_stack ignored: empty or non-unique stack", "len", len(screens))
		return
	}
	if c.modal != nil && screen.Contains(screens, c.modal) {
		c.logger.Debug("set_stack ignored: stack contains the modal screen")
		return
	}

	oldTop := c.Top()
	newTop := screen.Top(screens)
	popStyle := screen.Contains(c.stack, newTop)

	clear(c.stack)
	c.stack = append([]screen.Screen(nil), screens...)
	c.metrics.SetDepth(len(c.stack))

	if newTop == oldTop {
		// Nothing new is shown; only the chrome beneath may have changed.
		c.bar.Sync(c.Top(), screen.Below(c.stack))
		c.logger.Debug("set_stack replaced stack without transition", "depth", len(c.stack))
		return
	}

	direction := transition.FromRight
	if popStyle {
		direction = transition.FromLeft
		c.popping = true
	}
	c.runScreen(StateSettingStack, oldTop, newTop, direction, animated)
}

// Top returns the logical top of the stack. During a transition this is
// already the destination screen.
func (c *Controller) Top() screen.Screen {
	return screen.Top(c.stack)
}

// Visible returns the modally presented screen if any, else Top.
func (c *Controller) Visible() screen.Screen {
	if c.modal != nil {
		return c.modal
	}
	return c.Top()
}

// Screens returns a copy of the stack, root first.
func (c *Controller) Screens() []screen.Screen {
	return append([]screen.Screen(nil), c.stack...)
}

// Len returns the stack depth.
func (c *Controller) Len() int {
	return len(c.stack)
}

// PresentModal shows s over the top of the stack without a transition.
// It does nothing if a modal is already presented or s is on the stack.
func (c *Controller) PresentModal(s screen.Screen) bool {
	if !screen.Comparable(s) || c.modal != nil || screen.Contains(c.stack, s) {
		return false
	}
	c.modal = s
	c.logger.Debug("modal presented", "screen", screen.Label(s))
	return true
}

// DismissModal removes the modal screen and returns it.
func (c *Controller) DismissModal() screen.Screen {
	m := c.modal
	c.modal = nil
	if m != nil {
		c.logger.Debug("modal dismissed", "screen", screen.Label(m))
	}
	return m
}

// Modal returns the modally presented screen, or nil.
func (c *Controller) Modal() screen.Screen {
	return c.modal
}

// Rejections returns how many requests were refused because a transition
// was in flight.
func (c *Controller) Rejections() int {
	return c.rejections
}

// State returns the in-flight transition kind.
func (c *Controller) State() State {
	return c.state
}

// IsTransitioning reports whether any transition is in flight.
func (c *Controller) IsTransitioning() bool {
	return c.state != StateIdle
}

// IsPopping reports whether a pop is logically underway.
func (c *Controller) IsPopping() bool {
	return c.popping
}

// PoppingNavigationItem reports whether a bar back tap is being handled.
func (c *Controller) PoppingNavigationItem() bool {
	return c.poppingGuard
}

// Style returns the transition style.
func (c *Controller) Style() transition.Style {
	return c.style
}

// Bar returns the synchronized bar.
func (c *Controller) Bar() *navbar.Bar {
	return c.bar
}

// BarHidden returns the authoritative bar visibility.
func (c *Controller) BarHidden() bool {
	return c.bar.Hidden()
}

// SetDelegate replaces the delegate.
func (c *Controller) SetDelegate(d Delegate) {
	c.delegate = d
}

// SetBarHidden shows or hides the bar with a vertical slide. Requesting
// the current state is a no-op.
func (c *Controller) SetBarHidden(hidden, animated bool) {
	if c.bar.Hidden() == hidden {
		return
	}

	direction := transition.FromTop
	if hidden {
		direction = transition.FromBottom
	}
	duration := transition.BarDuration
	if !animated {
		duration = 0
	}

	if _, err := c.TransitionBarHidden(hidden, duration, direction); err != nil {
		c.reject("set_bar_hidden")
	}
}

// TransitionBarHidden flips the bar flag and runs the bar slide through the
// engine. It is the primitive behind SetBarHidden; callers overriding the
// slide are responsible for choosing a sensible direction and duration.
func (c *Controller) TransitionBarHidden(hidden bool, duration time.Duration, direction transition.Direction) (*transition.Completion, error) {
	if c.state != StateIdle {
		return nil, fmt.Errorf("set bar hidden while %s: %w", c.state, ErrTransitionInFlight)
	}

	token := StateBarShowing
	if hidden {
		token = StateBarHiding
	}
	c.bar.SetHidden(hidden)

	req := transition.Request{
		Kind:      transition.KindBar,
		BarHidden: hidden,
		Duration:  duration,
		Direction: direction,
		Style:     c.style,
		Animated:  duration > 0,
	}
	return c.start(token, req, nil, func(bool) {
		c.bar.Sync(c.Top(), screen.Below(c.stack))
	}), nil
}

// Transition runs a raw screen slide through the engine without touching
// the stack or notifying the delegate. It still honours single-flight.
func (c *Controller) Transition(from, to screen.Screen, duration time.Duration, direction transition.Direction) (*transition.Completion, error) {
	if c.state != StateIdle {
		return nil, fmt.Errorf("transition while %s: %w", c.state, ErrTransitionInFlight)
	}

	req := transition.Request{
		Kind:      transition.KindScreen,
		From:      from,
		To:        to,
		Duration:  duration,
		Direction: direction,
		Style:     c.style,
		Animated:  duration > 0,
	}
	return c.start(StateCustom, req, nil, nil), nil
}

// admit checks the single-flight precondition for op.
func (c *Controller) admit(op string) bool {
	if c.state == StateIdle {
		return true
	}
	c.reject(op)
	return false
}

func (c *Controller) reject(op string) {
	c.rejections++
	c.metrics.Rejected(op)
	if c.strict {
		panic(fmt.Sprintf("navstack: %s called while %s transition in flight", op, c.state))
	}
	c.logger.Warn("request rejected: transition in flight", "op", op, "state", c.state)
}

// truncate cuts the stack to n screens and returns the removed ones top
// first. Removed slots are cleared so the stack holds no stale references.
func (c *Controller) truncate(n int) []screen.Screen {
	removed := screen.Reversed(c.stack[n:])
	clear(c.stack[n:])
	c.stack = c.stack[:n]
	c.metrics.SetDepth(len(c.stack))
	return removed
}

// runScreen performs steps 3-6 of a screen transition: set the token,
// announce, run the engine, and on completion reset, sync and announce.
func (c *Controller) runScreen(token State, from, to screen.Screen, direction transition.Direction, animated bool) {
	duration := transition.TransitionDuration
	if !animated {
		duration = 0
	}

	req := transition.Request{
		Kind:      transition.KindScreen,
		From:      from,
		To:        to,
		Duration:  duration,
		Direction: direction,
		Style:     c.style,
		Animated:  animated,
	}

	c.logger.Debug("transition starting",
		"state", token,
		"from", screen.Label(from),
		"to", screen.Label(to),
		"direction", direction,
		"animated", animated,
	)

	c.start(token, req,
		func() {
			c.delegate.willShow(to, animated)
		},
		func(bool) {
			c.bar.Sync(c.Top(), screen.Below(c.stack))
			c.delegate.didShow(to, animated)
		},
	)
}

// start sets the state token, runs req and arranges for done to run once
// the engine completes. before runs after the token is set and before the
// engine is invoked.
func (c *Controller) start(token State, req transition.Request, before func(), done func(finished bool)) *transition.Completion {
	c.state = token
	c.generation++
	gen := c.generation

	if before != nil {
		before()
	}

	c.metrics.TransitionStarted(req.Kind.String(), req.Direction.String(), req.Animated)
	started := time.Now()

	completion := c.engine.Run(req)
	if completion == nil {
		completion = transition.Resolved(true)
	}

	completion.Then(func(finished bool) {
		if gen != c.generation || c.state == StateIdle {
			c.logger.Warn("stale transition completion ignored", "generation", gen)
			return
		}
		c.state = StateIdle
		c.popping = false
		c.poppingGuard = false
		c.metrics.TransitionCompleted(req.Kind.String(), time.Since(started), finished)
		if !finished {
			c.logger.Debug("transition interrupted", "kind", req.Kind, "state", token)
		}
		if done != nil {
			done(finished)
		}
	})
	return completion
}

// backTapped handles a back tap forwarded from the bar. The guard stays
// up until the resulting pop completes.
func (c *Controller) backTapped() {
	if c.poppingGuard || c.state != StateIdle {
		c.logger.Debug("back tap ignored", "state", c.state, "guard", c.poppingGuard)
		return
	}
	c.poppingGuard = true
	if c.Pop(true) == nil {
		c.poppingGuard = false
	}
}
