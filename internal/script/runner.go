package script

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/model"
	"github.com/jmylchreest/navstack/internal/nav"
	"github.com/jmylchreest/navstack/internal/screen"
	"github.com/jmylchreest/navstack/internal/transition"
)

// DefaultFrame is the virtual frame length used to advance animations.
const DefaultFrame = 10 * time.Millisecond

// RunOptions configures a headless run.
type RunOptions struct {
	Frame    time.Duration // Virtual frame length (0 = DefaultFrame)
	Animated *bool         // Overrides every step's animated flag when set
	Strict   bool
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
}

// Result is the outcome of a run.
type Result struct {
	Events    []model.Event
	Stack     []string // Screen ids, root first
	Visible   string
	BarHidden bool
}

type runner struct {
	script   *Script
	opts     RunOptions
	animator *transition.Animator
	byID     map[string]screen.Screen
	names    map[screen.Screen]string
	events   []model.Event
	step     int
	clock    time.Duration
}

// Run executes the script and returns its trace.
func Run(s *Script, opts RunOptions) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Frame <= 0 {
		opts.Frame = DefaultFrame
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &runner{
		script:   s,
		opts:     opts,
		animator: transition.NewAnimator(),
		byID:     make(map[string]screen.Screen, len(s.Screens)),
		names:    make(map[screen.Screen]string, len(s.Screens)),
	}

	for _, sc := range s.Screens {
		b, err := screen.New(sc.Title, screen.Chrome{BackLabel: sc.BackLabel, Items: sc.Items})
		if err != nil {
			return nil, err
		}
		r.byID[sc.ID] = b
		r.names[b] = sc.ID
	}

	style, _ := transition.ParseStyle(s.Style)
	c, err := nav.Create(r.byID[s.RootID()], style,
		nav.WithEngine(transition.EngineFunc(r.run)),
		nav.WithDelegate(nav.Delegate{
			WillShow: func(sc screen.Screen, animated bool) {
				r.emit(model.Event{Kind: model.EventWillShow, Screen: r.names[sc], Animated: animated})
			},
			DidShow: func(sc screen.Screen, animated bool) {
				r.emit(model.Event{Kind: model.EventDidShow, Screen: r.names[sc], Animated: animated})
			},
		}),
		nav.WithLogger(opts.Logger),
		nav.WithMetrics(opts.Metrics),
		nav.WithStrict(opts.Strict),
	)
	if err != nil {
		return nil, err
	}

	for i, step := range s.Steps {
		r.step = i + 1
		detail := r.apply(c, step)
		r.emit(model.Event{Kind: model.EventStep, Screen: r.names[c.Visible()], Detail: detail})

		switch {
		case step.Hold:
		case step.Interrupt:
			r.animator.Interrupt()
		default:
			r.clock += time.Duration(r.animator.Drain(opts.Frame)) * opts.Frame
		}
	}

	// Let anything still held finish so the trace closes every pair.
	r.step = len(s.Steps) + 1
	r.clock += time.Duration(r.animator.Drain(opts.Frame)) * opts.Frame

	res := &Result{
		Events:    r.events,
		Visible:   r.names[c.Visible()],
		BarHidden: c.BarHidden(),
	}
	for _, sc := range c.Screens() {
		res.Stack = append(res.Stack, r.names[sc])
	}
	return res, nil
}

// run is the engine seen by the controller: it records the request and
// hands it to the animator.
func (r *runner) run(req transition.Request) *transition.Completion {
	ev := model.Event{
		Kind:      model.EventTransition,
		Animated:  req.Animated,
		Direction: req.Direction.String(),
	}
	if req.Kind == transition.KindBar {
		ev.Detail = fmt.Sprintf("bar hidden=%t", req.BarHidden)
	} else {
		ev.Screen = r.names[req.To]
		ev.Detail = fmt.Sprintf("%s -> %s %s", r.names[req.From], r.names[req.To], req.Duration)
	}
	r.emit(ev)
	return r.animator.Run(req)
}

func (r *runner) emit(e model.Event) {
	e.Seq = len(r.events) + 1
	e.Step = r.step
	e.AtMillis = r.clock.Milliseconds()
	r.events = append(r.events, e)
}

func (r *runner) animated(step Step) bool {
	if r.opts.Animated != nil {
		return *r.opts.Animated
	}
	return step.IsAnimated()
}

// apply performs one step and returns a human-readable outcome.
func (r *runner) apply(c *nav.Controller, step Step) string {
	animated := r.animated(step)
	if c.IsTransitioning() {
		r.opts.Logger.Debug("script step issued during transition", "step", r.step, "op", step.Op, "state", c.State())
	}
	rejected := c.Rejections()

	var outcome string
	switch step.Op {
	case OpPush:
		before := c.Len()
		c.Push(r.byID[step.Screen], animated)
		outcome = changed(c.Len() != before)
	case OpPop:
		outcome = "popped " + r.join([]screen.Screen{c.Pop(animated)})
	case OpPopTo:
		outcome = "popped " + r.join(c.PopTo(r.byID[step.Screen], animated))
	case OpPopToRoot:
		outcome = "popped " + r.join(c.PopToRoot(animated))
	case OpSetStack:
		target := make([]screen.Screen, 0, len(step.Screens))
		for _, id := range step.Screens {
			target = append(target, r.byID[id])
		}
		before := r.join(c.Screens())
		c.SetStack(target, animated)
		outcome = changed(r.join(c.Screens()) != before)
	case OpBarHidden:
		before := c.BarHidden()
		c.SetBarHidden(step.Hidden, animated)
		outcome = changed(c.BarHidden() != before)
	case OpPresent:
		outcome = changed(c.PresentModal(r.byID[step.Screen]))
	case OpDismiss:
		outcome = changed(c.DismissModal() != nil)
	case OpBack:
		before := c.Len()
		c.Bar().TapBack()
		outcome = changed(c.Len() != before)
	}

	if c.Rejections() != rejected {
		outcome = "rejected: transition in flight"
	}
	return fmt.Sprintf("%s: %s [%s]", step.Op, outcome, r.join(c.Screens()))
}

func (r *runner) join(screens []screen.Screen) string {
	ids := make([]string, 0, len(screens))
	for _, s := range screens {
		if s == nil {
			continue
		}
		ids = append(ids, r.names[s])
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ",")
}

func changed(ok bool) string {
	if ok {
		return "ok"
	}
	return "no-op"
}
