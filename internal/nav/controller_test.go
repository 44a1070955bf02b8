package nav

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/screen"
	"github.com/jmylchreest/navstack/internal/transition"
)

// recorder is an Engine that logs every run into a shared event log and
// keeps completions pending until the test resolves them.
type recorder struct {
	log      *[]string
	requests []transition.Request
	pending  []*transition.Completion
}

func (r *recorder) Run(req transition.Request) *transition.Completion {
	r.requests = append(r.requests, req)
	*r.log = append(*r.log, "run:"+req.Direction.String())
	if req.Instantaneous() {
		return transition.Resolved(true)
	}
	c := transition.NewCompletion()
	r.pending = append(r.pending, c)
	return c
}

func (r *recorder) finish(finished bool) {
	c := r.pending[0]
	r.pending = r.pending[1:]
	c.Resolve(finished)
}

func (r *recorder) last() transition.Request {
	return r.requests[len(r.requests)-1]
}

type harness struct {
	c      *Controller
	engine *recorder
	events []string
}

func newHarness(t *testing.T, root screen.Screen, opts ...Option) *harness {
	t.Helper()
	h := &harness{}
	h.engine = &recorder{log: &h.events}

	delegate := Delegate{
		WillShow: func(s screen.Screen, animated bool) {
			h.events = append(h.events, "will:"+s.Title())
		},
		DidShow: func(s screen.Screen, animated bool) {
			h.events = append(h.events, "did:"+s.Title())
		},
	}

	all := append([]Option{
		WithEngine(h.engine),
		WithDelegate(delegate),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	}, opts...)

	c, err := New(root, all...)
	require.NoError(t, err)
	h.c = c
	return h
}

func (h *harness) reset() {
	h.events = nil
}

func screens(titles ...string) []screen.Screen {
	out := make([]screen.Screen, len(titles))
	for i, title := range titles {
		out[i] = screen.MustNew(title, screen.Chrome{})
	}
	return out
}

func TestNew_NilRoot(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilScreen)
}

type valueScreen struct {
	chrome screen.Chrome
}

func (v valueScreen) Title() string         { return "value" }
func (v valueScreen) Chrome() screen.Chrome { return v.chrome }

func TestIncomparableScreensRefused(t *testing.T) {
	v := valueScreen{chrome: screen.Chrome{Items: []string{"Edit"}}}

	_, err := New(v)
	assert.ErrorIs(t, err, ErrIncomparableScreen)

	s := screens("A", "B")
	h := newHarness(t, s[0])
	assert.NotPanics(t, func() {
		h.c.Push(v, false)
		assert.False(t, h.c.PresentModal(v))
		h.c.SetStack([]screen.Screen{s[0], v}, false)
		assert.Nil(t, h.c.PopTo(v, false))
	})
	assert.Equal(t, []screen.Screen{s[0]}, h.c.Screens())
	assert.Empty(t, h.engine.requests)
}

func TestNew_EmitsDidShowForRootOnly(t *testing.T) {
	root := screen.MustNew("Home", screen.Chrome{})
	h := newHarness(t, root)

	assert.Equal(t, []string{"did:Home"}, h.events)
	assert.Empty(t, h.engine.requests, "no transition on construction")
	assert.Equal(t, root, h.c.Top())
	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, "Home", h.c.Bar().State().Title)
}

func TestCreate_Style(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0], WithStyle(transition.StyleStack))
	h.c.Push(s[1], true)

	assert.Equal(t, transition.StyleStack, h.c.Style())
	assert.Equal(t, transition.StyleStack, h.engine.last().Style)

	c, err := Create(s[0], transition.StyleStack)
	require.NoError(t, err)
	assert.Equal(t, transition.StyleStack, c.Style())
}

func TestPush_TopTracksLastPushed(t *testing.T) {
	s := screens("A", "B", "C", "D")
	h := newHarness(t, s[0])

	h.c.Push(s[1], false)
	assert.Equal(t, s[1], h.c.Top())
	h.c.Push(s[2], false)
	assert.Equal(t, s[2], h.c.Top())
	assert.Equal(t, s[2], h.c.Pop(false))
	assert.Equal(t, s[1], h.c.Top())
	h.c.Push(s[3], false)
	assert.Equal(t, s[3], h.c.Top())
	assert.Equal(t, []screen.Screen{s[0], s[1], s[3]}, h.c.Screens())
}

func TestPush_DuplicateIsNoop(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)
	h.reset()

	h.c.Push(s[0], false)
	h.c.Push(s[1], true)
	h.c.Push(nil, true)

	assert.Equal(t, 2, h.c.Len())
	assert.Empty(t, h.events)
	assert.Equal(t, StateIdle, h.c.State())
}

func TestPush_AnimatedRequest(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.reset()

	h.c.Push(s[1], true)

	req := h.engine.last()
	assert.Equal(t, transition.KindScreen, req.Kind)
	assert.Equal(t, s[0], req.From)
	assert.Equal(t, s[1], req.To)
	assert.Equal(t, transition.FromRight, req.Direction)
	assert.Equal(t, transition.TransitionDuration, req.Duration)
	assert.True(t, req.Animated)

	assert.Equal(t, StatePushing, h.c.State())
	assert.Equal(t, s[1], h.c.Top(), "reads reflect the destination mid-transition")
	assert.Equal(t, []string{"will:B", "run:from_right"}, h.events)

	h.engine.finish(true)
	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, []string{"will:B", "run:from_right", "did:B"}, h.events)
	assert.Equal(t, "B", h.c.Bar().State().Title)
	assert.Equal(t, "A", h.c.Bar().State().BackLabel)
}

func TestNonAnimated_NotificationsStillFireInOrder(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.reset()

	h.c.Push(s[1], false)

	assert.Equal(t, []string{"will:B", "run:from_right", "did:B"}, h.events)
	assert.Equal(t, time.Duration(0), h.engine.last().Duration)
	assert.False(t, h.engine.last().Animated)
	assert.Equal(t, StateIdle, h.c.State())
}

func TestPop_SingleScreenIsNoop(t *testing.T) {
	s := screens("A")
	h := newHarness(t, s[0])
	h.reset()

	assert.Nil(t, h.c.Pop(true))
	assert.Equal(t, 1, h.c.Len())
	assert.Empty(t, h.events)
}

func TestPop_Animated(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)
	h.reset()

	popped := h.c.Pop(true)

	assert.Equal(t, s[1], popped)
	assert.Equal(t, s[0], h.c.Top())
	assert.Equal(t, StatePopping, h.c.State())
	assert.True(t, h.c.IsPopping())

	req := h.engine.last()
	assert.Equal(t, s[1], req.From)
	assert.Equal(t, s[0], req.To)
	assert.Equal(t, transition.FromLeft, req.Direction)

	h.engine.finish(true)
	assert.False(t, h.c.IsPopping())
	assert.Equal(t, []string{"will:A", "run:from_left", "did:A"}, h.events)
	assert.False(t, h.c.Bar().State().HasBack())
}

func TestPopTo(t *testing.T) {
	s := screens("A", "B", "C", "D")
	h := newHarness(t, s[0])
	h.c.SetStack(s, false)
	h.reset()

	removed := h.c.PopTo(s[1], true)

	assert.Equal(t, []screen.Screen{s[3], s[2]}, removed)
	assert.Equal(t, []screen.Screen{s[0], s[1]}, h.c.Screens())
	require.Len(t, h.engine.pending, 1, "single transition for the whole pop")
	assert.Equal(t, s[3], h.engine.last().From)
	assert.Equal(t, s[1], h.engine.last().To)

	h.engine.finish(true)
	assert.Equal(t, []string{"will:B", "run:from_left", "did:B"}, h.events)
}

func TestPopTo_InvalidTargets(t *testing.T) {
	s := screens("A", "B")
	stranger := screen.MustNew("X", screen.Chrome{})
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)
	h.reset()

	assert.Empty(t, h.c.PopTo(stranger, true))
	assert.Empty(t, h.c.PopTo(s[1], true), "already on top")
	assert.Empty(t, h.c.PopTo(nil, true))
	assert.Equal(t, 2, h.c.Len())
	assert.Empty(t, h.events)
}

func TestPopToRoot(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.c.SetStack(s, false)

	removed := h.c.PopToRoot(false)
	assert.Equal(t, []screen.Screen{s[2], s[1]}, removed)
	assert.Equal(t, s[0], h.c.Top())

	assert.Empty(t, h.c.PopToRoot(false))
}

func TestSetStack_InfersDirection(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])

	h.c.SetStack(s, true)
	assert.Equal(t, transition.FromRight, h.engine.last().Direction, "C was not on the stack")
	assert.Equal(t, StateSettingStack, h.c.State())
	assert.False(t, h.c.IsPopping())
	h.engine.finish(true)

	h.c.SetStack([]screen.Screen{s[0]}, true)
	assert.Equal(t, transition.FromLeft, h.engine.last().Direction, "A was already on the stack")
	assert.True(t, h.c.IsPopping())
	assert.Equal(t, s[2], h.engine.last().From)
	assert.Equal(t, s[0], h.engine.last().To)
	h.engine.finish(true)

	assert.Equal(t, []screen.Screen{s[0]}, h.c.Screens())
}

func TestSetStack_OldTopNeedNotRemain(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)
	h.reset()

	h.c.SetStack([]screen.Screen{s[2]}, false)
	assert.Equal(t, []screen.Screen{s[2]}, h.c.Screens())
	assert.Equal(t, []string{"will:C", "run:from_right", "did:C"}, h.events)
}

func TestSetStack_Rejects(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.reset()

	h.c.SetStack(nil, true)
	h.c.SetStack([]screen.Screen{s[1], s[1]}, true)
	h.c.SetStack([]screen.Screen{s[1], nil}, true)

	assert.Equal(t, []screen.Screen{s[0]}, h.c.Screens())
	assert.Empty(t, h.events)
}

func TestSetStack_SameTopSkipsTransition(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.c.SetStack([]screen.Screen{s[0], s[2]}, false)
	h.reset()

	h.c.SetStack([]screen.Screen{s[1], s[2]}, true)

	assert.Empty(t, h.events)
	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, "B", h.c.Bar().State().BackLabel)
}

func TestSingleFlight_RejectsConcurrentCalls(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.c.Push(s[1], true)
	runs := len(h.engine.requests)

	h.c.Push(s[2], true)
	assert.Nil(t, h.c.Pop(true))
	assert.Empty(t, h.c.PopToRoot(true))
	h.c.SetStack([]screen.Screen{s[2]}, true)
	h.c.SetBarHidden(true, true)

	assert.Equal(t, []screen.Screen{s[0], s[1]}, h.c.Screens())
	assert.Equal(t, runs, len(h.engine.requests), "no second engine run")
	assert.False(t, h.c.BarHidden())

	h.engine.finish(true)
	h.c.Push(s[2], false)
	assert.Equal(t, s[2], h.c.Top())
}

func TestSingleFlight_StrictPanics(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0], WithStrict(true))
	h.c.Push(s[1], true)

	assert.Panics(t, func() {
		h.c.Push(s[2], true)
	})
}

func TestSingleFlight_RejectionsCounted(t *testing.T) {
	s := screens("A", "B", "C")
	rec := metrics.NewRecorder()
	h := newHarness(t, s[0], WithMetrics(rec))
	h.c.Push(s[1], true)
	h.c.Push(s[2], true)
	assert.Equal(t, 1, h.c.Rejections())

	// A no-op request is not a rejection.
	h.c.SetBarHidden(false, true)
	assert.Equal(t, 1, h.c.Rejections())

	families, err := rec.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "navstack_rejected_total" {
			found = true
			assert.Equal(t, 1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestInterruptedTransitionStillCompletes(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.reset()

	h.c.Push(s[1], true)
	h.engine.finish(false)

	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, s[1], h.c.Top())
	assert.Equal(t, []string{"will:B", "run:from_right", "did:B"}, h.events)
}

func TestDelegatePairsNeverInterleave(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.reset()

	// Chain a push from inside DidShow; the second pair must start after
	// the first has closed.
	chained := false
	h.c.SetDelegate(Delegate{
		WillShow: func(sc screen.Screen, _ bool) { h.events = append(h.events, "will:"+sc.Title()) },
		DidShow: func(sc screen.Screen, _ bool) {
			h.events = append(h.events, "did:"+sc.Title())
			if !chained {
				chained = true
				h.c.Push(s[2], true)
			}
		},
	})

	h.c.Push(s[1], true)
	h.engine.finish(true)
	h.engine.finish(true)

	assert.Equal(t, []string{
		"will:B", "run:from_right", "did:B",
		"will:C", "run:from_right", "did:C",
	}, h.events)
}

func TestSetBarHidden(t *testing.T) {
	s := screens("A")
	h := newHarness(t, s[0])
	h.reset()

	h.c.SetBarHidden(false, true)
	assert.Empty(t, h.engine.requests, "already visible")

	h.c.SetBarHidden(true, true)
	assert.True(t, h.c.BarHidden(), "flag flips before the slide finishes")
	assert.Equal(t, StateBarHiding, h.c.State())
	req := h.engine.last()
	assert.Equal(t, transition.KindBar, req.Kind)
	assert.Equal(t, transition.FromBottom, req.Direction)
	assert.Equal(t, transition.BarDuration, req.Duration)
	assert.True(t, req.BarHidden)
	h.engine.finish(true)
	assert.Equal(t, StateIdle, h.c.State())

	h.c.SetBarHidden(true, true)
	assert.Len(t, h.engine.requests, 1)

	h.c.SetBarHidden(false, false)
	assert.False(t, h.c.BarHidden())
	assert.Equal(t, transition.FromTop, h.engine.last().Direction)
	assert.Equal(t, StateIdle, h.c.State())

	assert.Equal(t, []string{"run:from_bottom", "run:from_top"}, h.events, "bar slides do not notify the delegate")
}

func TestBarSyncsOnEveryCompletion(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	before := h.c.Bar().SyncCount()

	h.c.Push(s[1], true)
	assert.Equal(t, "A", h.c.Bar().State().Title, "chrome follows completion, not start")
	h.engine.finish(true)
	h.c.SetBarHidden(true, false)

	assert.Equal(t, before+2, h.c.Bar().SyncCount())
	assert.Equal(t, "B", h.c.Bar().State().Title)
}

func TestBackTap(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)
	h.reset()

	h.c.Bar().TapBack()
	assert.True(t, h.c.PoppingNavigationItem())
	assert.Equal(t, s[0], h.c.Top())

	// A second tap while the first pop animates is ignored quietly, even
	// in strict mode.
	h.c.strict = true
	assert.NotPanics(t, h.c.Bar().TapBack)

	h.engine.finish(true)
	assert.False(t, h.c.PoppingNavigationItem())
	assert.Equal(t, []string{"will:A", "run:from_left", "did:A"}, h.events)
}

func TestBackTap_GuardBlocksReentry(t *testing.T) {
	s := screens("A", "B", "C")
	h := newHarness(t, s[0])
	h.c.SetStack(s, false)

	// WillShow forwards another back tap while the first is being handled.
	h.c.SetDelegate(Delegate{
		WillShow: func(screen.Screen, bool) {
			h.c.Bar().TapBack()
		},
	})
	h.c.Bar().TapBack()
	h.engine.finish(true)

	assert.Equal(t, []screen.Screen{s[0], s[1]}, h.c.Screens())
}

func TestModal(t *testing.T) {
	s := screens("A", "B")
	sheet := screen.MustNew("Sheet", screen.Chrome{})
	h := newHarness(t, s[0])
	h.c.Push(s[1], false)

	assert.False(t, h.c.PresentModal(s[0]), "screens on the stack cannot be modal")
	assert.True(t, h.c.PresentModal(sheet))
	assert.False(t, h.c.PresentModal(screen.MustNew("Other", screen.Chrome{})))

	assert.Equal(t, sheet, h.c.Visible())
	assert.Equal(t, s[1], h.c.Top())

	h.c.Push(sheet, false)
	assert.Equal(t, 2, h.c.Len())

	assert.Equal(t, sheet, h.c.DismissModal())
	assert.Nil(t, h.c.DismissModal())
	assert.Equal(t, s[1], h.c.Visible())
}

func TestTransition_AdvancedSurface(t *testing.T) {
	s := screens("A", "B")
	h := newHarness(t, s[0])
	h.reset()

	c, err := h.c.Transition(s[0], s[1], 100*time.Millisecond, transition.FromBottom)
	require.NoError(t, err)
	assert.Equal(t, StateCustom, h.c.State())
	assert.Equal(t, s[0], h.c.Top(), "raw transitions do not touch the stack")

	_, err = h.c.Transition(s[0], s[1], 0, transition.FromTop)
	assert.ErrorIs(t, err, ErrTransitionInFlight)
	_, err = h.c.TransitionBarHidden(true, 0, transition.FromBottom)
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	h.engine.finish(true)
	assert.True(t, c.Finished())
	assert.Equal(t, StateIdle, h.c.State())
	assert.Equal(t, []string{"run:from_bottom"}, h.events)
}

func TestAnimatorDrivenTransitions(t *testing.T) {
	s := screens("A", "B")
	animator := transition.NewAnimator()
	c, err := New(s[0], WithEngine(animator))
	require.NoError(t, err)

	c.Push(s[1], true)
	assert.True(t, animator.Active())
	assert.Equal(t, StatePushing, c.State())

	animator.Advance(transition.TransitionDuration / 2)
	assert.True(t, c.IsTransitioning())

	animator.Advance(transition.TransitionDuration)
	assert.False(t, c.IsTransitioning())
	assert.Equal(t, "B", c.Bar().State().Title)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StatePushing, "pushing"},
		{StatePopping, "popping"},
		{StateSettingStack, "setting_stack"},
		{StateBarShowing, "bar_showing"},
		{StateBarHiding, "bar_hiding"},
		{StateCustom, "custom"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}
