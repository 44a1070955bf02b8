package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/model"
)

const header = `
screens:
  - {id: home, title: Home}
  - {id: detail, title: Detail, back_label: Back}
  - {id: settings, title: Settings}
`

func load(t *testing.T, steps string) *Script {
	t.Helper()
	s, err := Load(strings.NewReader(header + "steps:\n" + steps))
	require.NoError(t, err)
	return s
}

func kinds(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, string(e.Kind)+":"+e.Screen)
	}
	return out
}

func TestLoad(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail}
  - {op: pop, animated: false}
`)
	assert.Equal(t, "home", s.RootID())
	require.Len(t, s.Steps, 2)
	assert.True(t, s.Steps[0].IsAnimated())
	assert.False(t, s.Steps[1].IsAnimated())
	assert.Equal(t, "Back", s.Screens[1].BackLabel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "no screens",
			input:   "steps: []\n",
			wantErr: ErrNoScreens,
		},
		{
			name:    "unknown op",
			input:   header + "steps:\n  - {op: jump}\n",
			wantErr: ErrUnknownOp,
		},
		{
			name:    "unknown screen",
			input:   header + "steps:\n  - {op: push, screen: nowhere}\n",
			wantErr: ErrUnknownScreen,
		},
		{
			name:    "unknown screen in set_stack",
			input:   header + "steps:\n  - {op: set_stack, screens: [home, nowhere]}\n",
			wantErr: ErrUnknownScreen,
		},
		{
			name:    "push without screen",
			input:   header + "steps:\n  - {op: push}\n",
			wantErr: ErrMissingScreen,
		},
		{
			name:    "unknown root",
			input:   header + "root: nowhere\n",
			wantErr: ErrUnknownScreen,
		},
		{
			name:    "bad style",
			input:   "style: sideways\n" + header,
			wantMsg: "sideways",
		},
		{
			name:    "unknown field",
			input:   header + "steps:\n  - {op: pop, speed: 3}\n",
			wantMsg: "failed to parse script",
		},
		{
			name:    "duplicate id",
			input:   "screens:\n  - {id: a, title: A}\n  - {id: a, title: B}\n",
			wantMsg: "duplicate screen id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(header+"root: detail\nsteps: []\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "detail", s.RootID())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_PushPopAnimated(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail}
  - {op: pop}
`)
	res, err := Run(s, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"did_show:home",
		"will_show:detail",
		"transition:detail",
		"step:detail",
		"did_show:detail",
		"will_show:home",
		"transition:home",
		"step:home",
		"did_show:home",
	}, kinds(res.Events))

	assert.Equal(t, []string{"home"}, res.Stack)
	assert.Equal(t, "home", res.Visible)

	// 350ms at 10ms frames per slide.
	assert.Equal(t, int64(350), res.Events[4].AtMillis)
	assert.Equal(t, int64(700), res.Events[8].AtMillis)
	assert.Equal(t, "from_right", res.Events[2].Direction)
	assert.Equal(t, "from_left", res.Events[6].Direction)

	for i, e := range res.Events {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Equal(t, 0, res.Events[0].Step)
	assert.Equal(t, 2, res.Events[8].Step)
}

func TestRun_NonAnimatedOverride(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail}
`)
	off := false
	res, err := Run(s, RunOptions{Animated: &off})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"did_show:home",
		"will_show:detail",
		"transition:detail",
		"did_show:detail",
		"step:detail",
	}, kinds(res.Events))
	for _, e := range res.Events {
		assert.False(t, e.Animated)
		assert.Zero(t, e.AtMillis)
	}
}

func TestRun_HoldRejectsOverlap(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail, hold: true}
  - {op: push, screen: settings}
`)
	rec := metrics.NewRecorder()
	res, err := Run(s, RunOptions{Metrics: rec})
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(rec.Registry(), "navstack_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{"home", "detail"}, res.Stack)

	var steps []model.Event
	for _, e := range res.Events {
		if e.Kind == model.EventStep {
			steps = append(steps, e)
		}
	}
	require.Len(t, steps, 2)
	assert.Equal(t, "push: ok [home,detail]", steps[0].Detail)
	assert.Equal(t, "push: rejected: transition in flight [home,detail]", steps[1].Detail)

	// The held push still completes before the run ends.
	last := res.Events[len(res.Events)-1]
	assert.Equal(t, model.EventDidShow, last.Kind)
	assert.Equal(t, "detail", last.Screen)
	assert.Equal(t, 3, last.Step)
}

func TestRun_NoOpsDuringTransitionAreNotRejections(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail, hold: true}
  - {op: bar_hidden, hidden: false, hold: true}
  - {op: back, hold: true}
  - {op: pop}
`)
	res, err := Run(s, RunOptions{})
	require.NoError(t, err)

	var details []string
	for _, e := range res.Events {
		if e.Kind == model.EventStep {
			details = append(details, e.Detail)
		}
	}
	assert.Equal(t, []string{
		"push: ok [home,detail]",
		"bar_hidden: no-op [home,detail]",
		"back: no-op [home,detail]",
		"pop: rejected: transition in flight [home,detail]",
	}, details)
	assert.Equal(t, []string{"home", "detail"}, res.Stack)
}

func TestRun_Interrupt(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail, interrupt: true}
`)
	res, err := Run(s, RunOptions{})
	require.NoError(t, err)

	last := res.Events[len(res.Events)-1]
	assert.Equal(t, model.EventDidShow, last.Kind)
	assert.Equal(t, "detail", last.Screen)
	assert.True(t, last.Animated)
	assert.Zero(t, last.AtMillis)
}

func TestRun_SetStackAndBar(t *testing.T) {
	s := load(t, `
  - {op: set_stack, screens: [home, detail, settings]}
  - {op: set_stack, screens: [home, detail]}
  - {op: bar_hidden, hidden: true}
  - {op: bar_hidden, hidden: true}
`)
	res, err := Run(s, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"home", "detail"}, res.Stack)
	assert.True(t, res.BarHidden)

	var transitions []model.Event
	var details []string
	for _, e := range res.Events {
		switch e.Kind {
		case model.EventTransition:
			transitions = append(transitions, e)
		case model.EventStep:
			details = append(details, e.Detail)
		}
	}
	require.Len(t, transitions, 3)
	assert.Equal(t, "from_right", transitions[0].Direction)
	assert.Equal(t, "from_left", transitions[1].Direction)
	assert.Equal(t, "from_bottom", transitions[2].Direction)
	assert.Equal(t, "bar hidden=true", transitions[2].Detail)

	assert.Equal(t, "bar_hidden: no-op [home,detail]", details[3])
}

func TestRun_ModalAndBack(t *testing.T) {
	s := load(t, `
  - {op: push, screen: detail, animated: false}
  - {op: present, screen: settings}
  - {op: dismiss}
  - {op: back}
  - {op: back}
`)
	res, err := Run(s, RunOptions{})
	require.NoError(t, err)

	var steps []model.Event
	for _, e := range res.Events {
		if e.Kind == model.EventStep {
			steps = append(steps, e)
		}
	}
	require.Len(t, steps, 5)
	assert.Equal(t, "settings", steps[1].Screen)
	assert.Equal(t, "present: ok [home,detail]", steps[1].Detail)
	assert.Equal(t, "dismiss: ok [home,detail]", steps[2].Detail)
	assert.Equal(t, "back: ok [home]", steps[3].Detail)
	assert.Equal(t, "back: no-op [home]", steps[4].Detail)
	assert.Equal(t, []string{"home"}, res.Stack)
}

func TestRun_StackStyle(t *testing.T) {
	s, err := Load(strings.NewReader("style: stack\n" + header + "root: detail\nsteps:\n  - {op: pop_to_root}\n"))
	require.NoError(t, err)

	res, err := Run(s, RunOptions{})
	require.NoError(t, err)
	// pop_to_root on a single-screen stack does nothing.
	assert.Equal(t, []string{"detail"}, res.Stack)
	assert.Equal(t, "pop_to_root: popped none [detail]", res.Events[len(res.Events)-1].Detail)
}
