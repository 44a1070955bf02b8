// Package tui provides the BubbleTea-based terminal host for the
// navigation controller.
package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/navstack/internal/config"
	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/nav"
	"github.com/jmylchreest/navstack/internal/screen"
	"github.com/jmylchreest/navstack/internal/transition"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeNavigate Mode = iota
	ModeHelp
)

const maxLogEntries = 50

// logEntry is one line of the on-screen event log.
type logEntry struct {
	at   time.Time
	text string
}

// session holds the state shared by every copy of Model. Delegate hooks,
// engine completions and controller logs write here from inside Update.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger // feeds the event log
	ctrl     *nav.Controller
	animator *transition.Animator
	screens  []*screen.Basic
	log      []logEntry
	ticking  bool
	now      func() time.Time
}

func (s *session) record(format string, args ...any) {
	s.log = append(s.log, logEntry{at: s.now(), text: fmt.Sprintf(format, args...)})
	if len(s.log) > maxLogEntries {
		s.log = s.log[len(s.log)-maxLogEntries:]
	}
}

// Options configures a Model.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger // Used only before the program starts
	Metrics *metrics.Recorder
	Now     func() time.Time // Clock for the event log (nil = time.Now)
}

// Model is the main TUI model.
type Model struct {
	sess *session

	mode     Mode
	animated bool
	help     help.Model
	keys     KeyMap

	width  int
	height int
	ready  bool

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model with the first configured screen as root.
func New(opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if len(cfg.Demo.Screens) == 0 {
		return Model{}, fmt.Errorf("no demo screens configured")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sess := &session{
		cfg:      cfg,
		animator: transition.NewAnimator(),
		now:      now,
	}
	sess.logger = slog.New(newEventLogHandler(slog.LevelInfo, func(line string) {
		sess.record("%s", line)
	}))
	for _, sc := range cfg.Demo.Screens {
		b, err := screen.New(sc.Title, screen.Chrome{BackLabel: sc.BackLabel, Items: sc.Items})
		if err != nil {
			return Model{}, err
		}
		sess.screens = append(sess.screens, b)
	}

	ctrl, err := nav.Create(sess.screens[0], cfg.Style(),
		nav.WithEngine(sess.animator),
		nav.WithDelegate(nav.Delegate{
			WillShow: func(s screen.Screen, animated bool) {
				sess.record("will_show %s%s", s.Title(), animatedSuffix(animated))
			},
			DidShow: func(s screen.Screen, animated bool) {
				sess.record("did_show %s%s", s.Title(), animatedSuffix(animated))
			},
		}),
		nav.WithLogger(sess.logger),
		nav.WithMetrics(opts.Metrics),
		nav.WithStrict(cfg.Navigation.Strict),
	)
	if err != nil {
		return Model{}, err
	}
	sess.ctrl = ctrl

	if cfg.Bar.Hidden {
		ctrl.SetBarHidden(true, false)
	}

	logger.Debug("demo session created", "screens", len(sess.screens), "style", cfg.Style())

	return Model{
		sess:     sess,
		mode:     ModeNavigate,
		animated: cfg.Animation.Enabled,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}, nil
}

// Controller returns the navigation controller driven by the model.
func (m Model) Controller() *nav.Controller {
	return m.sess.ctrl
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// frameMsg advances the animator by one frame interval.
type frameMsg time.Time

// configReloadedMsg carries a configuration picked up by the watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

func (m Model) frameInterval() time.Duration {
	if d := m.sess.cfg.Animation.FrameInterval.Duration(); d > 0 {
		return d
	}
	return config.DefaultFrameInterval
}

// tick schedules the next frame if an animation is running and no frame
// is already pending.
func (m Model) tick() tea.Cmd {
	if m.sess.ticking || !m.sess.animator.Active() {
		return nil
	}
	m.sess.ticking = true
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.sess.ticking = false
		m.sess.animator.Advance(m.frameInterval())
		return m, m.tick()

	case configReloadedMsg:
		return m.applyConfig(msg.cfg)

	case logLine:
		m.sess.record("%s", string(msg))
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// applyConfig takes over animation settings from a reloaded config. The
// transition style is fixed at construction.
func (m Model) applyConfig(cfg *config.Config) (tea.Model, tea.Cmd) {
	old := m.sess.cfg
	cfg.Demo = old.Demo
	m.sess.cfg = cfg
	m.animated = cfg.Animation.Enabled

	text := "Config reloaded"
	if cfg.Style() != m.sess.ctrl.Style() {
		text = "Config reloaded; style change applies on restart"
	}
	m.sess.record("config reloaded")
	return m, status(text, false)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeNavigate
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeNavigate
		}
		return m, nil
	}

	return m.handleNavigateKey(msg)
}

// handleNavigateKey maps keys to controller operations.
func (m Model) handleNavigateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.sess.ctrl

	switch {
	case key.Matches(msg, m.keys.ToggleAnimation):
		m.animated = !m.animated
		if m.animated {
			return m, status("Animation on", false)
		}
		return m, status("Animation off", false)

	case key.Matches(msg, m.keys.Interrupt):
		if !m.sess.animator.Active() {
			return m, nil
		}
		m.sess.animator.Interrupt()
		m.sess.record("interrupted")
		return m, nil

	case key.Matches(msg, m.keys.Modal):
		if c.Modal() != nil {
			c.DismissModal()
			return m, nil
		}
		s := m.firstOffStack()
		if s == nil || !c.PresentModal(s) {
			return m, status("No screen available to present", true)
		}
		return m, nil
	}

	if !m.isNavigationKey(msg) {
		return m, nil
	}

	// Strict controllers panic on overlap, so keep the user out of it.
	if m.sess.cfg.Navigation.Strict && c.IsTransitioning() {
		return m, status("Busy: "+c.State().String(), true)
	}

	switch {
	case key.Matches(msg, m.keys.Push):
		next := m.nextScreen()
		if next == nil {
			return m, status("No more screens to push", true)
		}
		c.Push(next, m.animated)

	case key.Matches(msg, m.keys.Pop):
		c.Pop(m.animated)

	case key.Matches(msg, m.keys.Root):
		c.PopToRoot(m.animated)

	case key.Matches(msg, m.keys.SetStack):
		c.SetStack(m.replacementStack(), m.animated)

	case key.Matches(msg, m.keys.Back):
		c.Bar().TapBack()

	case key.Matches(msg, m.keys.ToggleBar):
		c.SetBarHidden(!c.BarHidden(), m.animated)
	}

	return m, m.tick()
}

func (m Model) isNavigationKey(msg tea.KeyMsg) bool {
	return key.Matches(msg,
		m.keys.Push, m.keys.Pop, m.keys.Root, m.keys.SetStack, m.keys.Back, m.keys.ToggleBar)
}

// nextScreen returns the first configured screen after the current top
// that is neither on the stack nor presented.
func (m Model) nextScreen() screen.Screen {
	c := m.sess.ctrl
	stack := c.Screens()
	start := 0
	for i, s := range m.sess.screens {
		if screen.Screen(s) == c.Top() {
			start = i + 1
			break
		}
	}
	for i := 0; i < len(m.sess.screens); i++ {
		s := m.sess.screens[(start+i)%len(m.sess.screens)]
		if !screen.Contains(stack, s) && screen.Screen(s) != c.Modal() {
			return s
		}
	}
	return nil
}

// firstOffStack returns the first configured screen not on the stack.
func (m Model) firstOffStack() screen.Screen {
	stack := m.sess.ctrl.Screens()
	for _, s := range m.sess.screens {
		if !screen.Contains(stack, s) {
			return s
		}
	}
	return nil
}

// replacementStack alternates between every configured screen and the
// first two, which shows both push-style and pop-style replacement.
func (m Model) replacementStack() []screen.Screen {
	all := make([]screen.Screen, 0, len(m.sess.screens))
	for _, s := range m.sess.screens {
		if screen.Screen(s) == m.sess.ctrl.Modal() {
			continue
		}
		all = append(all, s)
	}
	if len(all) > 2 && screen.Top(all) == m.sess.ctrl.Top() {
		return all[:2]
	}
	return all
}

func animatedSuffix(animated bool) string {
	if animated {
		return " (animated)"
	}
	return ""
}
