package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/navstack/internal/config"
	"github.com/jmylchreest/navstack/internal/metrics"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Path to watch for changes (empty = no watching)
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := New(Options{
		Config:  opts.Config,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// The watcher logs from its own goroutine; route it through the
	// program so it lands in the event log instead of on the terminal.
	watchLogger := slog.New(newEventLogHandler(slog.LevelInfo, func(line string) {
		p.Send(logLine(line))
	}))

	// Start config watcher if a path was provided
	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, watchLogger, func(cfg *config.Config) {
			p.Send(configReloadedMsg{cfg: cfg})
		})
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			if err := watcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
			defer watcher.Stop()
		}
	}

	_, err = p.Run()
	return err
}
