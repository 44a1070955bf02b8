package nav

import (
	"log/slog"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/navbar"
	"github.com/jmylchreest/navstack/internal/transition"
)

// Option configures a Controller.
type Option func(*Controller)

// WithEngine sets the transition engine. Defaults to transition.Instant.
func WithEngine(e transition.Engine) Option {
	return func(c *Controller) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithStyle sets how the engine composes outgoing and incoming screens.
func WithStyle(s transition.Style) Option {
	return func(c *Controller) {
		c.style = s
	}
}

// WithDelegate sets the delegate. It must be supplied here to observe the
// root's DidShow emitted during construction.
func WithDelegate(d Delegate) Option {
	return func(c *Controller) {
		c.delegate = d
	}
}

// WithBar supplies the bar to keep in sync. Defaults to a fresh bar.
func WithBar(b *navbar.Bar) Option {
	return func(c *Controller) {
		if b != nil {
			c.bar = b
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder. nil disables metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = r
	}
}

// WithStrict makes precondition violations (mutating while a transition is
// in flight) panic instead of being logged and ignored.
func WithStrict(strict bool) Option {
	return func(c *Controller) {
		c.strict = strict
	}
}
