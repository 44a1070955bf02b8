package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// logLine is a log record forwarded into the event log from outside
// Update, e.g. by the config watcher.
type logLine string

// eventLogHandler renders slog records as single event-log lines so
// nothing is written to the terminal while the alternate screen is up.
type eventLogHandler struct {
	emit   func(string)
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func newEventLogHandler(level slog.Leveler, emit func(string)) *eventLogHandler {
	return &eventLogHandler{emit: emit, level: level}
}

func (h *eventLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *eventLogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(strings.ToLower(r.Level.String()))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value.Resolve())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s=%s", h.prefix, a.Key, a.Value.Resolve())
		return true
	})

	h.emit(b.String())
	return nil
}

func (h *eventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *eventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
