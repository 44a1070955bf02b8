// Package output provides output formatters for navigation traces.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/navstack/internal/model"
)

// Formatter formats trace events for output.
type Formatter interface {
	// Format writes formatted events to the writer.
	Format(w io.Writer, events []model.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	switch f := FormatType(strings.ToLower(s)); f {
	case FormatJSON, FormatPlain:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want plain or json)", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template     string // Custom template for plain format
	ShowTime     bool   // Show virtual timestamp
	ShowStep     bool   // Show the script step number
	DelegateOnly bool   // Only will_show/did_show events
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime: true,
		ShowStep: true,
	}
}

// filter applies the options' event selection.
func (o FormatterOptions) filter(events []model.Event) []model.Event {
	if !o.DelegateOnly {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Kind == model.EventWillShow || e.Kind == model.EventDidShow {
			out = append(out, e)
		}
	}
	return out
}
