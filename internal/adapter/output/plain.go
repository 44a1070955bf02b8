package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/navstack/internal/model"
)

// PlainFormatter formats events as plain text, one per line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes events as plain text.
func (f *PlainFormatter) Format(w io.Writer, events []model.Event) error {
	for _, e := range f.opts.filter(events) {
		if err := f.formatEvent(w, &e); err != nil {
			return err
		}
	}
	return nil
}

// formatEvent formats a single event.
func (f *PlainFormatter) formatEvent(w io.Writer, e *model.Event) error {
	if f.template != nil {
		data := templateData{
			Event:   e,
			Elapsed: elapsed(e.AtMillis),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowTime {
		sb.WriteString(fmt.Sprintf("%8s ", elapsed(e.AtMillis)))
	}
	if f.opts.ShowStep {
		sb.WriteString(fmt.Sprintf("#%-3d ", e.Step))
	}

	sb.WriteString(fmt.Sprintf("%-10s", e.Kind))

	switch e.Kind {
	case model.EventStep:
		sb.WriteString(" " + e.Detail)
	case model.EventTransition:
		sb.WriteString(" " + e.Direction)
		if e.Detail != "" {
			sb.WriteString(" " + e.Detail)
		}
	default:
		sb.WriteString(" " + e.Screen)
		if e.Animated {
			sb.WriteString(" (animated)")
		}
	}

	sb.WriteString("\n")
	_, err := w.Write([]byte(sb.String()))
	return err
}

// templateData provides data for custom templates.
type templateData struct {
	Event   *model.Event
	Elapsed string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"pad": func(width int, s string) string {
			return fmt.Sprintf("%-*s", width, s)
		},
		"ordinal": func(n int) string {
			return humanize.Ordinal(n)
		},
	}
}

// elapsed renders a virtual timestamp with thousands separators.
func elapsed(ms int64) string {
	return "+" + humanize.Comma(ms) + "ms"
}
