package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/navstack/internal/model"
)

// JSONFormatter formats events as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes events as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, events []model.Event) error {
	events = f.opts.filter(events)
	if events == nil {
		events = []model.Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

// FormatSingle writes a single event as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, e *model.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(e)
}
