// Package model defines the records navstack reports about a navigation
// session.
package model

import (
	"fmt"
	"time"
)

// EventKind classifies a trace event.
type EventKind string

const (
	EventWillShow   EventKind = "will_show"
	EventDidShow    EventKind = "did_show"
	EventTransition EventKind = "transition"
	EventStep       EventKind = "step"
)

// Event is one entry in a navigation trace.
type Event struct {
	Seq       int       `json:"seq" yaml:"seq"`
	Step      int       `json:"step" yaml:"step"` // 0 = construction
	Kind      EventKind `json:"kind" yaml:"kind"`
	Screen    string    `json:"screen,omitempty" yaml:"screen,omitempty"`
	Animated  bool      `json:"animated" yaml:"animated"`
	Direction string    `json:"direction,omitempty" yaml:"direction,omitempty"`
	Detail    string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	AtMillis  int64     `json:"at_ms" yaml:"at_ms"` // Virtual clock
}

// At returns the event's virtual timestamp.
func (e Event) At() time.Duration {
	return time.Duration(e.AtMillis) * time.Millisecond
}

// String returns a compact one-line rendering.
func (e Event) String() string {
	s := fmt.Sprintf("%s %s", e.Kind, e.Screen)
	if e.Direction != "" {
		s += " " + e.Direction
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}
