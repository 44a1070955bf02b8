// Package script loads YAML navigation scripts and runs them headlessly
// against a navigation controller, producing an event trace.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/navstack/internal/config"
	"github.com/jmylchreest/navstack/internal/transition"
)

// Operation names accepted in a script step.
const (
	OpPush      = "push"
	OpPop       = "pop"
	OpPopTo     = "pop_to"
	OpPopToRoot = "pop_to_root"
	OpSetStack  = "set_stack"
	OpBarHidden = "bar_hidden"
	OpPresent   = "present"
	OpDismiss   = "dismiss"
	OpBack      = "back"
)

// Validation errors.
var (
	ErrNoScreens     = errors.New("script defines no screens")
	ErrUnknownScreen = errors.New("unknown screen")
	ErrUnknownOp     = errors.New("unknown operation")
	ErrMissingScreen = errors.New("operation requires a screen")
)

// Script is a navigation session description.
type Script struct {
	Style   string                `yaml:"style,omitempty"`
	Screens []config.ScreenConfig `yaml:"screens"`
	Root    string                `yaml:"root,omitempty"` // Defaults to the first screen
	Steps   []Step                `yaml:"steps"`
}

// Step is one controller call.
type Step struct {
	Op       string   `yaml:"op"`
	Screen   string   `yaml:"screen,omitempty"`
	Screens  []string `yaml:"screens,omitempty"`
	Animated *bool    `yaml:"animated,omitempty"` // nil = animated
	Hidden   bool     `yaml:"hidden,omitempty"`

	// Hold leaves the step's transition running so the next step
	// observes it in flight.
	Hold bool `yaml:"hold,omitempty"`
	// Interrupt cuts the step's transition short instead of letting it
	// finish.
	Interrupt bool `yaml:"interrupt,omitempty"`
}

// IsAnimated resolves the step's animated flag.
func (s Step) IsAnimated() bool {
	return s.Animated == nil || *s.Animated
}

// Load parses a script from r and validates it.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile parses and validates the script at path.
func LoadFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// Validate checks screen references and operation names.
func (s *Script) Validate() error {
	if len(s.Screens) == 0 {
		return ErrNoScreens
	}
	if _, err := transition.ParseStyle(s.Style); err != nil {
		return err
	}

	ids := make(map[string]bool, len(s.Screens))
	for _, sc := range s.Screens {
		if sc.ID == "" {
			return fmt.Errorf("screen with title %q: %w", sc.Title, ErrMissingScreen)
		}
		if ids[sc.ID] {
			return fmt.Errorf("duplicate screen id %q", sc.ID)
		}
		ids[sc.ID] = true
	}

	if s.Root != "" && !ids[s.Root] {
		return fmt.Errorf("root %q: %w", s.Root, ErrUnknownScreen)
	}

	for i, step := range s.Steps {
		if err := step.validate(ids); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func (s Step) validate(ids map[string]bool) error {
	switch s.Op {
	case OpPush, OpPopTo, OpPresent:
		if s.Screen == "" {
			return ErrMissingScreen
		}
		if !ids[s.Screen] {
			return fmt.Errorf("%q: %w", s.Screen, ErrUnknownScreen)
		}
	case OpSetStack:
		for _, id := range s.Screens {
			if !ids[id] {
				return fmt.Errorf("%q: %w", id, ErrUnknownScreen)
			}
		}
	case OpPop, OpPopToRoot, OpBarHidden, OpDismiss, OpBack:
	default:
		return ErrUnknownOp
	}
	return nil
}

// RootID returns the root screen id.
func (s *Script) RootID() string {
	if s.Root != "" {
		return s.Root
	}
	return s.Screens[0].ID
}
