package nav

import (
	"errors"

	"github.com/jmylchreest/navstack/internal/screen"
)

// State is the in-flight transition kind. Only StateIdle accepts new
// transitions.
type State int

const (
	// StateIdle means no transition is running.
	StateIdle State = iota
	// StatePushing means a push transition is running.
	StatePushing
	// StatePopping means a pop, pop-to or pop-to-root transition is running.
	StatePopping
	// StateSettingStack means a whole-stack replacement is running.
	StateSettingStack
	// StateBarShowing means the bar is sliding into view.
	StateBarShowing
	// StateBarHiding means the bar is sliding out of view.
	StateBarHiding
	// StateCustom means a transition started through Transition is running.
	StateCustom
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePushing:
		return "pushing"
	case StatePopping:
		return "popping"
	case StateSettingStack:
		return "setting_stack"
	case StateBarShowing:
		return "bar_showing"
	case StateBarHiding:
		return "bar_hiding"
	case StateCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Errors returned by the controller's advanced surface and constructor.
var (
	ErrNilScreen          = errors.New("screen cannot be nil")
	ErrIncomparableScreen = errors.New("screen type is not comparable")
	ErrTransitionInFlight = errors.New("a transition is already in flight")
)

// Delegate receives show notifications. Both hooks are optional.
// WillShow fires before the visual change starts; DidShow fires after the
// engine reports completion. Pairs never interleave.
type Delegate struct {
	WillShow func(s screen.Screen, animated bool)
	DidShow  func(s screen.Screen, animated bool)
}

func (d Delegate) willShow(s screen.Screen, animated bool) {
	if d.WillShow != nil {
		d.WillShow(s, animated)
	}
}

func (d Delegate) didShow(s screen.Screen, animated bool) {
	if d.DidShow != nil {
		d.DidShow(s, animated)
	}
}
