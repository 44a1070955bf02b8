package transition

import (
	"fmt"
	"strings"
	"time"
)

// Fixed durations per transition class.
const (
	// TransitionDuration is the screen slide duration.
	TransitionDuration = 350 * time.Millisecond
	// BarDuration is the bar show/hide duration.
	BarDuration = 200 * time.Millisecond
)

// Direction is the edge an incoming visual enters from.
type Direction int

const (
	FromRight Direction = iota
	FromLeft
	FromTop
	FromBottom
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	switch d {
	case FromRight:
		return "from_right"
	case FromLeft:
		return "from_left"
	case FromTop:
		return "from_top"
	case FromBottom:
		return "from_bottom"
	default:
		return "unknown"
	}
}

// Vertical reports whether the direction moves along the y axis.
func (d Direction) Vertical() bool {
	return d == FromTop || d == FromBottom
}

// Opposite returns the edge the outgoing visual exits toward.
func (d Direction) Opposite() Direction {
	switch d {
	case FromRight:
		return FromLeft
	case FromLeft:
		return FromRight
	case FromTop:
		return FromBottom
	default:
		return FromTop
	}
}

// sign is +1 when the incoming visual starts on the positive side of its
// axis (right or bottom), -1 otherwise.
func (d Direction) sign() float64 {
	if d == FromRight || d == FromBottom {
		return 1
	}
	return -1
}

// Style selects how the engine composes outgoing and incoming visuals.
type Style int

const (
	// StyleDefault slides both visuals together.
	StyleDefault Style = iota
	// StyleStack keeps the lower screen of the pair in place.
	StyleStack
)

// String returns the string representation of Style.
func (s Style) String() string {
	switch s {
	case StyleStack:
		return "stack"
	default:
		return "default"
	}
}

// ParseStyle parses "default" or "stack" (case-insensitive).
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return StyleDefault, nil
	case "stack":
		return StyleStack, nil
	default:
		return StyleDefault, fmt.Errorf("unknown transition style %q", s)
	}
}
