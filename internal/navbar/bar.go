// Package navbar mirrors the top screen's chrome into the navigation bar
// and holds the bar's authoritative visibility state.
package navbar

import (
	"github.com/jmylchreest/navstack/internal/screen"
)

// DefaultBackLabel is shown when the previous screen has neither a back
// label nor a title.
const DefaultBackLabel = "Back"

// State is the rendered bar content.
type State struct {
	Title     string
	BackLabel string // Empty when there is nothing to go back to
	Items     []string
	Hidden    bool
}

// HasBack reports whether a back button should be drawn.
func (s State) HasBack() bool {
	return s.BackLabel != ""
}

// Bar tracks chrome and visibility. Back taps are forwarded to the
// handler set with OnBack.
type Bar struct {
	state  State
	onBack func()
	syncs  int
}

// New creates a visible, empty bar.
func New() *Bar {
	return &Bar{}
}

// Hidden returns the authoritative visibility flag.
func (b *Bar) Hidden() bool {
	return b.state.Hidden
}

// SetHidden records the visibility flag and reports whether it changed.
func (b *Bar) SetHidden(hidden bool) bool {
	if b.state.Hidden == hidden {
		return false
	}
	b.state.Hidden = hidden
	return true
}

// Sync re-renders chrome for top, using previous (the screen beneath top,
// may be nil) for the back label.
func (b *Bar) Sync(top, previous screen.Screen) {
	b.syncs++

	if top == nil {
		b.state.Title = ""
		b.state.BackLabel = ""
		b.state.Items = nil
		return
	}

	b.state.Title = top.Title()
	b.state.Items = append([]string(nil), top.Chrome().Items...)
	b.state.BackLabel = backLabelFor(previous)
}

func backLabelFor(previous screen.Screen) string {
	if previous == nil {
		return ""
	}
	if label := previous.Chrome().BackLabel; label != "" {
		return label
	}
	if title := previous.Title(); title != "" {
		return title
	}
	return DefaultBackLabel
}

// State returns a copy of the rendered state.
func (b *Bar) State() State {
	s := b.state
	s.Items = append([]string(nil), b.state.Items...)
	return s
}

// SyncCount returns how many times Sync has run.
func (b *Bar) SyncCount() int {
	return b.syncs
}

// OnBack sets the handler invoked by TapBack.
func (b *Bar) OnBack(fn func()) {
	b.onBack = fn
}

// TapBack forwards a back-button tap. It does nothing when there is no
// back button or no handler.
func (b *Bar) TapBack() {
	if !b.state.HasBack() || b.onBack == nil {
		return
	}
	b.onBack()
}
