package screen

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Chrome describes how the bar should look while a screen is on top.
// The zero value means "title only, default back label".
type Chrome struct {
	BackLabel string   // Label shown on the next screen's back button (empty = use title)
	Items     []string // Custom bar items, rendered right-aligned
}

// Screen is a unit of navigable content. Identity is interface equality,
// so implementations must be comparable; use pointer types. Screens whose
// dynamic type is not comparable are treated as absent by the helpers in
// this package and refused by the controller.
type Screen interface {
	Title() string
	Chrome() Chrome
}

// Basic is a plain Screen carrying a title, chrome, and a ULID for logs.
type Basic struct {
	id     string
	title  string
	chrome Chrome
}

// New creates a Basic screen with a freshly generated ULID.
func New(title string, chrome Chrome) (*Basic, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Basic{
		id:     id.String(),
		title:  title,
		chrome: chrome,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(title string, chrome Chrome) *Basic {
	s, err := New(title, chrome)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the screen's ULID.
func (s *Basic) ID() string {
	return s.id
}

// Title returns the screen title.
func (s *Basic) Title() string {
	return s.title
}

// Chrome returns the screen's chrome descriptor.
func (s *Basic) Chrome() Chrome {
	return s.chrome
}

// SetTitle changes the title. The bar picks it up on the next sync.
func (s *Basic) SetTitle(title string) {
	s.title = title
}

// String implements fmt.Stringer.
func (s *Basic) String() string {
	return s.title + " (" + s.id + ")"
}

// Identifier is implemented by screens that expose a stable ID.
type Identifier interface {
	ID() string
}

// Label returns a short log-friendly name for a screen.
func Label(s Screen) string {
	if s == nil {
		return ""
	}
	if idr, ok := s.(Identifier); ok {
		return s.Title() + "#" + idr.ID()
	}
	return s.Title()
}
