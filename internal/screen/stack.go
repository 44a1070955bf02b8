package screen

import "reflect"

// Comparable reports whether s is non-nil and usable as an identity key.
// Value types holding a slice, such as a struct embedding Chrome, are not.
func Comparable(s Screen) bool {
	return s != nil && reflect.TypeOf(s).Comparable()
}

// IndexOf returns the position of s in screens by identity, or -1. A
// screen that cannot be compared is never found.
func IndexOf(screens []Screen, s Screen) int {
	if !Comparable(s) {
		return -1
	}
	for i, candidate := range screens {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Contains reports whether s is present in screens by identity.
func Contains(screens []Screen, s Screen) bool {
	return IndexOf(screens, s) >= 0
}

// Unique reports whether every entry is comparable and none appears twice.
func Unique(screens []Screen) bool {
	seen := make(map[Screen]struct{}, len(screens))
	for _, s := range screens {
		if !Comparable(s) {
			return false
		}
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
	}
	return true
}

// Top returns the last screen, or nil for an empty slice.
func Top(screens []Screen) Screen {
	if len(screens) == 0 {
		return nil
	}
	return screens[len(screens)-1]
}

// Below returns the screen directly beneath the top, or nil.
func Below(screens []Screen) Screen {
	if len(screens) < 2 {
		return nil
	}
	return screens[len(screens)-2]
}

// Reversed returns a copy of screens in reverse order.
func Reversed(screens []Screen) []Screen {
	out := make([]Screen, len(screens))
	for i, s := range screens {
		out[len(screens)-1-i] = s
	}
	return out
}
