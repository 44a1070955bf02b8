// Package nav implements the navigation controller: an ordered stack of
// screens, push/pop/replace semantics inferred from stack diffs, a
// single-flight transition guard, bar synchronization, and delegate
// notifications.
//
// The controller is not safe for concurrent use. All calls, and the
// engine's completions, must happen on one goroutine (typically the host
// UI loop).
package nav
