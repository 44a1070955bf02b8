// Package transition performs timed slide transitions between two screens
// or two bar visibility states. An Engine runs one Request and hands back a
// Completion that resolves exactly once with whether the slide finished or
// was interrupted. Engines do not enforce single-flight; callers do.
package transition
