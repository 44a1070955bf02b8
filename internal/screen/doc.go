// Package screen defines the navigable unit managed by the navigation
// controller, its chrome descriptor, and the identity rules used when
// diffing stacks of screens.
package screen
