package transition

import (
	"sync"

	"go.uber.org/atomic"
)

// Completion is a one-shot future for a running transition.
// It resolves exactly once; later Resolve calls are ignored.
type Completion struct {
	resolved *atomic.Bool
	finished *atomic.Bool

	mu   sync.Mutex
	then []func(finished bool)
	done chan struct{}
}

// NewCompletion returns an unresolved Completion.
func NewCompletion() *Completion {
	return &Completion{
		resolved: atomic.NewBool(false),
		finished: atomic.NewBool(false),
		done:     make(chan struct{}),
	}
}

// Resolved returns a Completion already resolved with finished.
func Resolved(finished bool) *Completion {
	c := NewCompletion()
	c.Resolve(finished)
	return c
}

// Resolve settles the completion and runs registered continuations on the
// calling goroutine. Returns false if it was already resolved.
func (c *Completion) Resolve(finished bool) bool {
	c.mu.Lock()
	if !c.resolved.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return false
	}
	c.finished.Store(finished)
	callbacks := c.then
	c.then = nil
	close(c.done)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(finished)
	}
	return true
}

// Then registers fn to run when the completion resolves. If it already
// has, fn runs immediately.
func (c *Completion) Then(fn func(finished bool)) {
	c.mu.Lock()
	if !c.resolved.Load() {
		c.then = append(c.then, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn(c.finished.Load())
}

// Done is closed once the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// IsResolved reports whether Resolve has been called.
func (c *Completion) IsResolved() bool {
	return c.resolved.Load()
}

// Finished reports whether the transition ran to the end. Only meaningful
// after resolution.
func (c *Completion) Finished() bool {
	return c.finished.Load()
}
