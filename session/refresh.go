package session

import (
	"context"
	"sync"
)

type refreshOutcome struct {
	token string
	err   error
}

// Coordinator serializes token refreshes. However many callers discover an
// expiring token concurrently, exactly one refresh call goes out; everyone
// else parks in a FIFO queue and receives the outcome of that single call.
// Each waiter gets the exact token value from its own cycle rather than
// re-reading session state that may have moved on.
type Coordinator struct {
	perform func(ctx context.Context) (string, error)

	mu       sync.Mutex
	inFlight bool
	waiters  []chan refreshOutcome
}

// NewCoordinator creates a Coordinator around the function that performs the
// actual refresh call and commits (or clears) the session.
func NewCoordinator(perform func(ctx context.Context) (string, error)) *Coordinator {
	return &Coordinator{perform: perform}
}

// Refresh returns the new access token once the current cycle completes,
// starting one if none is in flight. All callers of the same cycle resolve
// with the same token or the same error.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.inFlight {
		waiter := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()

		select {
		case outcome := <-waiter:
			return outcome.token, outcome.err
		case <-ctx.Done():
			// The cycle keeps running for the other waiters; only this
			// caller gives up.
			return "", ctx.Err()
		}
	}
	c.inFlight = true
	c.mu.Unlock()

	newToken, err := c.perform(ctx)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.inFlight = false
	c.mu.Unlock()

	outcome := refreshOutcome{token: newToken, err: err}
	for _, waiter := range waiters {
		waiter <- outcome
	}
	return newToken, err
}

// InFlight reports whether a refresh cycle is currently running.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
