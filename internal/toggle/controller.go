package toggle

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet window a toggle must survive before committing.
const DefaultDelay = 500 * time.Millisecond

// Controller gives a boolean action button zero-latency visual state while
// rate-limiting the actual network write. Every Toggle flips the displayed
// state synchronously; once the state has been stable for the delay window,
// the commit callback fires exactly once with the final state, and only if
// that state differs from the last known server truth. Toggling back to the
// server state before the window elapses cancels the pending commit.
type Controller struct {
	mu     sync.Mutex
	state  bool
	server bool
	delay  time.Duration
	timer  *time.Timer
	commit func(bool)
	closed bool
}

// New builds a controller around the server truth. commit runs on the timer
// goroutine and carries no network awareness of its own.
func New(initial bool, delay time.Duration, commit func(bool)) *Controller {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Controller{
		state:  initial,
		server: initial,
		delay:  delay,
		commit: commit,
	}
}

// State returns the currently displayed optimistic state.
func (c *Controller) State() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Toggle flips the displayed state and re-arms the debounce window.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state = !c.state

	if c.timer != nil {
		c.timer.Stop()
	}

	c.timer = time.AfterFunc(c.delay, c.fire)
}

// SetServerState resynchronizes to externally confirmed truth, discarding any
// pending uncommitted toggle.
func (c *Controller) SetServerState(state bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.server = state
	c.state = state

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Close stops the pending timer; no commit fires afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fire() {
	c.mu.Lock()

	if c.closed || c.state == c.server {
		c.mu.Unlock()
		return
	}

	final := c.state
	c.server = final
	c.timer = nil
	commit := c.commit

	c.mu.Unlock()

	if commit != nil {
		commit(final)
	}
}
