package commands

import (
	"sync"
	"time"
)

// Cooldown caps how many times a command may run per fixed window. The
// window starts on the first use after the previous one expired; it does
// not slide.
type Cooldown struct {
	mu          sync.Mutex
	limit       int
	interval    time.Duration
	uses        int
	windowStart time.Time
}

// NewCooldown allows limit uses per interval. A limit of 1 or less disables
// limiting.
func NewCooldown(limit int, interval time.Duration) *Cooldown {
	return &Cooldown{limit: limit, interval: interval}
}

// Limit returns the configured uses per window and the window width.
func (c *Cooldown) Limit() (int, time.Duration) {
	if c == nil {
		return 0, 0
	}
	return c.limit, c.interval
}

// Allow records an invocation attempt at now. It returns a *CooldownError
// when the window is already full.
func (c *Cooldown) Allow(now time.Time) error {
	if c == nil || c.limit <= 1 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := now.Sub(c.windowStart)
	switch {
	case c.windowStart.IsZero() || elapsed >= c.interval:
		c.uses = 1
		c.windowStart = now
		return nil
	case c.uses >= c.limit:
		return &CooldownError{RetryAfter: c.interval - elapsed}
	default:
		c.uses++
		return nil
	}
}

// Reset clears the counters.
func (c *Cooldown) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uses = 0
	c.windowStart = time.Time{}
	c.mu.Unlock()
}
