// Package throttle paces outbound messages per chat so a long response does
// not trip the service's flood limits.
package throttle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (a chat or channel id)
type Limiter struct {
	limit   rate.Limit
	burst   int
	entries sync.Map // map[string]*entry
	now     func() time.Time
}

type entry struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastUsed time.Time
}

// New allows perSecond messages per key with the given burst
func New(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit: rate.Limit(perSecond),
		burst: burst,
		now:   time.Now,
	}
}

func (l *Limiter) get(key string) *entry {
	if v, ok := l.entries.Load(key); ok {
		return v.(*entry)
	}
	v, _ := l.entries.LoadOrStore(key, &entry{
		limiter:  rate.NewLimiter(l.limit, l.burst),
		lastUsed: l.now(),
	})
	return v.(*entry)
}

// Wait blocks until key may send again or ctx is done. A nil Limiter never
// blocks.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}
	e := l.get(key)
	e.mu.Lock()
	e.lastUsed = l.now()
	e.mu.Unlock()
	return e.limiter.Wait(ctx)
}

// Allow reports whether key may send right now without waiting
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	e := l.get(key)
	e.mu.Lock()
	e.lastUsed = l.now()
	e.mu.Unlock()
	return e.limiter.Allow()
}

// Cleanup drops keys idle for longer than maxAge and returns how many
func (l *Limiter) Cleanup(maxAge time.Duration) int {
	if l == nil {
		return 0
	}
	cutoff := l.now().Add(-maxAge)
	removed := 0
	l.entries.Range(func(k, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			l.entries.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	n := 0
	l.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RunCleanup calls Cleanup every interval until ctx is cancelled
func (l *Limiter) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup(maxAge)
		}
	}
}
