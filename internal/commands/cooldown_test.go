package commands

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldown_FixedWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCooldown(2, 10*time.Second)

	require.NoError(t, c.Allow(start))
	require.NoError(t, c.Allow(start.Add(1*time.Second)))

	err := c.Allow(start.Add(2 * time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOnCooldown))

	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 8*time.Second, cd.RetryAfter)

	// The window is measured from its first use, not from the last one.
	assert.NoError(t, c.Allow(start.Add(10*time.Second)))
}

func TestCooldown_Disabled(t *testing.T) {
	now := time.Now()
	for _, limit := range []int{0, 1} {
		c := NewCooldown(limit, time.Hour)
		for i := 0; i < 5; i++ {
			assert.NoError(t, c.Allow(now))
		}
	}

	var none *Cooldown
	assert.NoError(t, none.Allow(now))
	limit, interval := none.Limit()
	assert.Zero(t, limit)
	assert.Zero(t, interval)
}

func TestCooldown_Reset(t *testing.T) {
	now := time.Now()
	c := NewCooldown(2, time.Minute)
	require.NoError(t, c.Allow(now))
	require.NoError(t, c.Allow(now))
	require.Error(t, c.Allow(now))

	c.Reset()
	assert.NoError(t, c.Allow(now))
}

func TestCooldown_Concurrent(t *testing.T) {
	now := time.Now()
	c := NewCooldown(10, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Allow(now) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
