package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowPerKey(t *testing.T) {
	l := New(1, 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")

	assert.True(t, l.Allow("b"), "keys are independent")
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "chat"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "chat"))
}

func TestLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(10, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("fresh")

	assert.Equal(t, 1, l.Cleanup(30*time.Minute))
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_Nil(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background(), "x"))
	assert.True(t, l.Allow("x"))
	assert.Zero(t, l.Cleanup(time.Second))
}
