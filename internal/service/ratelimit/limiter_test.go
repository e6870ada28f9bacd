package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	now := time.Date(2022, 5, 12, 10, 0, 0, 0, time.UTC)
	l := New(2, 6)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(10 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "refill is capped at capacity")
}

func TestAllow_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2022, 5, 12, 10, 0, 0, 0, time.UTC)
	l := New(2, 6)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.True(t, l.Allow("b"))
	assert.Len(t, l.m, 2)

	// 15s later "a" (one token short) is full again, "b" (two short) is not
	now = now.Add(15 * time.Second)
	l.lastSweep = now.Add(-sweepEvery)
	assert.True(t, l.Allow("c"))
	assert.NotContains(t, l.m, "a")
	assert.Contains(t, l.m, "b")
	assert.Contains(t, l.m, "c")

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("d"))
	assert.Len(t, l.m, 1)
}
