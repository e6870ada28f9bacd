// Package ratelimit is a keyed token bucket used to throttle report requests.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter keeps one bucket per key, all sharing the same capacity and refill rate.
type Limiter struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	m          map[string]*bucket
	now        func() time.Time
	lastSweep  time.Time
}

// sweepEvery is how often Allow drops buckets that have refilled completely.
const sweepEvery = time.Minute

// New allows bursts of capacity and refills perMinute tokens every minute.
func New(capacity int, perMinute float64) *Limiter {
	return &Limiter{
		capacity:   float64(capacity),
		refillRate: perMinute / 60,
		m:          make(map[string]*bucket),
		now:        time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepEvery {
		l.sweep(now)
		l.lastSweep = now
	}

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep removes buckets that would be full by now; they are indistinguishable
// from a fresh bucket.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.m {
		if b.tokens+now.Sub(b.last).Seconds()*l.refillRate >= l.capacity {
			delete(l.m, k)
		}
	}
}
