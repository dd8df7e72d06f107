package handlers

import (
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter keyed by the
// stable user id, so one hammering player cannot starve the others
type RateLimiter struct {
	players map[int64]*bucket
	mu      sync.Mutex
	rate    int           // requests per window
	window  time.Duration // time window
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
// rate: number of requests allowed per window
// window: time window for rate limiting
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		players: make(map[int64]*bucket),
		rate:    rate,
		window:  window,
	}
	// Start cleanup goroutine
	go rl.cleanupPlayers()
	return rl
}

// Allow checks if a request from a user should be allowed
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	b, exists := rl.players[userID]
	if !exists {
		b = &bucket{
			tokens:     rl.rate,
			lastRefill: time.Now(),
		}
		rl.players[userID] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill tokens based on time passed
	now := time.Now()
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// cleanupPlayers removes stale buckets to prevent memory leaks
func (rl *RateLimiter) cleanupPlayers() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for userID, b := range rl.players {
			b.mu.Lock()
			if now.Sub(b.lastRefill) > rl.window*2 {
				delete(rl.players, userID)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}
