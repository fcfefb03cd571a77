package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies this rate limiter in logs.
	Name string `yaml:"-" mapstructure:"-"`
	// Rate is the number of commands allowed per second.
	Rate float64 `yaml:"rate" mapstructure:"rate"`
	// Burst is the maximum burst size.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// RateLimiter is a token bucket limiting the command rate sent to a store.
type RateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 1000
	}
	if config.Burst <= 0 {
		config.Burst = int(config.Rate)
	}
	if config.Burst < 1 {
		config.Burst = 1
	}
	return &RateLimiter{
		config:     config,
		now:        time.Now,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	return rl.reserve(false) == 0
}

// Wait blocks until a token is available or ctx is done. A token reserved
// by a cancelled wait is not returned to the bucket.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	wait := rl.reserve(true)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reserve takes a token and returns how long the caller must wait for it.
// With borrow false it returns -1 instead of going into debt.
func (rl *RateLimiter) reserve(borrow bool) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}
	if !borrow {
		return -1
	}
	needed := 1 - rl.tokens
	rl.tokens--
	return time.Duration(needed / rl.config.Rate * float64(time.Second))
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}
