package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 10, Burst: 3})
	rl.now = clock.now
	rl.lastRefill = clock.t

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if rl.Allow() {
		t.Fatal("request beyond burst should be limited")
	}

	clock.advance(100 * time.Millisecond)
	if !rl.Allow() {
		t.Fatal("one token should refill after 100ms at 10/s")
	}
}

func TestRateLimiter_RefillCapsAtBurst(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 5})
	rl.now = clock.now
	rl.lastRefill = clock.t

	clock.advance(time.Minute)
	if got := rl.Tokens(); got != 5 {
		t.Errorf("expected tokens capped at 5, got %v", got)
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.config.Rate != 1000 || rl.config.Burst != 1000 {
		t.Errorf("unexpected defaults %+v", rl.config)
	}
}
