package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/resilience"
)

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate allowed per key. Zero disables
	// the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	// KeyFunc extracts the rate limit key from a request. Defaults to the
	// remote IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// idleEviction is how long an unused per-key bucket is kept.
const idleEviction = 10 * time.Minute

// RateLimit returns middleware applying a token bucket per key. Rejected
// requests get 429 RATE_LIMITED.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	rl := &keyedLimiter{cfg: cfg, buckets: make(map[string]*bucket), now: time.Now}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(cfg.KeyFunc(r)) {
				writeError(w, errors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPBasedKey returns the remote IP of r.
func IPBasedKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type bucket struct {
	limiter  *resilience.RateLimiter
	lastSeen time.Time
}

type keyedLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	now := k.now()
	if now.Sub(k.lastSweep) > idleEviction {
		for id, b := range k.buckets {
			if now.Sub(b.lastSeen) > idleEviction {
				delete(k.buckets, id)
			}
		}
		k.lastSweep = now
	}
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  key,
			Rate:  k.cfg.RequestsPerSecond,
			Burst: k.cfg.Burst,
		})}
		k.buckets[key] = b
	}
	b.lastSeen = now
	k.mu.Unlock()

	return b.limiter.Allow()
}
