package resilience

import (
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen allows limited requests to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the store while the circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this circuit breaker in logs.
	Name string `yaml:"-" mapstructure:"-"`
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// HalfOpenMaxCalls is the number of probe calls allowed while half-open.
	HalfOpenMaxCalls int `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls"`
	// IsFailure decides which errors count against the circuit. Nil counts
	// every non-nil error.
	IsFailure func(error) bool `yaml:"-" mapstructure:"-"`
	// OnStateChange is called when state changes, with the lock held.
	OnStateChange func(name string, from, to State) `yaml:"-" mapstructure:"-"`
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker fails fast while the store is unreachable.
//
// Closed passes every call and counts consecutive failures. At MaxFailures
// it opens and rejects calls with ErrCircuitOpen. Once Timeout has passed
// since the last failure it lets HalfOpenMaxCalls probes through; that many
// successes close it and any failure opens it again.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	lastFail time.Time
	probes   int
	probesOK int
}

// NewCircuitBreaker creates a closed circuit breaker. Non-positive limits
// take the DefaultCircuitBreakerConfig values.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig(config.Name)
	if config.MaxFailures <= 0 {
		config.MaxFailures = def.MaxFailures
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Execute runs fn unless the circuit rejects the call. fn's error is
// returned unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allowRequest() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err != nil && (cb.config.IsFailure == nil || cb.config.IsFailure(err)))
	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.refresh()
}

// Failures returns the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset forces the circuit closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
	cb.failures = 0
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.refresh() {
	case StateClosed:
		return true
	case StateHalfOpen:
		if cb.probes >= cb.config.HalfOpenMaxCalls {
			return false
		}
		cb.probes++
		return true
	}
	return false
}

func (cb *CircuitBreaker) record(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.refresh()
	if !failed {
		if state == StateHalfOpen {
			cb.probesOK++
			if cb.probesOK >= cb.config.HalfOpenMaxCalls {
				cb.transition(StateClosed)
			}
		}
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFail = cb.now()
	if state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
		cb.transition(StateOpen)
	}
}

// refresh moves an open circuit whose timeout has passed to half-open.
// Callers hold mu.
func (cb *CircuitBreaker) refresh() State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFail) >= cb.config.Timeout {
		cb.transition(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state, cb.probes, cb.probesOK = to, 0, 0
	if to == StateClosed {
		cb.failures = 0
	}
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}
