package routing

import (
	"sync"
	"time"
)

// CircuitBreakerConfig controls when a provider is taken out of rotation
// after repeated failures and when it is given another chance.
type CircuitBreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

// DefaultCircuitBreakerConfig mirrors the teacher's failover defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Second}
}

type breakerState struct {
	failures    int
	openedAt    time.Time
	circuitOpen bool
}

// CircuitBreaker tracks per-provider health: a provider accumulating
// FailureThreshold consecutive failures is excluded from candidate
// selection until OpenTimeout has elapsed since it opened.
type CircuitBreaker struct {
	cfg    CircuitBreakerConfig
	mu     sync.Mutex
	states map[string]*breakerState
}

// NewCircuitBreaker builds a CircuitBreaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, states: make(map[string]*breakerState)}
}

// Allow reports whether name may currently be tried.
func (b *CircuitBreaker) Allow(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[name]
	if !ok || !s.circuitOpen {
		return true
	}
	if time.Since(s.openedAt) > b.cfg.OpenTimeout {
		s.circuitOpen = false
		s.failures = 0
		return true
	}
	return false
}

// RecordSuccess resets name's failure count and closes its circuit.
func (b *CircuitBreaker) RecordSuccess(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[name]; ok {
		s.failures = 0
		s.circuitOpen = false
	}
}

// RecordFailure increments name's failure count, opening its circuit once
// FailureThreshold is reached.
func (b *CircuitBreaker) RecordFailure(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[name]
	if !ok {
		s = &breakerState{}
		b.states[name] = s
	}
	s.failures++
	if s.failures >= b.cfg.FailureThreshold {
		s.circuitOpen = true
		s.openedAt = time.Now()
	}
}
