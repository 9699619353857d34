// Package resilience holds the circuit breaker guarding optional
// dependencies. The search path treats an open circuit as "dependency
// unavailable" and degrades instead of failing.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker is open and rejecting calls.
var ErrOpen = errors.New("circuit open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// BreakerConfig controls when the breaker trips and how it probes for
// recovery. Zero values take the defaults.
type BreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	HalfOpenProbes   int
}

// Breaker trips open after consecutive failures and lets a limited number
// of probe calls through once the reset timeout has passed.
type Breaker struct {
	name   string
	cfg    BreakerConfig
	logger *slog.Logger

	mu          sync.Mutex
	state       state
	failures    int
	lastFailure time.Time
	probes      int
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenProbes <= 0 {
		cfg.HalfOpenProbes = 1
	}
	return &Breaker{
		name:   name,
		cfg:    cfg,
		logger: slog.Default().With("component", "breaker", "name", name),
	}
}

// Do runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case stateOpen:
		if time.Since(b.lastFailure) < b.cfg.ResetTimeout {
			return fmt.Errorf("%w: %s", ErrOpen, b.name)
		}
		b.state = stateHalfOpen
		b.probes = 0
		b.logger.Info("circuit half-open")
		return nil
	case stateHalfOpen:
		if b.probes >= b.cfg.HalfOpenProbes {
			return fmt.Errorf("%w: %s probing", ErrOpen, b.name)
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state == stateHalfOpen {
			b.logger.Info("circuit closed")
		}
		b.state = stateClosed
		b.failures = 0
		return
	}

	b.failures++
	b.lastFailure = time.Now()
	switch b.state {
	case stateClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.state = stateOpen
			b.logger.Warn("circuit opened", "failures", b.failures)
		}
	case stateHalfOpen:
		b.state = stateOpen
		b.logger.Warn("circuit re-opened")
	}
}
