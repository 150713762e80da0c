package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while the breaker is rejecting calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// CircuitBreaker guards calls to an external collaborator (the notification
// broker). Consecutive failures trip it open; after the cooldown a single
// probe call decides whether it closes again.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	cooldown     time.Duration

	mutex    sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		state:       BreakerClosed,
	}
}

// Do runs fn unless the breaker is open. The fn error is returned as-is so
// callers can distinguish broker failures from rejections.
func (cb *CircuitBreaker) Do(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn()
	cb.after(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.stateLocked(time.Now())
}

func (cb *CircuitBreaker) before() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.stateLocked(time.Now()) == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}

func (cb *CircuitBreaker) after(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.stateLocked(time.Now())

	if success {
		cb.failures = 0
		if state == BreakerHalfOpen {
			cb.state = BreakerClosed
		}
		return
	}

	cb.failures++
	if state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = BreakerOpen
		cb.openedAt = time.Now()
	}
}

// stateLocked resolves open→half-open once the cooldown has elapsed.
func (cb *CircuitBreaker) stateLocked(now time.Time) BreakerState {
	if cb.state == BreakerOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = BreakerHalfOpen
	}
	return cb.state
}
