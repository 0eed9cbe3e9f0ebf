// Package circuit tracks the health of an optional dependency so callers can stop
// trusting it after repeated failures and start again once it recovers.
package circuit

import "sync"

type State int

const (
	// StateClosed: the dependency is healthy and its answers are used.
	StateClosed State = iota
	// StateOpen: the dependency is still called but its answers are ignored.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Breaker is a two-state breaker driven by consecutive outcomes. It opens after
// failureThreshold failures in a row and closes after successThreshold successes in a
// row while open. It never blocks calls; callers keep calling the dependency while open
// and decide for themselves whether to use the result.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	onChange         func(name string, to State)
}

type Option func(*Breaker)

// WithFailureThreshold defaults to 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold defaults to 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// OnStateChange is called, outside the lock, after every transition.
func OnStateChange(fn func(name string, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool { return b.State() == StateOpen }

// RecordFailure reports whether the dependency should now be bypassed.
func (b *Breaker) RecordFailure() (bypass bool) {
	b.mu.Lock()
	b.successes = 0
	b.failures++
	opened := b.state == StateClosed && b.failures >= b.failureThreshold
	if opened {
		b.state = StateOpen
	}
	bypass = b.state == StateOpen
	b.mu.Unlock()

	if opened {
		b.notify(StateOpen)
	}
	return bypass
}

// RecordSuccess reports whether the dependency's answer may be used.
func (b *Breaker) RecordSuccess() (trusted bool) {
	b.mu.Lock()
	closed := false
	if b.state == StateOpen {
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures, b.successes = 0, 0
			closed = true
		}
	} else {
		b.failures = 0
	}
	trusted = b.state == StateClosed
	b.mu.Unlock()

	if closed {
		b.notify(StateClosed)
	}
	return trusted
}

func (b *Breaker) notify(to State) {
	if b.onChange != nil {
		b.onChange(b.name, to)
	}
}
