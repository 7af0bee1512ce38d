package clients

import (
	"sync"
	"time"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen rejects requests until the cooldown has passed.
	StateOpen

	// StateHalfOpen lets a limited number of probes through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
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

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures int

	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration

	// Probes is both the number of concurrent half-open requests allowed and
	// the number of probe successes needed to close again.
	Probes int
}

// Breaker stops calls to a downstream that keeps failing.
//
//	closed    --MaxFailures consecutive failures--> open
//	open      --Cooldown elapsed, next Allow-->     half-open
//	half-open --Probes successes-->                 closed
//	half-open --any failure-->                      open
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    State
	failures int
	inFlight int
	probesOK int
	openedAt time.Time
	onChange func(from, to State)
	now      func() time.Time
}

// NewBreaker creates a closed breaker. onChange, if set, is called after
// every transition outside the breaker's lock.
func NewBreaker(cfg BreakerConfig, onChange func(from, to State)) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}

	if cfg.Probes < 1 {
		cfg.Probes = 1
	}

	return &Breaker{cfg: cfg, onChange: onChange, now: time.Now}
}

// Allow reserves a slot for one request or returns ErrCircuitOpen.
// Every successful Allow must be followed by exactly one Done.
func (b *Breaker) Allow() error {
	b.mu.Lock()

	from := b.state

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			b.mu.Unlock()
			return ErrCircuitOpen
		}

		b.setState(StateHalfOpen)
		b.inFlight = 1

	case StateHalfOpen:
		if b.inFlight >= b.cfg.Probes {
			b.mu.Unlock()
			return ErrCircuitOpen
		}

		b.inFlight++
	}

	to := b.state
	b.mu.Unlock()

	b.notify(from, to)

	return nil
}

// Done reports the outcome of a request admitted by Allow.
func (b *Breaker) Done(success bool) {
	b.mu.Lock()

	from := b.state

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
		} else if b.failures++; b.failures >= b.cfg.MaxFailures {
			b.open()
		}

	case StateHalfOpen:
		b.inFlight--

		if !success {
			b.open()
		} else if b.probesOK++; b.probesOK >= b.cfg.Probes {
			b.setState(StateClosed)
		}

	case StateOpen:
		// A request admitted before the breaker opened; nothing to count.
	}

	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *Breaker) open() {
	b.setState(StateOpen)
	b.openedAt = b.now()
}

// setState must be called with mu held.
func (b *Breaker) setState(s State) {
	b.state = s
	b.failures = 0
	b.probesOK = 0

	if s != StateHalfOpen {
		b.inFlight = 0
	}
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onChange != nil {
		b.onChange(from, to)
	}
}
