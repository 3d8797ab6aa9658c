package store

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BreakerState is the availability state of one collection for one clinic.
type BreakerState int

const (
	// StateClosed: gateway calls are attempted normally.
	StateClosed BreakerState = iota
	// StateOpen: gateway calls are skipped; writes go to the mirror only.
	StateOpen
	// StateHalfOpen: a single probe call is in flight.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// breaker is a tri-state circuit breaker. A failure opens it for a window
// taken from an exponential schedule; once the window elapses the next call
// is let through as a probe, and its outcome either closes the breaker or
// reopens it with a longer window.
type breaker struct {
	mu       sync.Mutex
	state    BreakerState
	reopenAt time.Time
	schedule *backoff.ExponentialBackOff
	now      func() time.Time
}

func newBreaker(now func() time.Time) *breaker {
	sched := backoff.NewExponentialBackOff()
	sched.InitialInterval = 30 * time.Second
	sched.MaxInterval = 5 * time.Minute
	sched.MaxElapsedTime = 0 // never give up probing
	sched.Reset()
	return &breaker{
		state:    StateClosed,
		schedule: sched,
		now:      now,
	}
}

// allow reports whether a gateway call may be attempted now. In the open
// state it flips to half-open once the reopen window has elapsed, admitting
// exactly one probe.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if !b.now().Before(b.reopenAt) {
			b.state = StateHalfOpen
			return true
		}
		return false
	default: // half-open, probe already in flight
		return false
	}
}

func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.schedule.Reset()
}

func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateOpen
	b.reopenAt = b.now().Add(b.schedule.NextBackOff())
}

func (b *breaker) current() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
