// Package clock abstracts wall-clock readings and blocking waits so that
// bounded waits can be simulated in tests.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current time and blocks for a duration.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done. It returns ctx.Err() when
	// the wait was cut short.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Manual is a Clock whose time only moves when Sleep or Advance is called.
// Sleep returns immediately after advancing the clock by the requested duration.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	slept   time.Duration
	onSleep func(d time.Duration)
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d > 0 {
		m.Advance(d)
	}

	m.mu.Lock()
	hook := m.onSleep
	m.mu.Unlock()
	if hook != nil {
		hook(d)
	}

	return ctx.Err()
}

// Advance moves the clock forward without counting as a sleep hook call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.slept += d
}

// Slept returns the total simulated time passed through Sleep and Advance.
func (m *Manual) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.slept
}

// OnSleep registers a hook invoked after every Sleep. Tests use it to
// change collaborator behavior at a given simulated moment.
func (m *Manual) OnSleep(hook func(d time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSleep = hook
}
