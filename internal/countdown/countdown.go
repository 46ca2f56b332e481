// Package countdown is a decrementing one-second clock that reports when it
// runs out. It knows nothing about the game it is timing.
package countdown

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultSeconds = 999

var (
	ErrAlreadyStarted = errors.New("timer already started")
	ErrNotStarted     = errors.New("timer already stopped")
)

type Timer struct {
	clock clock.Clock

	mu       sync.Mutex
	initial  int
	seconds  int
	started  bool
	gen      int
	cancel   context.CancelFunc
	onTick   func(seconds int)
	onExpire func()
}

func New(c clock.Clock, seconds int) *Timer {
	if c == nil {
		c = clock.New()
	}
	return &Timer{clock: c, initial: seconds, seconds: seconds}
}

func (t *Timer) OnTick(fn func(seconds int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = fn
}

func (t *Timer) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = fn
}

func (t *Timer) Seconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds
}

// Elapsed is the number of whole seconds counted down since the last reset.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initial - t.seconds
}

func (t *Timer) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Start counts down from the current value until ctx is done, the timer is
// stopped or it reaches zero.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return ErrAlreadyStarted
	}
	t.start(ctx)
	return nil
}

// Restart stops a running timer, if any, and starts over from seconds.
func (t *Timer) Restart(ctx context.Context, seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
	t.initial = seconds
	t.seconds = seconds
	t.start(ctx)
}

// Stop does not wait for a callback already in flight to return.
func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return ErrNotStarted
	}
	t.stop()
	return nil
}

func (t *Timer) stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.started = false
	t.gen++
}

func (t *Timer) start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.started = true
	gen := t.gen
	ticker := t.clock.Ticker(time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.mu.Lock()
				if t.gen == gen {
					t.stop()
				}
				t.mu.Unlock()
				return
			case <-ticker.C:
			}

			t.mu.Lock()
			if t.gen != gen {
				t.mu.Unlock()
				return
			}
			t.seconds--
			seconds, onTick, onExpire := t.seconds, t.onTick, t.onExpire
			expired := seconds <= 0
			if expired {
				t.stop()
			}
			t.mu.Unlock()

			if onTick != nil {
				onTick(seconds)
			}
			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}()
}
