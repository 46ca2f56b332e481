package countdown

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the timer")
	}
	var zero T
	return zero
}

func quiet[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected callback: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTicksDownAndExpires(t *testing.T) {
	mock := clock.NewMock()
	timer := New(mock, 3)

	ticks := make(chan int, 3)
	expired := make(chan struct{}, 1)
	timer.OnTick(func(s int) { ticks <- s })
	timer.OnExpire(func() { expired <- struct{}{} })

	require.NoError(t, timer.Start(context.Background()))
	assert.ErrorIs(t, timer.Start(context.Background()), ErrAlreadyStarted)
	assert.True(t, timer.Started())

	for _, want := range []int{2, 1, 0} {
		mock.Add(time.Second)
		assert.Equal(t, want, receive(t, ticks))
	}
	receive(t, expired)

	assert.False(t, timer.Started())
	assert.Zero(t, timer.Seconds())
	assert.Equal(t, 3, timer.Elapsed())
	assert.ErrorIs(t, timer.Stop(), ErrNotStarted)
}

func TestStopSilencesTimer(t *testing.T) {
	mock := clock.NewMock()
	timer := New(mock, 10)

	ticks := make(chan int, 10)
	timer.OnTick(func(s int) { ticks <- s })

	require.NoError(t, timer.Start(context.Background()))
	mock.Add(time.Second)
	assert.Equal(t, 9, receive(t, ticks))

	require.NoError(t, timer.Stop())
	mock.Add(time.Second)
	quiet(t, ticks)

	assert.Equal(t, 9, timer.Seconds())
	assert.Equal(t, 1, timer.Elapsed())
}

func TestRestartStartsOver(t *testing.T) {
	mock := clock.NewMock()
	timer := New(mock, 5)

	ticks := make(chan int, 10)
	timer.OnTick(func(s int) { ticks <- s })

	require.NoError(t, timer.Start(context.Background()))
	mock.Add(time.Second)
	assert.Equal(t, 4, receive(t, ticks))

	timer.Restart(context.Background(), 20)
	assert.Equal(t, 20, timer.Seconds())
	assert.Zero(t, timer.Elapsed())

	mock.Add(time.Second)
	assert.Equal(t, 19, receive(t, ticks))
	quiet(t, ticks)
}

func TestContextCancelStopsTimer(t *testing.T) {
	mock := clock.NewMock()
	timer := New(mock, 5)

	ticks := make(chan int, 5)
	timer.OnTick(func(s int) { ticks <- s })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, timer.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !timer.Started() },
		time.Second, 5*time.Millisecond)
	mock.Add(time.Second)
	quiet(t, ticks)
}
