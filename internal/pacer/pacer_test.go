package pacer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeClock advances only when the pacer sleeps.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func TestScheduleRunsInArrivalOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newFakeClock()
	p := New(Config{Spacing: 100 * time.Millisecond, Now: clock.Now, Sleep: clock.Sleep})
	defer p.Stop()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	ready := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Stagger arrival so queue order is deterministic.
			<-ready
			time.Sleep(time.Duration(i) * 20 * time.Millisecond)
			err := p.Schedule(context.Background(), func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
			require.NoError(t, err)
		}()
	}
	close(ready)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestScheduleEnforcesSpacing(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{Spacing: 100 * time.Millisecond, Now: clock.Now, Sleep: clock.Sleep})
	defer p.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Schedule(context.Background(), func(context.Context) error {
			return nil
		}))
	}

	// First call dispatches immediately; the two that follow each wait the
	// full spacing because the fake clock only moves during sleeps.
	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 2)
	for _, d := range sleeps {
		assert.Equal(t, 100*time.Millisecond, d)
	}
}

func TestSchedulePropagatesError(t *testing.T) {
	p := New(Config{Spacing: time.Millisecond})
	defer p.Stop()

	boom := errors.New("boom")
	err := p.Schedule(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestScheduleAfterStop(t *testing.T) {
	p := New(Config{Spacing: time.Millisecond})
	p.Stop()

	err := p.Schedule(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestAwaitPrefersCompletedCallOverStop(t *testing.T) {
	p := New(Config{Spacing: time.Millisecond})
	p.Stop()

	ran := errors.New("call ran")
	c := &call{err: ran, done: make(chan struct{})}
	close(c.done)

	// Both channels are ready; a call that already ran must report its
	// own result, not ErrStopped, whichever case wakes first.
	for i := 0; i < 100; i++ {
		require.ErrorIs(t, p.await(c), ran)
	}
}

func TestSetSpacingTakesEffect(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{Spacing: 100 * time.Millisecond, Now: clock.Now, Sleep: clock.Sleep})
	defer p.Stop()

	require.NoError(t, p.Schedule(context.Background(), func(context.Context) error { return nil }))
	p.SetSpacing(250 * time.Millisecond)
	require.NoError(t, p.Schedule(context.Background(), func(context.Context) error { return nil }))

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 1)
	assert.Equal(t, 250*time.Millisecond, sleeps[0])
}

func TestMetrics(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{Spacing: 100 * time.Millisecond, Now: clock.Now, Sleep: clock.Sleep})
	defer p.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Schedule(context.Background(), func(context.Context) error { return nil }))
	}

	m := p.Metrics()
	assert.Equal(t, int64(3), m.Scheduled)
	assert.Equal(t, 200*time.Millisecond, m.TotalWait)
}
