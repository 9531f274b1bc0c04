// Package pacer serializes outbound catalog calls through a single
// process-wide FIFO queue with a fixed minimum spacing between successive
// call starts. Callers are served strictly in arrival order; no call ever
// overtakes one queued earlier, and calls are never coalesced.
package pacer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"wantbot/internal/logging"
)

// ErrStopped is returned for calls scheduled on (or stranded in) a stopped
// pacer.
var ErrStopped = errors.New("pacer stopped")

// Config configures a Pacer. Zero-value fields fall back to defaults.
type Config struct {
	// Spacing is the minimum delay between successive call starts.
	Spacing time.Duration
	// Now and Sleep exist so tests can drive the pacer with a fake clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{Spacing: 100 * time.Millisecond}
}

// Pacer runs scheduled functions one at a time, FIFO, with minimum spacing.
type Pacer struct {
	spacing int64 // atomic, nanoseconds
	now     func() time.Time
	sleep   func(time.Duration)

	calls chan *call
	stop  chan struct{}
	once  sync.Once

	// Metrics
	scheduled   int64
	totalWaitNs int64
}

type call struct {
	ctx  context.Context
	fn   func(context.Context) error
	err  error
	done chan struct{}
}

// New creates a Pacer and starts its dispatch loop.
func New(cfg Config) *Pacer {
	if cfg.Spacing <= 0 {
		cfg.Spacing = DefaultConfig().Spacing
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	p := &Pacer{
		now:   cfg.Now,
		sleep: cfg.Sleep,
		calls: make(chan *call, 64),
		stop:  make(chan struct{}),
	}
	atomic.StoreInt64(&p.spacing, int64(cfg.Spacing))
	go p.run()
	return p
}

// Schedule enqueues fn and blocks until it has run or the pacer stops.
// The function's own context handles timeouts; a call is never abandoned
// once queued, which is what keeps the FIFO total order strict.
func (p *Pacer) Schedule(ctx context.Context, fn func(context.Context) error) error {
	c := &call{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case p.calls <- c:
	case <-p.stop:
		return ErrStopped
	}

	return p.await(c)
}

// await blocks until the call finishes or the pacer stops. A call that
// already completed reports its own result even when the stop raced it.
func (p *Pacer) await(c *call) error {
	select {
	case <-c.done:
		return c.err
	case <-p.stop:
		select {
		case <-c.done:
			return c.err
		default:
		}
		return ErrStopped
	}
}

// SetSpacing adjusts the minimum spacing at runtime (config hot reload).
func (p *Pacer) SetSpacing(d time.Duration) {
	if d > 0 {
		atomic.StoreInt64(&p.spacing, int64(d))
		logging.Pacer("spacing set to %v", d)
	}
}

// Stop shuts the pacer down. Queued calls fail with ErrStopped.
func (p *Pacer) Stop() {
	p.once.Do(func() { close(p.stop) })
}

// Metrics is a point-in-time snapshot of pacer activity.
type Metrics struct {
	Scheduled int64
	TotalWait time.Duration
}

// Metrics returns a snapshot of calls dispatched and time spent pacing.
func (p *Pacer) Metrics() Metrics {
	return Metrics{
		Scheduled: atomic.LoadInt64(&p.scheduled),
		TotalWait: time.Duration(atomic.LoadInt64(&p.totalWaitNs)),
	}
}

func (p *Pacer) run() {
	var last time.Time

	for {
		select {
		case c := <-p.calls:
			spacing := time.Duration(atomic.LoadInt64(&p.spacing))
			if !last.IsZero() {
				if wait := spacing - p.now().Sub(last); wait > 0 {
					logging.PacerDebug("pacing for %v", wait)
					atomic.AddInt64(&p.totalWaitNs, int64(wait))
					p.sleep(wait)
				}
			}
			last = p.now()
			c.err = c.fn(c.ctx)
			atomic.AddInt64(&p.scheduled, 1)
			close(c.done)

		case <-p.stop:
			// Fail anything still queued so no caller is left hanging.
			for {
				select {
				case c := <-p.calls:
					c.err = ErrStopped
					close(c.done)
				default:
					return
				}
			}
		}
	}
}
