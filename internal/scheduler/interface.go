package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameRate is the tick rate of a TickerClock created with a
// non-positive rate.
const DefaultFrameRate = 60

// Clock delivers frame timestamps in nanoseconds. Timestamps must never
// decrease.
type Clock interface {
	// Ticks returns the channel the loop receives timestamps from.
	Ticks() <-chan int64
	// Stop releases the clock's resources.
	Stop()
}

// TickerClock is a wall-clock frame source. When the loop falls behind,
// older ticks are replaced by the newest one.
type TickerClock struct {
	ticker *time.Ticker
	origin time.Time
	ticks  chan int64
	done   chan struct{}
	once   sync.Once
}

// NewTickerClock starts a clock ticking fps times per second.
func NewTickerClock(fps int) *TickerClock {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	c := &TickerClock{
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
		origin: time.Now(),
		ticks:  make(chan int64, 1),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *TickerClock) run() {
	defer c.ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case t := <-c.ticker.C:
			c.publish(t.Sub(c.origin).Nanoseconds())
		}
	}
}

// publish keeps only the freshest timestamp in the buffer.
func (c *TickerClock) publish(nanos int64) {
	select {
	case c.ticks <- nanos:
		return
	default:
	}
	select {
	case <-c.ticks:
	default:
	}
	select {
	case c.ticks <- nanos:
	default:
	}
}

func (c *TickerClock) Ticks() <-chan int64 {
	return c.ticks
}

func (c *TickerClock) Stop() {
	c.once.Do(func() { close(c.done) })
}

// ManualClock is driven explicitly, for tests and offline rendering.
type ManualClock struct {
	mu    sync.Mutex
	now   int64
	ticks chan int64
}

// NewManualClock returns a clock positioned at start nanoseconds.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start, ticks: make(chan int64)}
}

func (c *ManualClock) Ticks() <-chan int64 {
	return c.ticks
}

func (c *ManualClock) Stop() {}

// Now returns the timestamp of the last tick.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Tick delivers the current timestamp again. It blocks until the loop takes
// it or ctx ends.
func (c *ManualClock) Tick(ctx context.Context) error {
	return c.send(ctx, c.Now())
}

// Advance moves the clock forward by d and delivers the new timestamp.
func (c *ManualClock) Advance(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now += d.Nanoseconds()
	now := c.now
	c.mu.Unlock()
	return c.send(ctx, now)
}

func (c *ManualClock) send(ctx context.Context, nanos int64) error {
	select {
	case c.ticks <- nanos:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
