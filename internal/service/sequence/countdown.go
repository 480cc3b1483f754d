package sequence

import (
	"sync"
	"time"
)

// DefaultTickInterval is the countdown decrement period.
const DefaultTickInterval = time.Second

// Countdown decrements a remaining-seconds value by one on every tick until it
// reaches zero or is stopped. It only produces display values and has no say
// over stage transitions.
//
// A tick that was already being delivered when Stop ran may still reach the
// callback; consumers that care must guard against it.
type Countdown struct {
	// interval is the time between decrements.
	interval time.Duration
	// onTick receives the remaining value after each decrement.
	onTick func(remaining float64)

	// mu protects the fields below.
	mu sync.Mutex
	// remaining is the current countdown value in seconds.
	remaining float64
	// running is true between Start and Stop or zero.
	running bool
	// stop is closed to end the current run's goroutine.
	stop chan struct{}
}

// NewCountdown creates a stopped countdown. A non-positive interval falls back
// to DefaultTickInterval.
func NewCountdown(interval time.Duration, onTick func(remaining float64)) *Countdown {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Countdown{
		interval: interval,
		onTick:   onTick,
	}
}

// Start begins a fresh run from total, abandoning any run in progress.
func (c *Countdown) Start(total float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	c.remaining = max(total, 0)
	if c.remaining == 0 {
		return
	}

	c.running = true
	c.stop = make(chan struct{})

	go c.run(c.stop)
}

// Stop ends the current run. Remaining keeps its last value.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
}

// Remaining returns the current countdown value in seconds.
func (c *Countdown) Remaining() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.remaining
}

// Running reports whether the countdown is still ticking.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

func (c *Countdown) stopLocked() {
	if !c.running {
		return
	}

	close(c.stop)
	c.running = false
	c.stop = nil
}

func (c *Countdown) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining, ok := c.tick(stop)
			if !ok {
				return
			}

			if c.onTick != nil {
				c.onTick(remaining)
			}

			if remaining == 0 {
				return
			}
		}
	}
}

// tick applies one decrement if stop still belongs to the live run.
func (c *Countdown) tick(stop chan struct{}) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.stop != stop {
		return 0, false
	}

	c.remaining = max(c.remaining-1, 0)
	if c.remaining == 0 {
		// Finished on its own; the goroutine exits after the callback.
		c.running = false
		c.stop = nil
	}

	return c.remaining, true
}
