package sequence

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/sprint-start/internal/domain/starter"
	"github.com/oshokin/sprint-start/internal/logger"
)

const (
	// DefaultCooldown is the pause after the firing sound before Idle.
	DefaultCooldown = 2500 * time.Millisecond

	// taskQueueSize bounds the number of loop tasks waiting to run.
	taskQueueSize = 32
)

// Option configures a Controller.
type Option func(*Controller)

// WithSampler replaces the jitter sampler.
func WithSampler(s *Sampler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sampler = s
		}
	}
}

// WithCooldown overrides the post-fire cooldown.
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.cooldown = d
		}
	}
}

// WithTickInterval overrides the countdown tick period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// Controller owns the sequence state machine.
//
// Every mutation happens on the loop goroutine started by New. Start and Reset
// hand a closure to the loop and wait for it; timer callbacks hand theirs over
// without waiting. Readers use the atomically published snapshot.
type Controller struct {
	// ctx carries the named logger and is passed to the emitter.
	ctx context.Context
	// store provides the configuration for each run.
	store ConfigStore
	// emitter plays the cues.
	emitter CueEmitter
	// sampler draws the set-to-fire delay.
	sampler *Sampler
	// cooldown is the Cooldown stage length.
	cooldown time.Duration
	// tickInterval is the countdown period.
	tickInterval time.Duration

	// tasks feeds the loop goroutine.
	tasks chan func()
	// quit is closed by Close to stop the loop.
	quit chan struct{}
	// done is closed once the loop has exited.
	done chan struct{}
	// closeOnce guards quit.
	closeOnce sync.Once

	// snapshot is the last published view, readable from any goroutine.
	snapshot atomic.Pointer[starter.Snapshot]

	// Fields below are owned by the loop goroutine.

	// state is the current stage.
	state starter.State
	// token is the run generation; bumped by every Start and Reset.
	token uint64
	// runID identifies the current or last run.
	runID uuid.UUID
	// remaining is the published countdown value.
	remaining float64
	// total is the countdown start value of the current run.
	total float64
	// config is the configuration of the current run.
	config starter.StarterConfig
	// setDelay is the sampled set-to-fire delay of the current run.
	setDelay time.Duration
	// selection is the voice and sound of the current run.
	selection starter.CueSelection
	// countdown is the current run's clock.
	countdown *Countdown
	// pending is the timer of the next scheduled transition.
	pending *time.Timer
	// subs are the registered observers.
	subs map[uuid.UUID]*Subscription
}

// New creates a Controller in the Idle state and starts its loop. A nil store
// yields default configuration; a nil emitter plays nothing. The loop stops on
// Close or when ctx is canceled.
func New(ctx context.Context, store ConfigStore, emitter CueEmitter, opts ...Option) *Controller {
	c := &Controller{
		ctx:          logger.WithName(ctx, "sequence"),
		store:        store,
		emitter:      emitter,
		sampler:      new(Sampler),
		cooldown:     DefaultCooldown,
		tickInterval: DefaultTickInterval,
		tasks:        make(chan func(), taskQueueSize),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		state:        starter.StateIdle,
		subs:         make(map[uuid.UUID]*Subscription),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.publish()

	go c.loop()

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	return c
}

// Start begins a run if the controller is Idle and reports whether it did.
// Calling it during a run is a silent no-op.
func (c *Controller) Start() bool {
	var started bool

	c.do(func() {
		started = c.start()
	})

	return started
}

// Reset aborts any run in progress and returns to Idle without emitting a
// cue. It is safe to call in any state.
func (c *Controller) Reset() {
	c.do(c.reset)
}

// Snapshot returns the last published view.
func (c *Controller) Snapshot() starter.Snapshot {
	return *c.snapshot.Load()
}

// State returns the current stage.
func (c *Controller) State() starter.State {
	return c.Snapshot().State
}

// Remaining returns the countdown value in seconds.
func (c *Controller) Remaining() float64 {
	return c.Snapshot().Remaining
}

// CanStart reports whether Start would begin a run.
func (c *Controller) CanStart() bool {
	return c.Snapshot().CanStart()
}

// Subscribe registers an observer. The subscription first receives the current
// snapshot, then one snapshot per state change or countdown tick. A full buffer
// drops snapshots rather than stalling the sequence.
func (c *Controller) Subscribe(buffer int) *Subscription {
	sub := newSubscription(c, buffer)

	ok := c.do(func() {
		c.subs[sub.id] = sub
		c.deliver(sub, c.Snapshot())
	})
	if !ok {
		close(sub.ch)
	}

	return sub
}

// Close stops the loop, the countdown and any pending transition, and closes
// all subscriptions. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})

	<-c.done
}

// Done is closed after the controller has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) loop() {
	defer close(c.done)
	defer c.shutdown()

	for {
		select {
		case <-c.quit:
			return
		case task := <-c.tasks:
			task()
		}
	}
}

// post queues fn for the loop. It reports false once the controller is closed.
func (c *Controller) post(fn func()) bool {
	select {
	case <-c.quit:
		return false
	default:
	}

	select {
	case c.tasks <- fn:
		return true
	case <-c.quit:
		return false
	}
}

// do runs fn on the loop and waits for it. It reports whether fn ran.
func (c *Controller) do(fn func()) bool {
	finished := make(chan struct{})

	if !c.post(func() {
		fn()
		close(finished)
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-c.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

func (c *Controller) start() bool {
	if c.state != starter.StateIdle {
		logger.DebugKV(c.ctx, "Start ignored, sequence already active", "state", c.state, "run_id", c.runID)

		return false
	}

	cfg := starter.DefaultStarterConfig()
	settings := starter.DefaultSettings()

	if c.store != nil {
		cfg = c.store.LoadStarterConfig(c.ctx)
		settings = c.store.LoadSettings(c.ctx)
	}

	if cfg.Normalize() {
		logger.WarnKV(c.ctx, "Stored configuration out of range, defaults substituted", "config", cfg.String())
	}

	c.token++
	token := c.token

	c.runID = uuid.New()
	c.config = cfg
	c.selection = settings.CueSelection()
	c.setDelay = c.sampler.SampleDelay(cfg.SetDelaySeconds, cfg.Variability.Bound())
	c.total = float64(cfg.MarkDelaySeconds)
	c.remaining = c.total
	c.state = starter.StateOnYourMarks

	c.countdown = NewCountdown(c.tickInterval, c.tickHandler(token))
	c.countdown.Start(c.total)

	logger.InfoKV(
		c.ctx,
		"Sequence started",
		"run_id", c.runID,
		"mark_delay", cfg.MarkDelay().String(),
		"variability", cfg.Variability.String(),
	)

	c.publish()
	c.schedule(token, cfg.MarkDelay(), c.enterSet)
	c.speak(starter.MarkCueText)

	return true
}

func (c *Controller) enterSet() {
	token := c.token

	// The transition, not the clock, ends the countdown.
	c.stopCountdown()
	c.remaining = 0
	c.state = starter.StateSet

	c.publish()
	c.schedule(token, c.setDelay, c.fire)
	c.speak(starter.SetCueText)
}

func (c *Controller) fire() {
	token := c.token

	c.state = starter.StateFired
	c.publish()
	c.schedule(token, c.cooldown, c.finish)
	c.playSound()

	logger.InfoKV(c.ctx, "Fired", "run_id", c.runID, "set_delay", c.setDelay.String())

	c.state = starter.StateCooldown
	c.publish()
}

func (c *Controller) finish() {
	c.pending = nil
	c.state = starter.StateIdle
	c.publish()

	logger.DebugKV(c.ctx, "Sequence finished", "run_id", c.runID)
}

func (c *Controller) reset() {
	c.token++

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	c.stopCountdown()

	if c.state == starter.StateIdle && c.remaining == 0 {
		return
	}

	logger.InfoKV(c.ctx, "Sequence reset", "run_id", c.runID, "state", c.state)

	c.state = starter.StateIdle
	c.remaining = 0
	c.publish()
}

// schedule runs next on the loop after d unless token went stale meanwhile.
func (c *Controller) schedule(token uint64, d time.Duration, next func()) {
	c.pending = time.AfterFunc(d, func() {
		c.post(func() {
			if token != c.token {
				logger.DebugKV(c.ctx, "Stale transition dropped", "token", token, "current_token", c.token)

				return
			}

			next()
		})
	})
}

func (c *Controller) tickHandler(token uint64) func(float64) {
	return func(remaining float64) {
		c.post(func() {
			if token != c.token || c.state != starter.StateOnYourMarks {
				return
			}

			c.remaining = remaining
			c.publish()
		})
	}
}

func (c *Controller) stopCountdown() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Controller) speak(text string) {
	c.emit(text, func(ctx context.Context) error {
		return c.emitter.Speak(ctx, text, c.selection.VoiceID)
	})
}

func (c *Controller) playSound() {
	c.emit(c.selection.SoundID, func(ctx context.Context) error {
		return c.emitter.PlaySound(ctx, c.selection.SoundID)
	})
}

// emit calls the emitter, turning errors and panics into log lines so the
// timing chain always continues. Callers schedule the next transition first.
func (c *Controller) emit(cue string, call func(context.Context) error) {
	if c.emitter == nil {
		return
	}

	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("cue emitter panic: %v", r)
			}
		}()

		err = call(c.ctx)
	}()

	if err != nil {
		logger.WarnKV(c.ctx, "Cue playback failed", "run_id", c.runID, "cue", cue, "error", err)
	}
}

func (c *Controller) publish() {
	snap := starter.Snapshot{
		RunID:     c.runID,
		Token:     c.token,
		State:     c.state,
		Remaining: c.remaining,
		Total:     c.total,
		Config:    c.config,
		SetDelay:  c.setDelay,
		At:        time.Now(),
	}

	c.snapshot.Store(&snap)

	for _, sub := range c.subs {
		c.deliver(sub, snap)
	}
}

func (c *Controller) deliver(sub *Subscription, snap starter.Snapshot) {
	select {
	case sub.ch <- snap:
	default:
		logger.WarnKV(c.ctx, "Subscriber is full, snapshot dropped", "subscription_id", sub.id, "state", snap.State)
	}
}

func (c *Controller) unsubscribe(id uuid.UUID) {
	if sub, ok := c.subs[id]; ok {
		delete(c.subs, id)
		close(sub.ch)
	}
}

func (c *Controller) shutdown() {
	c.token++

	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}

	c.stopCountdown()

	for id := range c.subs {
		c.unsubscribe(id)
	}
}
