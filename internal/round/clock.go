package round

import (
	"context"
	"sync"
	"time"

	"vocab-sprint/internal/domain"
)

// TickerFunc creates a tick source and its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker is the production tick source.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Clock drives a Timer from a single tick source and serializes skips against ticks.
// onEvent runs with the clock locked and must not call back into the Clock.
type Clock struct {
	interval  time.Duration
	newTicker TickerFunc
	onEvent   func(Event)

	runMu sync.Mutex // serializes Start/Stop
	done  chan struct{}

	mu     sync.Mutex // guards timer and cancel
	timer  *Timer
	cancel context.CancelFunc
}

// NewClock ticks the timer once per second.
func NewClock(timer *Timer, onEvent func(Event)) *Clock {
	return NewClockWithTicker(timer, onEvent, time.Second, RealTicker)
}

// NewClockWithTicker allows tests to drive ticks by hand.
func NewClockWithTicker(timer *Timer, onEvent func(Event), interval time.Duration, newTicker TickerFunc) *Clock {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Clock{
		interval:  interval,
		newTicker: newTicker,
		onEvent:   onEvent,
		timer:     timer,
	}
}

// Begin starts an idle timer for wordCount words and launches the tick loop.
func (c *Clock) Begin(wordCount int) bool {
	c.mu.Lock()
	started := c.timer.Start(wordCount)
	c.mu.Unlock()
	if !started {
		return false
	}
	return c.Start()
}

// Start (re)launches the tick loop. A loop that is already running is stopped and
// drained first, so there is never more than one tick source.
func (c *Clock) Start() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	c.stopLocked()

	c.mu.Lock()
	if c.timer.State() != StateRunning {
		c.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	ticks, stopTicker := c.newTicker(c.interval)
	done := make(chan struct{})
	c.done = done
	go c.loop(ctx, ticks, stopTicker, done)
	return true
}

// Stop cancels the tick loop and waits for it to exit.
func (c *Clock) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	c.stopLocked()
}

func (c *Clock) stopLocked() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if c.done != nil {
		<-c.done
		c.done = nil
	}
}

func (c *Clock) loop(ctx context.Context, ticks <-chan time.Time, stopTicker func(), done chan struct{}) {
	defer close(done)
	defer stopTicker()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			c.mu.Lock()
			if ctx.Err() != nil {
				c.mu.Unlock()
				return
			}
			for _, e := range c.timer.Tick() {
				c.onEvent(e)
			}
			finished := c.timer.State() == StateFinished
			c.mu.Unlock()
			if finished {
				return
			}
		}
	}
}

// Skip advances to the next word immediately.
func (c *Clock) Skip() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.timer.Skip()
	for _, e := range events {
		c.onEvent(e)
	}
	if c.timer.State() == StateFinished && c.cancel != nil {
		c.cancel()
	}
	return events
}

// Snapshot copies the timer counters.
func (c *Clock) Snapshot() domain.TimerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer.Snapshot()
}

// State returns the timer state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer.State()
}
