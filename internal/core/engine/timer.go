package engine

import (
	"math/rand"
	"sync"
	"time"

	"redgreen/internal/core/model"
)

// TimerMode selects which phase duration a countdown uses.
type TimerMode string

const (
	ModeGreen TimerMode = "green"
	ModeRed   TimerMode = "red"
)

// TimerCallbacks receive countdown progress. OnTick fires once per elapsed
// second with the seconds still remaining; OnComplete fires exactly once
// when the countdown reaches zero. Callbacks are invoked without internal
// locks held.
type TimerCallbacks struct {
	OnTick     func(mode TimerMode, remaining int)
	OnComplete func(mode TimerMode)
}

// IntervalTimer runs the countdown for a single phase. At most one session
// is live at a time; starting a new one cancels the previous session
// without leaking its ticking goroutine.
type IntervalTimer struct {
	mu        sync.Mutex
	config    model.TimerConfig
	clock     Clock
	callbacks TimerCallbacks
	rng       *rand.Rand
	session   *timerSession
}

type timerSession struct {
	mode      TimerMode
	total     int
	remaining int
	ticker    Ticker
	done      chan struct{}
}

// NewIntervalTimer creates a timer using the given clock for scheduling.
func NewIntervalTimer(config model.TimerConfig, clock Clock, callbacks TimerCallbacks) *IntervalTimer {
	if clock == nil {
		clock = SystemClock
	}
	return &IntervalTimer{
		config:    config,
		clock:     clock,
		callbacks: callbacks,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start cancels any live session and begins a fresh countdown for the
// mode. It returns the selected total duration in seconds so the caller
// can display the initial value without waiting for the first tick.
func (timer *IntervalTimer) Start(mode TimerMode) int {
	timer.mu.Lock()
	timer.stopLocked()

	total := timer.selectDurationLocked(mode)
	session := &timerSession{
		mode:      mode,
		total:     total,
		remaining: total,
		ticker:    timer.clock.NewTicker(time.Second),
		done:      make(chan struct{}),
	}
	timer.session = session
	timer.mu.Unlock()

	go timer.run(session)
	return total
}

// Stop cancels the live session without emitting a completion. Idempotent.
func (timer *IntervalTimer) Stop() {
	timer.mu.Lock()
	timer.stopLocked()
	timer.mu.Unlock()
}

// UpdateConfig swaps the duration configuration. A session already in
// progress is unaffected; the new values apply at the next Start.
func (timer *IntervalTimer) UpdateConfig(config model.TimerConfig) {
	timer.mu.Lock()
	timer.config = config
	timer.mu.Unlock()
}

// Remaining reports the seconds left in the live session, or 0 when idle.
func (timer *IntervalTimer) Remaining() int {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.session == nil {
		return 0
	}
	return timer.session.remaining
}

// Running reports whether a countdown session is live.
func (timer *IntervalTimer) Running() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.session != nil
}

func (timer *IntervalTimer) run(session *timerSession) {
	defer session.ticker.Stop()
	for {
		select {
		case <-session.done:
			return
		case <-session.ticker.C():
			if !timer.advance(session) {
				return
			}
		}
	}
}

// advance consumes one tick. It returns false once the session is stale or
// complete, which ends the run loop.
func (timer *IntervalTimer) advance(session *timerSession) bool {
	timer.mu.Lock()
	if timer.session != session {
		timer.mu.Unlock()
		return false
	}

	session.remaining--
	if session.remaining > 0 {
		remaining := session.remaining
		onTick := timer.callbacks.OnTick
		timer.mu.Unlock()
		if onTick != nil {
			onTick(session.mode, remaining)
		}
		return true
	}

	timer.session = nil
	onComplete := timer.callbacks.OnComplete
	timer.mu.Unlock()
	if onComplete != nil {
		onComplete(session.mode)
	}
	return false
}

func (timer *IntervalTimer) stopLocked() {
	if timer.session == nil {
		return
	}
	timer.session.ticker.Stop()
	close(timer.session.done)
	timer.session = nil
}

// selectDurationLocked picks the countdown length in seconds. Random
// durations are redrawn on every start, never cached.
func (timer *IntervalTimer) selectDurationLocked(mode TimerMode) int {
	if timer.config.UseRandom {
		low, high := timer.config.MinRandom, timer.config.MaxRandom
		if high <= low {
			return clampDuration(low)
		}
		return low + timer.rng.Intn(high-low+1)
	}
	if mode == ModeRed {
		return clampDuration(timer.config.RedDuration)
	}
	return clampDuration(timer.config.GreenDuration)
}

func clampDuration(seconds int) int {
	if seconds < 1 {
		return 1
	}
	return seconds
}
