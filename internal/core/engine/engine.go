package engine

import (
	"sync"
	"time"

	"redgreen/internal/core/events"
	"redgreen/internal/core/model"
)

// Engine is the authoritative state machine for the red/green game. It
// owns its IntervalTimer and publishes a StateChangeEvent for every phase
// transition and every countdown tick.
type Engine struct {
	mu           sync.Mutex
	config       model.GameConfig
	clock        Clock
	timer        *IntervalTimer
	phase        Phase
	sessionStart time.Time
	closed       bool

	listeners events.Registry[StateChangeEvent]
}

// New creates a stopped engine with the given configuration. A nil clock
// falls back to the system clock.
func New(config model.GameConfig, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	game := &Engine{
		config: config,
		clock:  clock,
		phase:  PhaseStopped,
	}
	game.timer = NewIntervalTimer(config.Timer, clock, TimerCallbacks{
		OnTick:     game.handleTick,
		OnComplete: game.handleCompletion,
	})
	return game
}

// Start begins a session in the green phase. No-op unless stopped.
func (game *Engine) Start() {
	game.mu.Lock()
	if game.closed || game.phase != PhaseStopped {
		game.mu.Unlock()
		return
	}
	game.sessionStart = game.clock.Now()
	event := game.transitionLocked(PhaseGreen, ModeGreen)
	game.mu.Unlock()

	game.listeners.Emit(event)
}

// Stop ends the session and returns to the stopped phase. Idempotent; a
// second call has no side effects.
func (game *Engine) Stop() {
	game.mu.Lock()
	if game.phase == PhaseStopped {
		game.mu.Unlock()
		return
	}
	game.timer.Stop()
	previous := game.phase
	game.phase = PhaseStopped
	game.sessionStart = time.Time{}
	event := StateChangeEvent{
		Previous: previous,
		Current:  PhaseStopped,
		At:       game.clock.Now(),
	}
	game.mu.Unlock()

	game.listeners.Emit(event)
}

// Toggle stops an active session or starts a new one.
func (game *Engine) Toggle() {
	if game.Active() {
		game.Stop()
		return
	}
	game.Start()
}

// CurrentPhase returns the phase the engine is in right now.
func (game *Engine) CurrentPhase() Phase {
	game.mu.Lock()
	defer game.mu.Unlock()
	return game.phase
}

// Active reports whether a session is running.
func (game *Engine) Active() bool {
	return game.CurrentPhase() != PhaseStopped
}

// Remaining returns the seconds left in the current phase, 0 when stopped.
func (game *Engine) Remaining() int {
	return game.timer.Remaining()
}

// SessionDuration returns how long the current session has run, or 0 when
// no session is active.
func (game *Engine) SessionDuration() time.Duration {
	game.mu.Lock()
	defer game.mu.Unlock()
	if game.sessionStart.IsZero() {
		return 0
	}
	return game.clock.Now().Sub(game.sessionStart)
}

// Config returns the current configuration snapshot.
func (game *Engine) Config() model.GameConfig {
	game.mu.Lock()
	defer game.mu.Unlock()
	return game.config
}

// UpdateConfig atomically replaces the configuration and forwards the
// timer portion. The current phase and its live countdown are unaffected;
// new durations apply when the next phase starts.
func (game *Engine) UpdateConfig(config model.GameConfig) {
	game.mu.Lock()
	game.config = config
	game.mu.Unlock()
	game.timer.UpdateConfig(config.Timer)
}

// Subscribe registers a listener for state-change events. Delivery is
// synchronous and in registration order; a panicking listener does not
// block the others.
func (game *Engine) Subscribe(listener func(StateChangeEvent)) *events.Subscription {
	return game.listeners.Subscribe(listener)
}

// Close stops the engine and drops all listeners. Idempotent.
func (game *Engine) Close() {
	game.mu.Lock()
	if game.closed {
		game.mu.Unlock()
		return
	}
	game.closed = true
	game.mu.Unlock()

	game.Stop()
	game.listeners.Clear()
}

// transitionLocked flips the phase and starts a fresh countdown. The timer
// start happens before the event is built so listeners observe a running
// timer.
func (game *Engine) transitionLocked(next Phase, mode TimerMode) StateChangeEvent {
	previous := game.phase
	game.phase = next
	total := game.timer.Start(mode)
	return StateChangeEvent{
		Previous:  previous,
		Current:   next,
		Remaining: total,
		At:        game.clock.Now(),
	}
}

// handleTick republishes countdown progress as a state-change event. The
// phase is derived from the timer mode rather than engine state so the
// ticker goroutine never contends with an in-flight transition.
func (game *Engine) handleTick(mode TimerMode, remaining int) {
	phase := phaseForMode(mode)
	game.listeners.Emit(StateChangeEvent{
		Previous:  phase,
		Current:   phase,
		Remaining: remaining,
		At:        game.clock.Now(),
	})
}

// handleCompletion advances the red/green cycle. A completion that races a
// stop request finds the engine stopped and is ignored.
func (game *Engine) handleCompletion(mode TimerMode) {
	game.mu.Lock()
	if game.closed || game.phase == PhaseStopped {
		game.mu.Unlock()
		return
	}

	var event StateChangeEvent
	if mode == ModeGreen {
		event = game.transitionLocked(PhaseRed, ModeRed)
	} else {
		event = game.transitionLocked(PhaseGreen, ModeGreen)
	}
	game.mu.Unlock()

	game.listeners.Emit(event)
}

func phaseForMode(mode TimerMode) Phase {
	if mode == ModeRed {
		return PhaseRed
	}
	return PhaseGreen
}
