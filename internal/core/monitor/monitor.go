package monitor

import (
	"sync"
	"time"

	"redgreen/internal/core/engine"
	"redgreen/internal/core/events"
	"redgreen/internal/core/model"
)

// MaxDocumentSize is the size cutoff above which edits are not inspected.
// This path runs on every change notification, so huge documents are
// deliberately skipped rather than examined.
const MaxDocumentSize = 1_000_000

// PhaseSource exposes the engine state the monitor needs.
type PhaseSource interface {
	CurrentPhase() engine.Phase
	Active() bool
}

// TextChange describes one edit notification from the input source.
type TextChange struct {
	Source      string
	Description string
	Size        int
	Ephemeral   bool
	At          time.Time
}

// ViolationEvent is emitted for an edit that breaks the red light.
type ViolationEvent struct {
	At          time.Time
	Source      string
	Description string
	Action      model.Action
}

// Monitor decides whether incoming edits violate the current red phase,
// honoring a grace window after red begins. It never alters game state;
// consequences belong to the action dispatcher.
type Monitor struct {
	mu      sync.Mutex
	phases  PhaseSource
	clock   engine.Clock
	grace   time.Duration
	action  model.Action
	anchor  time.Time
	enabled bool

	listeners events.Registry[ViolationEvent]
}

// New creates a monitor in the disabled state.
func New(phases PhaseSource, clock engine.Clock, config model.GameConfig) *Monitor {
	if clock == nil {
		clock = engine.SystemClock
	}
	mon := &Monitor{
		phases: phases,
		clock:  clock,
	}
	mon.applyConfig(config)
	return mon
}

// UpdateConfig swaps the grace period and configured action.
func (mon *Monitor) UpdateConfig(config model.GameConfig) {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	mon.applyConfigLocked(config)
}

func (mon *Monitor) applyConfig(config model.GameConfig) {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	mon.applyConfigLocked(config)
}

func (mon *Monitor) applyConfigLocked(config model.GameConfig) {
	mon.grace = time.Duration(config.GracePeriod * float64(time.Second))
	mon.action = config.Action
}

// StartMonitoring enables violation detection.
func (mon *Monitor) StartMonitoring() {
	mon.mu.Lock()
	mon.enabled = true
	mon.mu.Unlock()
}

// StopMonitoring disables violation detection and clears the grace anchor.
func (mon *Monitor) StopMonitoring() {
	mon.mu.Lock()
	mon.enabled = false
	mon.anchor = time.Time{}
	mon.mu.Unlock()
}

// Monitoring reports whether violation detection is enabled.
func (mon *Monitor) Monitoring() bool {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return mon.enabled
}

// ObserveState tracks engine transitions. Entering red records the grace
// anchor exactly once; leaving red or stopping clears it.
func (mon *Monitor) ObserveState(event engine.StateChangeEvent) {
	if !event.Transition() {
		return
	}
	mon.mu.Lock()
	if event.Current == engine.PhaseRed {
		mon.anchor = event.At
	} else {
		mon.anchor = time.Time{}
	}
	mon.mu.Unlock()
}

// Subscribe registers a violation listener.
func (mon *Monitor) Subscribe(listener func(ViolationEvent)) *events.Subscription {
	return mon.listeners.Subscribe(listener)
}

// HandleChange inspects one edit notification and emits at most one
// violation. Unmonitorable input is silently dropped; a false negative is
// preferred over disturbing the input path.
func (mon *Monitor) HandleChange(change TextChange) {
	if change.Source == "" || change.Ephemeral || change.Size > MaxDocumentSize {
		return
	}

	mon.mu.Lock()
	if !mon.enabled || mon.phases == nil || !mon.phases.Active() {
		mon.mu.Unlock()
		return
	}
	if mon.phases.CurrentPhase() != engine.PhaseRed {
		mon.mu.Unlock()
		return
	}

	at := change.At
	if at.IsZero() {
		at = mon.clock.Now()
	}
	if !mon.anchor.IsZero() && at.Sub(mon.anchor) <= mon.grace {
		mon.mu.Unlock()
		return
	}

	description := change.Description
	if description == "" {
		description = "document edited"
	}
	violation := ViolationEvent{
		At:          at,
		Source:      change.Source,
		Description: description,
		Action:      mon.action,
	}
	mon.mu.Unlock()

	mon.listeners.Emit(violation)
}
