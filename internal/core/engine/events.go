package engine

import "time"

// Phase is the current game mode.
type Phase string

const (
	PhaseStopped Phase = "stopped"
	PhaseGreen   Phase = "green"
	PhaseRed     Phase = "red"
)

// StateChangeEvent is published on every phase transition and on every
// countdown tick. Tick events carry the same phase in Previous and Current
// with an updated Remaining value.
type StateChangeEvent struct {
	Previous  Phase
	Current   Phase
	Remaining int
	At        time.Time
}

// Transition reports whether the event marks a phase change rather than a
// countdown tick.
func (event StateChangeEvent) Transition() bool {
	return event.Previous != event.Current
}
