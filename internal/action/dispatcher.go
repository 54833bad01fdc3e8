package action

import (
	"fmt"

	"redgreen/internal/core/model"
	"redgreen/internal/core/monitor"
)

// Result reports the outcome of one consequence. The caller decides what
// to do with a failure; the dispatcher itself never retries.
type Result struct {
	Success     bool
	Message     string
	ActionTaken model.Action
}

// Callbacks supply the host-facing effects. How a warning reaches the
// screen or how the host actually shuts down is the host's business.
type Callbacks struct {
	Notify    func(title, body string) error
	CloseHost func() error
}

// Dispatcher applies the configured consequence for a violation.
type Dispatcher struct {
	callbacks Callbacks
}

// New creates a dispatcher with the provided host callbacks.
func New(callbacks Callbacks) *Dispatcher {
	return &Dispatcher{callbacks: callbacks}
}

// Dispatch performs the violation's action and reports the outcome.
func (dispatcher *Dispatcher) Dispatch(violation monitor.ViolationEvent) Result {
	switch violation.Action {
	case model.ActionClose:
		return dispatcher.closeHost(violation)
	case model.ActionWarn:
		return dispatcher.warn(violation)
	default:
		return Result{
			Message:     fmt.Sprintf("unknown action %q", violation.Action),
			ActionTaken: violation.Action,
		}
	}
}

func (dispatcher *Dispatcher) warn(violation monitor.ViolationEvent) Result {
	if dispatcher.callbacks.Notify == nil {
		return Result{Message: "no warning sink configured", ActionTaken: model.ActionWarn}
	}
	body := fmt.Sprintf("Red light! You %s.", violation.Description)
	if err := dispatcher.callbacks.Notify("Red light violation", body); err != nil {
		return Result{Message: fmt.Sprintf("warn failed: %v", err), ActionTaken: model.ActionWarn}
	}
	return Result{Success: true, Message: body, ActionTaken: model.ActionWarn}
}

func (dispatcher *Dispatcher) closeHost(violation monitor.ViolationEvent) Result {
	if dispatcher.callbacks.CloseHost == nil {
		return Result{Message: "no close handler configured", ActionTaken: model.ActionClose}
	}
	if err := dispatcher.callbacks.CloseHost(); err != nil {
		return Result{Message: fmt.Sprintf("close failed: %v", err), ActionTaken: model.ActionClose}
	}
	return Result{
		Success:     true,
		Message:     fmt.Sprintf("closed after violation: %s", violation.Description),
		ActionTaken: model.ActionClose,
	}
}
