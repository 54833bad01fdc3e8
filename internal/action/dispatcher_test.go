package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redgreen/internal/core/model"
	"redgreen/internal/core/monitor"
)

func violation(action model.Action) monitor.ViolationEvent {
	return monitor.ViolationEvent{
		Source:      "notes.txt",
		Description: "wrote notes.txt",
		Action:      action,
	}
}

func TestDispatch_WarnNotifies(t *testing.T) {
	var title, body string
	dispatcher := New(Callbacks{
		Notify: func(gotTitle, gotBody string) error {
			title, body = gotTitle, gotBody
			return nil
		},
	})

	result := dispatcher.Dispatch(violation(model.ActionWarn))

	require.True(t, result.Success)
	assert.Equal(t, model.ActionWarn, result.ActionTaken)
	assert.Equal(t, "Red light violation", title)
	assert.Contains(t, body, "wrote notes.txt")
}

func TestDispatch_WarnFailureReported(t *testing.T) {
	dispatcher := New(Callbacks{
		Notify: func(string, string) error { return errors.New("notification service down") },
	})

	result := dispatcher.Dispatch(violation(model.ActionWarn))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "notification service down")
	assert.Equal(t, model.ActionWarn, result.ActionTaken)
}

func TestDispatch_CloseInvokesHost(t *testing.T) {
	closed := false
	dispatcher := New(Callbacks{
		CloseHost: func() error {
			closed = true
			return nil
		},
	})

	result := dispatcher.Dispatch(violation(model.ActionClose))

	require.True(t, result.Success)
	assert.True(t, closed)
	assert.Equal(t, model.ActionClose, result.ActionTaken)
}

func TestDispatch_MissingCallbacksFailSoftly(t *testing.T) {
	dispatcher := New(Callbacks{})

	warn := dispatcher.Dispatch(violation(model.ActionWarn))
	assert.False(t, warn.Success)
	assert.NotEmpty(t, warn.Message)

	closeResult := dispatcher.Dispatch(violation(model.ActionClose))
	assert.False(t, closeResult.Success)
	assert.NotEmpty(t, closeResult.Message)
}

func TestDispatch_UnknownActionFails(t *testing.T) {
	result := dispatcher().Dispatch(violation("detonate"))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "unknown action")
}

func dispatcher() *Dispatcher {
	return New(Callbacks{
		Notify:    func(string, string) error { return nil },
		CloseHost: func() error { return nil },
	})
}
