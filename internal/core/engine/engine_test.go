package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redgreen/internal/core/model"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []StateChangeEvent
}

func (rec *eventRecorder) record(event StateChangeEvent) {
	rec.mu.Lock()
	rec.events = append(rec.events, event)
	rec.mu.Unlock()
}

func (rec *eventRecorder) snapshot() []StateChangeEvent {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]StateChangeEvent(nil), rec.events...)
}

func (rec *eventRecorder) transitions() []StateChangeEvent {
	var out []StateChangeEvent
	for _, event := range rec.snapshot() {
		if event.Transition() {
			out = append(out, event)
		}
	}
	return out
}

func testGameConfig(red, green int) model.GameConfig {
	config := model.DefaultConfig()
	config.Timer.RedDuration = red
	config.Timer.GreenDuration = green
	return config
}

func TestStart_EmitsImmediateGreenTransition(t *testing.T) {
	clock := newFakeClock()
	game := New(testGameConfig(5, 10), clock)
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, PhaseStopped, events[0].Previous)
	assert.Equal(t, PhaseGreen, events[0].Current)
	assert.Equal(t, 10, events[0].Remaining)

	assert.Equal(t, PhaseGreen, game.CurrentPhase())
	assert.True(t, game.Active())
	assert.Equal(t, 10, game.Remaining())
}

func TestStart_WhileActiveIsNoOp(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()
	game.Start()

	assert.Len(t, rec.snapshot(), 1)
	assert.Equal(t, PhaseGreen, game.CurrentPhase())
	assert.Equal(t, 10, game.Remaining())
}

func TestStop_IsIdempotent(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()
	game.Stop()
	require.Equal(t, PhaseStopped, game.CurrentPhase())
	require.Equal(t, 0, game.Remaining())
	countAfterFirst := len(rec.snapshot())

	game.Stop()
	assert.Equal(t, PhaseStopped, game.CurrentPhase())
	assert.Len(t, rec.snapshot(), countAfterFirst)
}

func TestToggle_MatchesStartAndStop(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())

	game.Toggle()
	assert.Equal(t, PhaseGreen, game.CurrentPhase())

	game.Toggle()
	assert.Equal(t, PhaseStopped, game.CurrentPhase())
	assert.False(t, game.Active())
}

func TestGreenPhaseRunsToCompletionThenRed(t *testing.T) {
	clock := newFakeClock()
	game := New(testGameConfig(5, 10), clock)
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()
	clock.Advance(10)

	require.Eventually(t, func() bool {
		return game.CurrentPhase() == PhaseRed
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(rec.transitions()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	transitions := rec.transitions()
	assert.Equal(t, PhaseStopped, transitions[0].Previous)
	assert.Equal(t, PhaseGreen, transitions[0].Current)
	assert.Equal(t, 10, transitions[0].Remaining)
	assert.Equal(t, PhaseGreen, transitions[1].Previous)
	assert.Equal(t, PhaseRed, transitions[1].Current)
	assert.Equal(t, 5, transitions[1].Remaining)

	// Nine countdown ticks separate the two transitions.
	var ticks []int
	for _, event := range rec.snapshot() {
		if !event.Transition() {
			ticks = append(ticks, event.Remaining)
		}
	}
	assert.Equal(t, []int{9, 8, 7, 6, 5, 4, 3, 2, 1}, ticks)
}

func TestRedPhaseCyclesBackToGreen(t *testing.T) {
	clock := newFakeClock()
	game := New(testGameConfig(2, 3), clock)
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()
	clock.Advance(3)
	require.Eventually(t, func() bool {
		return game.CurrentPhase() == PhaseRed
	}, 2*time.Second, 5*time.Millisecond)

	clock.Advance(2)
	require.Eventually(t, func() bool {
		return len(rec.transitions()) == 3
	}, 2*time.Second, 5*time.Millisecond)

	last := rec.transitions()[2]
	assert.Equal(t, PhaseRed, last.Previous)
	assert.Equal(t, PhaseGreen, last.Current)
	assert.Equal(t, 3, last.Remaining)
}

func TestCompletionAfterStopIsIgnored(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())
	rec := &eventRecorder{}
	game.Subscribe(rec.record)

	game.Start()
	game.Stop()
	countAfterStop := len(rec.snapshot())

	// Simulates a completion already in flight when the stop landed.
	game.handleCompletion(ModeGreen)

	assert.Equal(t, PhaseStopped, game.CurrentPhase())
	assert.Len(t, rec.snapshot(), countAfterStop)
}

func TestUpdateConfig_DoesNotTouchLiveSession(t *testing.T) {
	clock := newFakeClock()
	game := New(testGameConfig(5, 10), clock)

	game.Start()
	require.Equal(t, 10, game.Remaining())

	game.UpdateConfig(testGameConfig(5, 20))
	assert.Equal(t, PhaseGreen, game.CurrentPhase())
	assert.Equal(t, 10, game.Remaining())

	game.Stop()
	game.Start()
	assert.Equal(t, 20, game.Remaining())
}

func TestSubscribe_PanickingListenerDoesNotBlockOthers(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())
	rec := &eventRecorder{}

	game.Subscribe(func(StateChangeEvent) { panic("listener exploded") })
	game.Subscribe(rec.record)

	require.NotPanics(t, game.Start)
	assert.Len(t, rec.snapshot(), 1)
	assert.Equal(t, PhaseGreen, game.CurrentPhase())
}

func TestSessionDuration(t *testing.T) {
	clock := newFakeClock()
	game := New(testGameConfig(5, 10), clock)

	assert.Zero(t, game.SessionDuration())

	game.Start()
	clock.SetNow(clock.Now().Add(42 * time.Second))
	assert.Equal(t, 42*time.Second, game.SessionDuration())

	game.Stop()
	assert.Zero(t, game.SessionDuration())
}

func TestClose_IsIdempotentAndStops(t *testing.T) {
	game := New(testGameConfig(5, 10), newFakeClock())
	game.Start()

	game.Close()
	assert.Equal(t, PhaseStopped, game.CurrentPhase())

	game.Close()
	game.Start()
	assert.Equal(t, PhaseStopped, game.CurrentPhase())
}
