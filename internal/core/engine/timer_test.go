package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redgreen/internal/core/model"
)

type tickRecorder struct {
	mu          sync.Mutex
	ticks       []int
	completions []TimerMode
}

func (rec *tickRecorder) callbacks() TimerCallbacks {
	return TimerCallbacks{
		OnTick: func(_ TimerMode, remaining int) {
			rec.mu.Lock()
			rec.ticks = append(rec.ticks, remaining)
			rec.mu.Unlock()
		},
		OnComplete: func(mode TimerMode) {
			rec.mu.Lock()
			rec.completions = append(rec.completions, mode)
			rec.mu.Unlock()
		},
	}
}

func (rec *tickRecorder) tickValues() []int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]int(nil), rec.ticks...)
}

func (rec *tickRecorder) completed() []TimerMode {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]TimerMode(nil), rec.completions...)
}

func fixedTimerConfig(red, green int) model.TimerConfig {
	return model.TimerConfig{RedDuration: red, GreenDuration: green}
}

func TestTimer_FixedDurationSelection(t *testing.T) {
	timer := NewIntervalTimer(fixedTimerConfig(5, 10), newFakeClock(), TimerCallbacks{})

	timer.mu.Lock()
	red := timer.selectDurationLocked(ModeRed)
	green := timer.selectDurationLocked(ModeGreen)
	timer.mu.Unlock()

	assert.Equal(t, 5, red)
	assert.Equal(t, 10, green)
}

func TestTimer_RandomDurationWithinRange(t *testing.T) {
	config := model.TimerConfig{UseRandom: true, MinRandom: 3, MaxRandom: 15}
	timer := NewIntervalTimer(config, newFakeClock(), TimerCallbacks{})

	seen := map[int]bool{}
	timer.mu.Lock()
	for i := 0; i < 1000; i++ {
		value := timer.selectDurationLocked(ModeRed)
		require.GreaterOrEqual(t, value, 3)
		require.LessOrEqual(t, value, 15)
		seen[value] = true
	}
	timer.mu.Unlock()

	// 1000 draws over 13 values should not collapse to a single one.
	assert.Greater(t, len(seen), 1)
}

func TestTimer_DegenerateRandomRangeAlwaysMin(t *testing.T) {
	config := model.TimerConfig{UseRandom: true, MinRandom: 3, MaxRandom: 3}
	timer := NewIntervalTimer(config, newFakeClock(), TimerCallbacks{})

	timer.mu.Lock()
	defer timer.mu.Unlock()
	for i := 0; i < 100; i++ {
		assert.Equal(t, 3, timer.selectDurationLocked(ModeGreen))
	}
}

func TestTimer_CountdownTicksThenCompletes(t *testing.T) {
	clock := newFakeClock()
	rec := &tickRecorder{}
	timer := NewIntervalTimer(fixedTimerConfig(5, 3), clock, rec.callbacks())

	total := timer.Start(ModeGreen)
	require.Equal(t, 3, total)
	require.Equal(t, 3, timer.Remaining())
	require.True(t, timer.Running())

	clock.Advance(3)

	require.Eventually(t, func() bool {
		return len(rec.completed()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []TimerMode{ModeGreen}, rec.completed())
	assert.Equal(t, []int{2, 1}, rec.tickValues())
	assert.False(t, timer.Running())
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimer_StopCancelsWithoutCompletion(t *testing.T) {
	clock := newFakeClock()
	rec := &tickRecorder{}
	timer := NewIntervalTimer(fixedTimerConfig(5, 3), clock, rec.callbacks())

	timer.Start(ModeRed)
	clock.Advance(1)
	require.Eventually(t, func() bool {
		return len(rec.tickValues()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	timer.Stop()
	assert.False(t, timer.Running())

	clock.Advance(10)
	assert.Never(t, func() bool {
		return len(rec.completed()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	// A second stop is a no-op.
	timer.Stop()
	assert.False(t, timer.Running())
}

func TestTimer_RestartReplacesSession(t *testing.T) {
	clock := newFakeClock()
	rec := &tickRecorder{}
	timer := NewIntervalTimer(fixedTimerConfig(5, 3), clock, rec.callbacks())

	timer.Start(ModeGreen)
	clock.Advance(1)
	require.Eventually(t, func() bool {
		return len(rec.tickValues()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	total := timer.Start(ModeRed)
	require.Equal(t, 5, total)
	require.Equal(t, 5, timer.Remaining())

	clock.Advance(5)
	require.Eventually(t, func() bool {
		return len(rec.completed()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Only the red session completed; the abandoned green one stayed quiet.
	assert.Equal(t, []TimerMode{ModeRed}, rec.completed())
}

func TestTimer_UpdateConfigAppliesAtNextStart(t *testing.T) {
	clock := newFakeClock()
	timer := NewIntervalTimer(fixedTimerConfig(5, 3), clock, TimerCallbacks{})

	require.Equal(t, 3, timer.Start(ModeGreen))

	timer.UpdateConfig(fixedTimerConfig(5, 8))
	assert.Equal(t, 3, timer.Remaining())

	timer.Stop()
	assert.Equal(t, 8, timer.Start(ModeGreen))
}
