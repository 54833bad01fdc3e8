package engine

import (
	"sync"
	"time"
)

// fakeClock drives countdowns deterministically. Each Advance step moves
// the clock one second and delivers one tick to the most recent ticker.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	ch chan time.Time
}

func (ticker *fakeTicker) C() <-chan time.Time { return ticker.ch }

func (ticker *fakeTicker) Stop() {}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) NewTicker(time.Duration) Ticker {
	ticker := &fakeTicker{ch: make(chan time.Time, 256)}
	clock.mu.Lock()
	clock.tickers = append(clock.tickers, ticker)
	clock.mu.Unlock()
	return ticker
}

// Advance moves the clock forward by whole seconds, one tick at a time.
func (clock *fakeClock) Advance(seconds int) {
	for i := 0; i < seconds; i++ {
		clock.mu.Lock()
		clock.now = clock.now.Add(time.Second)
		var ticker *fakeTicker
		if len(clock.tickers) > 0 {
			ticker = clock.tickers[len(clock.tickers)-1]
		}
		at := clock.now
		clock.mu.Unlock()

		if ticker != nil {
			ticker.ch <- at
		}
	}
}

// SetNow moves wall-clock time without producing ticks.
func (clock *fakeClock) SetNow(at time.Time) {
	clock.mu.Lock()
	clock.now = at
	clock.mu.Unlock()
}
