package audio

import (
	"fmt"
	"sync"
	"time"

	"redgreen/internal/core/engine"
	"redgreen/internal/core/model"
	"redgreen/internal/core/monitor"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/speaker"
)

const (
	greenFreq     = 880
	redFreq       = 440
	violationFreq = 220

	toneLength = 180 * time.Millisecond
)

// Player renders game events as short tones. It is a pure consumer of
// engine and monitor events; the core never waits on it.
type Player struct {
	mu         sync.Mutex
	config     model.SoundConfig
	sampleRate beep.SampleRate
	ready      bool
}

// New initializes the speaker. When no audio device is available the
// returned player stays silent and the error tells the caller why.
func New(config model.SoundConfig) (*Player, error) {
	player := &Player{
		config:     config,
		sampleRate: beep.SampleRate(44100),
	}
	if err := speaker.Init(player.sampleRate, player.sampleRate.N(time.Second/10)); err != nil {
		return player, fmt.Errorf("init speaker: %w", err)
	}
	player.ready = true
	return player, nil
}

// UpdateConfig swaps the sound settings.
func (player *Player) UpdateConfig(config model.SoundConfig) {
	player.mu.Lock()
	player.config = config
	player.mu.Unlock()
}

// ObserveState plays a phase cue on red/green transitions.
func (player *Player) ObserveState(event engine.StateChangeEvent) {
	if !event.Transition() {
		return
	}

	player.mu.Lock()
	config := player.config
	player.mu.Unlock()

	switch event.Current {
	case engine.PhaseGreen:
		if config.GreenTone && event.Previous != engine.PhaseStopped {
			player.play(greenFreq, toneLength)
		}
	case engine.PhaseRed:
		if config.RedTone {
			player.play(redFreq, toneLength)
		}
	}
}

// ObserveViolation plays the violation buzz.
func (player *Player) ObserveViolation(monitor.ViolationEvent) {
	player.mu.Lock()
	enabled := player.config.ViolationTone
	player.mu.Unlock()
	if enabled {
		player.play(violationFreq, 2*toneLength)
	}
}

func (player *Player) play(freq int, length time.Duration) {
	player.mu.Lock()
	ready := player.ready
	config := player.config
	sampleRate := player.sampleRate
	player.mu.Unlock()

	if !ready || !config.Enabled || config.Volume <= 0 {
		return
	}

	tone, err := generators.SinTone(sampleRate, freq)
	if err != nil {
		return
	}

	streamer := &effects.Volume{
		Streamer: beep.Take(sampleRate.N(length), tone),
		Base:     2,
		Volume:   volumeGain(config.Volume),
	}
	speaker.Play(streamer)
}

// volumeGain maps the 0-100 setting onto a logarithmic gain where 100 is
// unity and 0 is handled by the caller as silence.
func volumeGain(volume int) float64 {
	if volume > 100 {
		volume = 100
	}
	return (float64(volume) - 100) / 20
}
