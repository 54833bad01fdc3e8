package model

import "fmt"

// Action is the consequence applied when a violation is detected.
type Action string

const (
	ActionWarn  Action = "warn"
	ActionClose Action = "close"
)

// TimerConfig defines phase durations in whole seconds.
type TimerConfig struct {
	RedDuration   int
	GreenDuration int

	UseRandom bool
	MinRandom int
	MaxRandom int
}

// SoundConfig is forwarded to the audio sink untouched by the core.
type SoundConfig struct {
	Enabled       bool
	Volume        int
	GreenTone     bool
	RedTone       bool
	ViolationTone bool
}

// GameConfig is an immutable snapshot of all game settings. Updates replace
// the whole value; a running session keeps the snapshot it captured.
type GameConfig struct {
	Timer       TimerConfig
	GracePeriod float64
	Action      Action
	ShowTimer   bool
	Sounds      SoundConfig
	WatchPath   string
}

// DefaultConfig returns the out-of-the-box game configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		Timer: TimerConfig{
			RedDuration:   15,
			GreenDuration: 30,
			UseRandom:     false,
			MinRandom:     5,
			MaxRandom:     45,
		},
		GracePeriod: 0.5,
		Action:      ActionWarn,
		ShowTimer:   true,
		Sounds: SoundConfig{
			Enabled:       true,
			Volume:        70,
			GreenTone:     true,
			RedTone:       true,
			ViolationTone: true,
		},
	}
}

// ValidationResult reports configuration problems found before a session
// starts. Errors make the config unusable; warnings do not.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

const (
	minPhaseSeconds = 1
	maxPhaseSeconds = 60
	maxRandomUpper  = 120
	// Grace period is documented as 0-5s; the narrower 0-1 bound that once
	// appeared in the settings schema is not honored here.
	maxGraceSeconds = 5
)

// Validate checks all ranges and cross-field constraints.
func (config GameConfig) Validate() ValidationResult {
	result := ValidationResult{Valid: true}

	fail := func(format string, args ...any) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	timer := config.Timer
	if timer.RedDuration < minPhaseSeconds || timer.RedDuration > maxPhaseSeconds {
		fail("red light duration %d is outside %d-%d seconds", timer.RedDuration, minPhaseSeconds, maxPhaseSeconds)
	}
	if timer.GreenDuration < minPhaseSeconds || timer.GreenDuration > maxPhaseSeconds {
		fail("green light duration %d is outside %d-%d seconds", timer.GreenDuration, minPhaseSeconds, maxPhaseSeconds)
	}

	if timer.UseRandom {
		if timer.MinRandom < minPhaseSeconds || timer.MinRandom > maxPhaseSeconds {
			fail("random minimum %d is outside %d-%d seconds", timer.MinRandom, minPhaseSeconds, maxPhaseSeconds)
		}
		if timer.MaxRandom < 2 || timer.MaxRandom > maxRandomUpper {
			fail("random maximum %d is outside 2-%d seconds", timer.MaxRandom, maxRandomUpper)
		}
		if timer.MinRandom >= timer.MaxRandom {
			fail("random minimum %d must be below maximum %d", timer.MinRandom, timer.MaxRandom)
		}
	}

	if config.GracePeriod < 0 || config.GracePeriod > maxGraceSeconds {
		fail("grace period %.2f is outside 0-%d seconds", config.GracePeriod, maxGraceSeconds)
	}

	switch config.Action {
	case ActionWarn, ActionClose:
	default:
		fail("unknown red light action %q", config.Action)
	}

	if config.Sounds.Volume < 0 || config.Sounds.Volume > 100 {
		fail("sound volume %d is outside 0-100", config.Sounds.Volume)
	}

	if !timer.UseRandom && config.GracePeriod >= float64(timer.RedDuration) {
		warn("grace period %.2fs covers the entire red phase", config.GracePeriod)
	}
	if timer.UseRandom && config.GracePeriod >= float64(timer.MinRandom) {
		warn("grace period %.2fs may cover an entire random red phase", config.GracePeriod)
	}

	return result
}
