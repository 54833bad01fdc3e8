package preferences

import (
	"redgreen/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	RedSeconds   int
	GreenSeconds int
	GracePeriod  float64

	UseRandom        bool
	MinRandomSeconds int
	MaxRandomSeconds int

	Action    string
	ShowTimer bool

	SoundsEnabled bool
	SoundVolume   int

	WatchPath string
}

// DefaultSettings returns default settings for the game.
func DefaultSettings() Settings {
	config := model.DefaultConfig()
	return Settings{
		RedSeconds:       config.Timer.RedDuration,
		GreenSeconds:     config.Timer.GreenDuration,
		GracePeriod:      config.GracePeriod,
		UseRandom:        config.Timer.UseRandom,
		MinRandomSeconds: config.Timer.MinRandom,
		MaxRandomSeconds: config.Timer.MaxRandom,
		Action:           string(config.Action),
		ShowTimer:        config.ShowTimer,
		SoundsEnabled:    config.Sounds.Enabled,
		SoundVolume:      config.Sounds.Volume,
	}
}

// GameConfig converts settings to the engine's configuration snapshot.
func (settings Settings) GameConfig() model.GameConfig {
	return model.GameConfig{
		Timer: model.TimerConfig{
			RedDuration:   settings.RedSeconds,
			GreenDuration: settings.GreenSeconds,
			UseRandom:     settings.UseRandom,
			MinRandom:     settings.MinRandomSeconds,
			MaxRandom:     settings.MaxRandomSeconds,
		},
		GracePeriod: settings.GracePeriod,
		Action:      model.Action(settings.Action),
		ShowTimer:   settings.ShowTimer,
		Sounds: model.SoundConfig{
			Enabled:       settings.SoundsEnabled,
			Volume:        settings.SoundVolume,
			GreenTone:     true,
			RedTone:       true,
			ViolationTone: true,
		},
		WatchPath: settings.WatchPath,
	}
}

// Validate runs the engine-level validation on the converted config.
func (settings Settings) Validate() model.ValidationResult {
	return settings.GameConfig().Validate()
}
