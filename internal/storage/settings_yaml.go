package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"redgreen/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	RedSeconds       int     `yaml:"red_light_seconds"`
	GreenSeconds     int     `yaml:"green_light_seconds"`
	GracePeriod      float64 `yaml:"grace_period_seconds"`
	UseRandom        bool    `yaml:"use_random_timing"`
	MinRandomSeconds int     `yaml:"random_min_seconds"`
	MaxRandomSeconds int     `yaml:"random_max_seconds"`
	Action           string  `yaml:"red_light_action"`
	ShowTimer        bool    `yaml:"show_timer"`
	SoundsEnabled    bool    `yaml:"enable_sounds"`
	SoundVolume      int     `yaml:"sound_volume"`
	WatchPath        string  `yaml:"watch_path"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFrom(configPath)
}

// LoadSettingsFrom reads user preferences from the given YAML file.
func LoadSettingsFrom(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsTo(configPath, settings)
}

// SaveSettingsTo writes user preferences to the given YAML file.
func SaveSettingsTo(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		RedSeconds:       settings.RedSeconds,
		GreenSeconds:     settings.GreenSeconds,
		GracePeriod:      settings.GracePeriod,
		UseRandom:        settings.UseRandom,
		MinRandomSeconds: settings.MinRandomSeconds,
		MaxRandomSeconds: settings.MaxRandomSeconds,
		Action:           settings.Action,
		ShowTimer:        settings.ShowTimer,
		SoundsEnabled:    settings.SoundsEnabled,
		SoundVolume:      settings.SoundVolume,
		WatchPath:        settings.WatchPath,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// applyYamlSettings copies file values over the defaults, keeping any
// field that is missing or clearly out of range at its default.
func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.RedSeconds >= 1 && fileData.RedSeconds <= 60 {
		settings.RedSeconds = fileData.RedSeconds
	}
	if fileData.GreenSeconds >= 1 && fileData.GreenSeconds <= 60 {
		settings.GreenSeconds = fileData.GreenSeconds
	}
	if fileData.GracePeriod >= 0 && fileData.GracePeriod <= 5 {
		settings.GracePeriod = fileData.GracePeriod
	}
	if fileData.MinRandomSeconds >= 1 && fileData.MinRandomSeconds <= 60 {
		settings.MinRandomSeconds = fileData.MinRandomSeconds
	}
	if fileData.MaxRandomSeconds >= 2 && fileData.MaxRandomSeconds <= 120 {
		settings.MaxRandomSeconds = fileData.MaxRandomSeconds
	}
	if fileData.Action == "warn" || fileData.Action == "close" {
		settings.Action = fileData.Action
	}
	if fileData.SoundVolume >= 0 && fileData.SoundVolume <= 100 {
		settings.SoundVolume = fileData.SoundVolume
	}
	if fileData.WatchPath != "" {
		settings.WatchPath = fileData.WatchPath
	}

	settings.UseRandom = fileData.UseRandom
	settings.ShowTimer = fileData.ShowTimer
	settings.SoundsEnabled = fileData.SoundsEnabled
}
