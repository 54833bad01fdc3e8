package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"redgreen/internal/action"
	"redgreen/internal/audio"
	"redgreen/internal/core/engine"
	"redgreen/internal/core/monitor"
	"redgreen/internal/input"
	"redgreen/internal/platform"
	"redgreen/internal/storage"
	"redgreen/internal/ui/overlay"
	"redgreen/internal/ui/preferences"
	"redgreen/internal/ui/tray"
	"redgreen/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const appName = "RedGreen"

func main() {
	var prefsWindow *preferences.Window

	guard, err := platform.AcquireSingleInstance(appName, func() {
		if prefsWindow != nil {
			fyne.Do(prefsWindow.Show)
		}
	})
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.redgreen.app")
	fyneApp.SetIcon(resources.MustIcon("logo.svg"))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	settings := loadSettings()
	config := settings.GameConfig()

	game := engine.New(config, engine.SystemClock)
	violations := monitor.New(game, engine.SystemClock, config)

	player, err := audio.New(config.Sounds)
	if err != nil {
		log.Printf("audio unavailable: %v", err)
	}

	statusWindow := overlay.New(fyneApp, overlay.Config{ShowTimer: config.ShowTimer})
	statusWindow.SetOnStop(func() {
		game.Stop()
	})

	dispatcher := action.New(action.Callbacks{
		Notify: func(title, body string) error {
			fyneApp.SendNotification(fyne.NewNotification(title, body))
			return nil
		},
		CloseHost: func() error {
			game.Stop()
			fyne.Do(fyneApp.Quit)
			return nil
		},
	})

	watchPath := resolveWatchPath(settings.WatchPath)
	editWatcher, err := input.New(watchPath, violations.HandleChange)
	if err != nil {
		log.Printf("watch %s: %v", watchPath, err)
	}

	greenIcon := resources.MustIcon("green.svg")
	redIcon := resources.MustIcon("red.svg")
	idleIcon := resources.MustIcon("idle.svg")

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnToggle: func() {
			if !game.Active() {
				result := game.Config().Validate()
				if !result.Valid {
					fyneApp.SendNotification(fyne.NewNotification(
						"Settings need fixing",
						strings.Join(result.Errors, "; "),
					))
					return
				}
			}
			game.Toggle()
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			game.Close()
			fyneApp.Quit()
		},
	})
	desktopApp.SetSystemTrayIcon(idleIcon)

	applyConfig := func(updated preferences.Settings) {
		settings = updated
		next := settings.GameConfig()
		game.UpdateConfig(next)
		violations.UpdateConfig(next)
		player.UpdateConfig(next.Sounds)
		statusWindow.UpdateConfig(overlay.Config{ShowTimer: next.ShowTimer})

		nextPath := resolveWatchPath(settings.WatchPath)
		if nextPath != watchPath {
			if editWatcher != nil {
				_ = editWatcher.Close()
			}
			editWatcher, err = input.New(nextPath, violations.HandleChange)
			if err != nil {
				log.Printf("watch %s: %v", nextPath, err)
			}
			watchPath = nextPath
		}
	}

	store, err := storage.NewStore(appName, func(updated preferences.Settings) {
		// Settings file rewritten outside the app; treat it like a save.
		fyne.Do(func() {
			applyConfig(updated)
			prefsWindow.UpdateSettings(updated)
		})
	})
	if err != nil {
		log.Printf("settings store: %v", err)
	}

	prefsWindow = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		applyConfig(updated)
		if store != nil {
			if err := store.Save(updated); err != nil {
				log.Printf("save settings: %v", err)
			}
		}
	})

	// Engine events fan out to every sink plus the violation monitor.
	game.Subscribe(violations.ObserveState)
	game.Subscribe(func(event engine.StateChangeEvent) {
		if !event.Transition() {
			return
		}
		// Monitoring runs in lockstep with session activity.
		if event.Current == engine.PhaseStopped {
			violations.StopMonitoring()
		} else if event.Previous == engine.PhaseStopped {
			violations.StartMonitoring()
		}
	})
	game.Subscribe(statusWindow.ObserveState)
	game.Subscribe(player.ObserveState)
	game.Subscribe(func(event engine.StateChangeEvent) {
		if event.Transition() {
			trayManager.SetPhase(event.Current)
			switch event.Current {
			case engine.PhaseGreen:
				desktopApp.SetSystemTrayIcon(greenIcon)
			case engine.PhaseRed:
				desktopApp.SetSystemTrayIcon(redIcon)
			default:
				desktopApp.SetSystemTrayIcon(idleIcon)
			}
		}
		if event.Current != engine.PhaseStopped {
			trayManager.SetStatus(fmt.Sprintf("%s light for %02d:%02d",
				event.Current, event.Remaining/60, event.Remaining%60))
		}
	})

	violations.Subscribe(func(violation monitor.ViolationEvent) {
		result := dispatcher.Dispatch(violation)
		if !result.Success {
			log.Printf("violation action %s: %s", result.ActionTaken, result.Message)
		}
	})
	violations.Subscribe(player.ObserveViolation)
	violations.Subscribe(statusWindow.Flash)

	defer func() {
		if editWatcher != nil {
			_ = editWatcher.Close()
		}
		if store != nil {
			_ = store.Close()
		}
		game.Close()
	}()

	statusWindow.Show()
	prefsWindow.Show()
	fyneApp.Run()
}

func loadSettings() preferences.Settings {
	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
		return preferences.DefaultSettings()
	}
	if result := settings.Validate(); !result.Valid {
		log.Printf("stored settings invalid (%s), using defaults", strings.Join(result.Errors, "; "))
		return preferences.DefaultSettings()
	}
	return settings
}

func resolveWatchPath(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
