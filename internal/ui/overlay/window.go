package overlay

import (
	"fmt"
	"image/color"
	"time"

	"redgreen/internal/core/engine"
	"redgreen/internal/core/monitor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines status window visuals.
type Config struct {
	ShowTimer bool
}

var (
	colorStopped = color.NRGBA{R: 70, G: 70, B: 70, A: 255}
	colorGreen   = color.NRGBA{R: 34, G: 140, B: 70, A: 255}
	colorRed     = color.NRGBA{R: 170, G: 40, B: 40, A: 255}
	colorFlash   = color.NRGBA{R: 255, G: 80, B: 80, A: 255}
	colorText    = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
)

// Window is the always-visible game status panel. It paints the current
// light, the countdown and a hint line, and flashes on violations.
type Window struct {
	app        fyne.App
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	phaseLabel *canvas.Text
	timerLabel *canvas.Text
	hintLabel  *canvas.Text
	stopButton *widget.Button
	onStop     func()
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the status window in the stopped state.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("Red Light, Green Light")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(colorStopped)

	phaseLabel := canvas.NewText("Stopped", colorText)
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 26

	timerLabel := canvas.NewText("--:--", colorText)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true}
	timerLabel.TextSize = 20

	hintLabel := canvas.NewText("Press start when you are ready.", colorText)
	hintLabel.Alignment = fyne.TextAlignCenter
	hintLabel.TextSize = 13

	stopButton := widget.NewButton("Stop", nil)

	content := container.NewVBox(phaseLabel, timerLabel, hintLabel, stopButton)
	window.SetContent(container.NewMax(background, content))
	window.Resize(fyne.NewSize(260, 180))

	overlay := &Window{
		app:        app,
		window:     window,
		config:     config,
		background: background,
		phaseLabel: phaseLabel,
		timerLabel: timerLabel,
		hintLabel:  hintLabel,
		stopButton: stopButton,
	}
	overlay.applyTimerVisibility()
	return overlay
}

// SetOnStop sets the stop button handler.
func (overlay *Window) SetOnStop(handler func()) {
	overlay.onStop = handler
	overlay.stopButton.OnTapped = func() {
		if overlay.onStop != nil {
			overlay.onStop()
		}
	}
}

// Show displays the status window.
func (overlay *Window) Show() {
	overlay.window.Show()
}

// Hide hides the status window.
func (overlay *Window) Hide() {
	overlay.window.Hide()
}

// UpdateConfig updates visuals for a new configuration snapshot.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	fyne.Do(func() {
		overlay.applyTimerVisibility()
	})
}

// ObserveState repaints the panel for every engine event. Events arrive
// from the countdown goroutine, so mutations go through fyne.Do.
func (overlay *Window) ObserveState(event engine.StateChangeEvent) {
	fyne.Do(func() {
		if event.Transition() {
			overlay.applyPhaseUnsafe(event.Current)
		}
		overlay.setRemainingUnsafe(event.Current, event.Remaining)
	})
}

// Flash briefly lights the panel up after a violation.
func (overlay *Window) Flash(monitor.ViolationEvent) {
	fyne.Do(func() {
		overlay.background.FillColor = colorFlash
		canvas.Refresh(overlay.background)
	})
	time.AfterFunc(350*time.Millisecond, func() {
		fyne.Do(func() {
			overlay.applyPhaseUnsafe(engine.PhaseRed)
		})
	})
}

func (overlay *Window) applyPhaseUnsafe(phase engine.Phase) {
	switch phase {
	case engine.PhaseGreen:
		overlay.background.FillColor = colorGreen
		overlay.phaseLabel.Text = "Green light"
		overlay.hintLabel.Text = "Type away."
	case engine.PhaseRed:
		overlay.background.FillColor = colorRed
		overlay.phaseLabel.Text = "Red light"
		overlay.hintLabel.Text = "Hands off the keyboard!"
	default:
		overlay.background.FillColor = colorStopped
		overlay.phaseLabel.Text = "Stopped"
		overlay.hintLabel.Text = "Press start when you are ready."
	}
	canvas.Refresh(overlay.background)
	overlay.phaseLabel.Refresh()
	overlay.hintLabel.Refresh()
}

func (overlay *Window) setRemainingUnsafe(phase engine.Phase, remaining int) {
	if phase == engine.PhaseStopped {
		overlay.timerLabel.Text = "--:--"
	} else {
		overlay.timerLabel.Text = formatSeconds(remaining)
	}
	overlay.timerLabel.Refresh()
}

func (overlay *Window) applyTimerVisibility() {
	if overlay.config.ShowTimer {
		overlay.timerLabel.Show()
	} else {
		overlay.timerLabel.Hide()
	}
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
