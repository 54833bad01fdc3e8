package preferences

import (
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)

	redEntry    *widget.Entry
	greenEntry  *widget.Entry
	graceEntry  *widget.Entry
	randomCheck *widget.Check
	minEntry    *widget.Entry
	maxEntry    *widget.Entry
	actionPick  *widget.Select
	timerCheck  *widget.Check
	soundCheck  *widget.Check
	volume      *widget.Slider
	watchEntry  *widget.Entry
	problems    *canvas.Text
}

// New creates a preferences window. onSave receives a validated settings
// snapshot whenever the user hits Save.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Red Light, Green Light Settings")

	redEntry := widget.NewEntry()
	greenEntry := widget.NewEntry()
	graceEntry := widget.NewEntry()
	minEntry := widget.NewEntry()
	maxEntry := widget.NewEntry()
	watchEntry := widget.NewEntry()

	randomCheck := widget.NewCheck("Random phase lengths", nil)
	timerCheck := widget.NewCheck("Show countdown", nil)
	soundCheck := widget.NewCheck("Enable sounds", nil)

	actionPick := widget.NewSelect([]string{"warn", "close"}, nil)

	volume := widget.NewSlider(0, 100)
	volume.Step = 1

	problems := canvas.NewText("", color.NRGBA{R: 200, G: 60, B: 60, A: 255})
	problems.TextSize = 12

	form := container.NewVBox(
		widget.NewLabelWithStyle("Phases", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Red light lasts"), redEntry, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Green light lasts"), greenEntry, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Grace period"), graceEntry, widget.NewLabel("sec")),
		randomCheck,
		container.NewHBox(widget.NewLabel("Random between"), minEntry, widget.NewLabel("and"), maxEntry, widget.NewLabel("sec")),
		widget.NewLabelWithStyle("Consequences", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("On violation"), actionPick),
		timerCheck,
		soundCheck,
		widget.NewLabel("Sound volume"),
		volume,
		widget.NewLabelWithStyle("Watched folder", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		watchEntry,
		problems,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 520))

	prefs := &Window{
		window:      window,
		settings:    settings,
		onSave:      onSave,
		redEntry:    redEntry,
		greenEntry:  greenEntry,
		graceEntry:  graceEntry,
		randomCheck: randomCheck,
		minEntry:    minEntry,
		maxEntry:    maxEntry,
		actionPick:  actionPick,
		timerCheck:  timerCheck,
		soundCheck:  soundCheck,
		volume:      volume,
		watchEntry:  watchEntry,
		problems:    problems,
	}
	prefs.applySettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.applySettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values, e.g. after an external edit of
// the settings file.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.applySettings(settings)
}

func (prefs *Window) applySettings(settings Settings) {
	prefs.redEntry.SetText(strconv.Itoa(settings.RedSeconds))
	prefs.greenEntry.SetText(strconv.Itoa(settings.GreenSeconds))
	prefs.graceEntry.SetText(strconv.FormatFloat(settings.GracePeriod, 'f', -1, 64))
	prefs.randomCheck.SetChecked(settings.UseRandom)
	prefs.minEntry.SetText(strconv.Itoa(settings.MinRandomSeconds))
	prefs.maxEntry.SetText(strconv.Itoa(settings.MaxRandomSeconds))
	prefs.actionPick.SetSelected(settings.Action)
	prefs.timerCheck.SetChecked(settings.ShowTimer)
	prefs.soundCheck.SetChecked(settings.SoundsEnabled)
	prefs.volume.Value = float64(settings.SoundVolume)
	prefs.volume.Refresh()
	prefs.watchEntry.SetText(settings.WatchPath)
	prefs.setProblems(nil)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if seconds, ok := parsePositiveInt(prefs.redEntry.Text); ok {
		settings.RedSeconds = seconds
	}
	if seconds, ok := parsePositiveInt(prefs.greenEntry.Text); ok {
		settings.GreenSeconds = seconds
	}
	if grace, err := strconv.ParseFloat(strings.TrimSpace(prefs.graceEntry.Text), 64); err == nil {
		settings.GracePeriod = grace
	}
	settings.UseRandom = prefs.randomCheck.Checked
	if seconds, ok := parsePositiveInt(prefs.minEntry.Text); ok {
		settings.MinRandomSeconds = seconds
	}
	if seconds, ok := parsePositiveInt(prefs.maxEntry.Text); ok {
		settings.MaxRandomSeconds = seconds
	}
	if prefs.actionPick.Selected != "" {
		settings.Action = prefs.actionPick.Selected
	}
	settings.ShowTimer = prefs.timerCheck.Checked
	settings.SoundsEnabled = prefs.soundCheck.Checked
	settings.SoundVolume = int(prefs.volume.Value)
	settings.WatchPath = strings.TrimSpace(prefs.watchEntry.Text)

	result := settings.Validate()
	if !result.Valid {
		prefs.setProblems(result.Errors)
		return
	}
	prefs.setProblems(result.Warnings)

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func (prefs *Window) setProblems(lines []string) {
	prefs.problems.Text = strings.Join(lines, "\n")
	prefs.problems.Refresh()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
