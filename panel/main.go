package main

import (
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/tester"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		simFlag    = flag.Bool("sim", false, "Use the simulated fixture instead of a serial unit")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.greenlight.cabletester")

	window := application.NewWindow("Cable Tester")
	window.Resize(fyne.NewSize(520, 420))
	window.CenterOnScreen()

	state := &appState{
		cfg:    cfg,
		window: window,
		useSim: *simFlag,
	}

	results := createResultsPanel(state)
	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(
		toolbar,
		state.statusLabel,
		nil,
		nil,
		results,
	))

	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	window  fyne.Window
	backend backend
	useSim  bool
	busy    bool

	connectBtn   *widget.Button
	runBtn       *widget.Button
	calibrateBtn *widget.Button

	verdictLabel *widget.Label
	tipLabel     *widget.Label
	ringLabel    *widget.Label
	sleeveLabel  *widget.Label
	polLabel     *widget.Label
	resLabel     *widget.Label
	capLabel     *widget.Label
	statusLabel  *widget.Label
}

// createToolbar creates the toolbar with Connect, Run and Calibrate buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	runBtn := widget.NewButtonWithIcon("Run Test", theme.MediaPlayIcon(), func() {
		handleRun(state)
	})
	runBtn.Disable()
	state.runBtn = runBtn

	calibrateBtn := widget.NewButtonWithIcon("Calibrate", theme.SettingsIcon(), func() {
		handleCalibrate(state)
	})
	calibrateBtn.Disable()
	state.calibrateBtn = calibrateBtn

	return container.NewHBox(connectBtn, runBtn, calibrateBtn)
}

// createResultsPanel creates the per-measurement result labels.
func createResultsPanel(state *appState) fyne.CanvasObject {
	state.verdictLabel = widget.NewLabel("—")
	state.verdictLabel.TextStyle = fyne.TextStyle{Bold: true}
	state.tipLabel = widget.NewLabel("—")
	state.ringLabel = widget.NewLabel("—")
	state.sleeveLabel = widget.NewLabel("—")
	state.polLabel = widget.NewLabel("—")
	state.resLabel = widget.NewLabel("—")
	state.capLabel = widget.NewLabel("—")
	state.statusLabel = widget.NewLabel("Not connected")

	grid := container.New(layout.NewFormLayout(),
		widget.NewLabel("Verdict"), state.verdictLabel,
		widget.NewLabel("Tip continuity"), state.tipLabel,
		widget.NewLabel("Ring continuity"), state.ringLabel,
		widget.NewLabel("Sleeve continuity"), state.sleeveLabel,
		widget.NewLabel("Polarity"), state.polLabel,
		widget.NewLabel("Loop resistance"), state.resLabel,
		widget.NewLabel("Capacitance"), state.capLabel,
	)
	return container.NewPadded(grid)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.backend != nil {
		state.backend.Close()
		state.backend = nil
		state.runBtn.Disable()
		state.calibrateBtn.Disable()
		state.connectBtn.SetText("Connect")
		state.statusLabel.SetText("Not connected")
		return
	}

	var b backend
	if state.useSim {
		b = newSimBackend(state.cfg)
	} else {
		b = newSerialBackend(state.cfg)
	}

	if err := b.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		return
	}
	state.backend = b
	state.runBtn.Enable()
	state.calibrateBtn.Enable()
	state.connectBtn.SetText("Disconnect")

	refreshStatus(state)
}

// handleRun runs a full test in the background and shows the outcome.
func handleRun(state *appState) {
	if state.backend == nil || state.busy {
		return
	}
	state.busy = true
	state.runBtn.Disable()
	state.statusLabel.SetText("Testing...")

	go func() {
		r, err := state.backend.RunTest()

		fyne.Do(func() {
			state.busy = false
			state.runBtn.Enable()
			if err != nil {
				state.statusLabel.SetText("Not connected")
				dialog.ShowError(err, state.window)
				return
			}
			showResult(state, r)
			refreshStatus(state)
		})
	}()
}

// handleCalibrate runs fixture calibration in the background.
func handleCalibrate(state *appState) {
	if state.backend == nil || state.busy {
		return
	}
	state.busy = true
	state.calibrateBtn.Disable()
	state.statusLabel.SetText("Calibrating... remove the cable")

	go func() {
		stray, err := state.backend.Calibrate()

		fyne.Do(func() {
			state.busy = false
			state.calibrateBtn.Enable()
			if err != nil {
				dialog.ShowError(fmt.Errorf("calibration failed: %w", err), state.window)
				refreshStatus(state)
				return
			}
			dialog.ShowInformation("Calibration",
				fmt.Sprintf("Calibration complete.\nStray capacitance: %.1f pF", stray),
				state.window)
			refreshStatus(state)
		})
	}()
}

// showResult fills the result labels from a finished test.
func showResult(state *appState, r tester.Result) {
	if r.Pass {
		state.verdictLabel.SetText("PASS")
	} else {
		state.verdictLabel.SetText("FAIL")
	}
	state.tipLabel.SetText(okFail(r.TipContinuity))
	state.ringLabel.SetText(okFail(r.RingContinuity))
	state.sleeveLabel.SetText(okFail(r.SleeveContinuity))
	state.polLabel.SetText(okFail(r.PolarityCorrect))

	if r.ResistanceOpen {
		state.resLabel.SetText("OPEN")
	} else {
		state.resLabel.SetText(fmt.Sprintf("%.2f Ω", r.ResistanceOhms))
	}
	if r.CapacitanceValid {
		state.capLabel.SetText(fmt.Sprintf("%.1f pF", r.CapacitancePF))
	} else {
		state.capLabel.SetText("NO CHARGE")
	}
}

// refreshStatus updates the status bar from the fixture.
func refreshStatus(state *appState) {
	s, err := state.backend.Status()
	if err != nil {
		state.statusLabel.SetText("Status unavailable")
		return
	}
	calText := "uncalibrated"
	if s.Calibrated {
		calText = "calibrated"
	}
	cable := "no cable"
	if s.Inserted {
		cable = "cable inserted"
	}
	state.statusLabel.SetText(fmt.Sprintf("Unit %s · %s · supply %.2f V · %s",
		state.backend.ID(), calText, s.Supply, cable))
}

func okFail(ok bool) string {
	if ok {
		return "OK"
	}
	return "FAIL"
}
