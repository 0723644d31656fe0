//go:build tinygo

//go:generate tinygo flash -target=arduino-nano33

package main

import (
	"machine"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/report"
	"github.com/greenlight/cabletester/pkg/tester"
)

const UNIT_ID = "GL-CT-1"

var (
	uart = machine.Serial

	// Serial buffer for reading command lines
	lineBuffer [16]byte
	linePos    int
)

// memStore keeps the calibration record in RAM; the fixture is recalibrated
// each session.
type memStore struct {
	data cal.Data
}

func (s *memStore) Load() (cal.Data, error) { return s.data, nil }
func (s *memStore) Save(d cal.Data) error   { s.data = d; return nil }

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	cfg := config.Default()
	tr, err := tester.New(newBoard(), cfg, &memStore{data: cal.Default()})
	if err != nil {
		println("ERROR:" + err.Error())
		for {
		}
	}

	println("READY")

	for {
		cmd, ok := readCommand()
		if !ok {
			continue
		}
		dispatch(tr, cfg, cmd)
	}
}

// readCommand accumulates serial bytes until a newline and returns the
// completed command. ok is false while a line is still in flight.
func readCommand() (string, bool) {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if linePos == 0 {
				continue
			}
			cmd := string(lineBuffer[:linePos])
			linePos = 0
			return cmd, true
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		if linePos < len(lineBuffer) {
			lineBuffer[linePos] = data
			linePos++
		}
		// Overlong lines are truncated and rejected by the dispatcher.
	}
	return "", false
}

func dispatch(tr *tester.Tester, cfg *config.Config, cmd string) {
	switch cmd {
	case "ID":
		println("ID:" + UNIT_ID)

	case "TEST":
		if !tr.Inserted() {
			println("ERROR:no cable inserted")
			return
		}
		println(report.Result(tr.Run()))

	case "CONT":
		c := tr.MeasureContinuity()
		println(report.Continuity(
			c.Tip.Closed, c.Ring.Closed, c.Sleeve.Closed, c.Polarity.Correct))

	case "RES":
		println(report.Resistance(
			tr.MeasureResistance(), cfg.Limits.MaxResistanceOhms,
			tr.Calibration().Calibrated))

	case "CAP":
		println(report.Capacitance(
			tr.MeasureCapacitance(), cfg.Limits.CapMinPF, cfg.Limits.CapMaxPF))

	case "CAL":
		if tr.Inserted() {
			println("ERROR:remove cable before calibrating")
			return
		}
		data, err := tr.Calibrate()
		if err != nil {
			println("ERROR:" + err.Error())
			return
		}
		for _, line := range report.CapacitanceCal(data.CapacitanceOffset) {
			println(line)
		}
		println(report.Calibration(data.CapacitanceOffset))

	case "STATUS":
		println(report.Status(
			tr.Calibration().Calibrated, tr.SupplyVoltage(), tr.Inserted()))

	case "RESET":
		tr.Reset()
		println("RESET:OK")

	default:
		println("ERROR:unknown command " + cmd)
	}
}
