// Package report renders measurement outcomes as the line-oriented,
// colon-delimited ASCII the station protocol speaks. One line per outcome;
// capacitance to one decimal, offsets to zero decimals, ohms to two.
package report

import (
	"fmt"

	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/tester"
)

// Capacitance formats a capacitance measurement.
// Example: CAP:PASS:PF:123.4:TIME_US:45678:SAMPLES:5
func Capacitance(s meter.CapacitanceSample, minPF, maxPF float64) string {
	if !s.Valid {
		return "CAP:FAIL:TIMEOUT:No charge detected"
	}
	verdict := "WARN"
	if s.Picofarads >= minPF && s.Picofarads <= maxPF {
		verdict = "PASS"
	}
	return fmt.Sprintf("CAP:%s:PF:%.1f:TIME_US:%d:SAMPLES:%d",
		verdict, s.Picofarads, s.ChargeTimeUS, s.SampleCount)
}

// CapacitanceCal formats the stray-capacitance calibration report: the
// measured value, then the suggested offset update.
func CapacitanceCal(rawPF float64) []string {
	return []string{
		fmt.Sprintf("CAP_CAL:Measured stray capacitance: %.1f pF", rawPF),
		fmt.Sprintf("CAP_CAL:Update capacitance offset to %.0f pF", rawPF),
	}
}

// Resistance formats a resistance measurement.
// Example: RES:PASS:OHM:0.52
func Resistance(r meter.ResistanceReading, maxOhms float64, calibrated bool) string {
	if r.Open {
		return "RES:FAIL:OPEN"
	}
	verdict := "FAIL"
	if r.Ohms <= maxOhms {
		verdict = "PASS"
	}
	line := fmt.Sprintf("RES:%s:OHM:%.2f", verdict, r.Ohms)
	if !calibrated {
		line += ":UNCAL"
	}
	return line
}

// Continuity formats the per-conductor continuity and polarity outcome.
// Example: CONT:FAIL:TIP:0:RING:1:SLEEVE:1:POL:0:REASON:TIP_OPEN
func Continuity(tip, ring, sleeve, polarity bool) string {
	pass := tip && ring && sleeve && polarity
	line := fmt.Sprintf("CONT:%s:TIP:%d:RING:%d:SLEEVE:%d:POL:%d",
		passFail(pass), b2i(tip), b2i(ring), b2i(sleeve), b2i(polarity))
	if reason := continuityReason(tip, ring, sleeve, polarity); reason != "" {
		line += ":REASON:" + reason
	}
	return line
}

// Result formats the aggregate outcome of a full test run.
// Example: RESULT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1:OHM:0.52:PF:480.2:TIME_MS:812
func Result(r tester.Result) string {
	ohm := fmt.Sprintf("%.2f", r.ResistanceOhms)
	if r.ResistanceOpen {
		ohm = "OPEN"
	}
	pf := fmt.Sprintf("%.1f", r.CapacitancePF)
	if !r.CapacitanceValid {
		pf = "INVALID"
	}

	line := fmt.Sprintf("RESULT:%s:TIP:%d:RING:%d:SLEEVE:%d:POL:%d:OHM:%s:PF:%s:TIME_MS:%d",
		passFail(r.Pass),
		b2i(r.TipContinuity), b2i(r.RingContinuity), b2i(r.SleeveContinuity),
		b2i(r.PolarityCorrect), ohm, pf, r.DurationMS)
	if r.Uncalibrated {
		line += ":UNCAL"
	}
	if r.Err != "" {
		line += ":ERROR:" + r.Err
	}
	return line
}

// Calibration formats the calibration completion line.
// Example: CAL:OK:STRAY:73.5
func Calibration(strayPF float64) string {
	return fmt.Sprintf("CAL:OK:STRAY:%.1f", strayPF)
}

// Status formats the fixture status line.
// Example: STATUS:READY:CAL:1:SUPPLY:4.98:INSERTED:1
func Status(calibrated bool, supply float64, inserted bool) string {
	return fmt.Sprintf("STATUS:READY:CAL:%d:SUPPLY:%.2f:INSERTED:%d",
		b2i(calibrated), supply, b2i(inserted))
}

func continuityReason(tip, ring, sleeve, polarity bool) string {
	switch {
	case !tip && !ring && !sleeve:
		return "NO_CABLE"
	case !tip:
		return "TIP_OPEN"
	case !ring:
		return "RING_OPEN"
	case !sleeve:
		return "SLEEVE_OPEN"
	case !polarity:
		return "REVERSED"
	}
	return ""
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
