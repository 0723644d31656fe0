package meter

import (
	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
)

// ln2 relates the 50% charge threshold to the RC time constant: a
// single-pole RC network reaches half its final voltage at t = R*C*ln(2).
const ln2 = 0.693

// ChargeState tags where a charge cycle ended up.
type ChargeState int

const (
	StateDischarged ChargeState = iota
	StateCharging
	StateThresholdReached
	StateTimedOut
)

func (s ChargeState) String() string {
	switch s {
	case StateDischarged:
		return "discharged"
	case StateCharging:
		return "charging"
	case StateThresholdReached:
		return "threshold_reached"
	case StateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// CapacitanceSample is the outcome of one capacitance measurement (five
// charge cycles averaged). It only lives for the duration of the call.
type CapacitanceSample struct {
	// Valid is false when every charge cycle timed out: capacitance too
	// large, or no circuit at all.
	Valid bool
	// State is the terminal state of the measurement.
	State ChargeState
	// ChargeTimeUS is the mean charge time of the valid cycles.
	ChargeTimeUS int64
	// Picofarads is the corrected capacitance derived from ChargeTimeUS.
	Picofarads float64
	// SampleCount is how many cycles reached the threshold.
	SampleCount int
}

// Capacitance measures cable shunt capacitance by timing an RC charge to 50%
// of the supply. It expects the Capacitance (or Calibration) topology to be
// active: far end floating, no DC path besides the charge resistor.
type Capacitance struct {
	hw   fixture.Hardware
	elec config.ElectricalConfig
	meas config.MeasurementConfig
	cal  *cal.Data
}

// NewCapacitance creates a capacitance meter.
func NewCapacitance(hw fixture.Hardware, cfg *config.Config, c *cal.Data) *Capacitance {
	return &Capacitance{
		hw:   hw,
		elec: cfg.Electrical,
		meas: cfg.Measurement,
		cal:  c,
	}
}

// Measure runs the full averaged measurement with the stray-capacitance
// offset applied.
func (m *Capacitance) Measure() CapacitanceSample {
	return m.measure(m.cal.CapacitanceOffset)
}

// MeasureRaw runs the same measurement without the offset. The calibration
// routine uses it to read the fixture's stray capacitance directly.
func (m *Capacitance) MeasureRaw() CapacitanceSample {
	return m.measure(0)
}

func (m *Capacitance) measure(offsetPF float64) CapacitanceSample {
	var total int64
	valid := 0

	for i := 0; i < m.meas.CapSamples; i++ {
		if t, ok := m.chargeTime(); ok {
			total += t
			valid++
		}
		m.hw.Sleep(m.meas.SampleGap)
	}

	if valid == 0 {
		return CapacitanceSample{State: StateTimedOut}
	}

	// Average the charge times, then derive capacitance once from the mean.
	// Capacitance is logarithmic in time, so averaging derived values would
	// not agree with the reference behavior.
	mean := total / int64(valid)
	pf := FromChargeTime(mean, m.elec.ChargeResistor) - offsetPF
	if pf < 0 {
		pf = 0
	}

	return CapacitanceSample{
		Valid:        true,
		State:        StateThresholdReached,
		ChargeTimeUS: mean,
		Picofarads:   pf,
		SampleCount:  valid,
	}
}

// chargeTime runs one discharge/charge cycle and returns the microseconds to
// the 50% threshold. ok is false on timeout; zero is a legitimate charge
// time, so timeouts are never encoded as zero.
func (m *Capacitance) chargeTime() (elapsed int64, ok bool) {
	// Guarantee the node starts at ~0V regardless of prior state.
	m.discharge()

	// Remove the discharge path, then start the RC charge.
	m.hw.Configure(fixture.CapDischarge, fixture.PinInput)
	start := m.hw.Now()
	m.hw.Write(fixture.CapCharge, true)

	threshold := m.elec.ThresholdCode()
	deadline := start + m.meas.CapTimeoutUS

	for m.hw.Now() < deadline {
		if m.hw.ReadADC(fixture.SenseCapacitance) >= threshold {
			elapsed = m.hw.Now() - start
			m.restore()
			return elapsed, true
		}
	}

	// Timeout: capacitance too large or open circuit.
	m.restore()
	return 0, false
}

// discharge pulls the node to ground through the discharge resistor and
// waits for it to empty.
func (m *Capacitance) discharge() {
	m.hw.Write(fixture.CapCharge, false)
	m.hw.Write(fixture.CapDischarge, false)
	m.hw.Configure(fixture.CapDischarge, fixture.PinOutput)
	m.hw.Sleep(m.meas.DischargeSettle)
}

// restore stops charging and reinstates the discharge path, leaving the
// fixture discharged whatever the cycle's outcome.
func (m *Capacitance) restore() {
	m.hw.Write(fixture.CapCharge, false)
	m.hw.Write(fixture.CapDischarge, false)
	m.hw.Configure(fixture.CapDischarge, fixture.PinOutput)
}

// FromChargeTime converts a charge time to capacitance in picofarads for a
// network charging through chargeResistor to 50% of the supply:
// C = t / (R * ln 2).
func FromChargeTime(us int64, chargeResistor float64) float64 {
	seconds := float64(us) / 1e6
	farads := seconds / (chargeResistor * ln2)
	return farads * 1e12
}
