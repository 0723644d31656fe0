// Package meter implements the cable measurements: per-conductor continuity
// and polarity, end-to-end loop resistance, and RC-timed shunt capacitance.
// Every meter assumes the relay controller has already put the fixture into
// the matching topology; meters only touch their own drive pins.
package meter

import (
	"math"

	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/sample"
)

// Conductor identifies one of the cable's three conductors.
type Conductor int

const (
	Tip Conductor = iota
	Ring
	Sleeve
)

func (c Conductor) String() string {
	switch c {
	case Tip:
		return "tip"
	case Ring:
		return "ring"
	case Sleeve:
		return "sleeve"
	}
	return "unknown"
}

// Conductors lists all three in test order.
var Conductors = []Conductor{Tip, Ring, Sleeve}

func (c Conductor) drivePin() fixture.Pin {
	switch c {
	case Tip:
		return fixture.ContTip
	case Ring:
		return fixture.ContRing
	}
	return fixture.ContSleeve
}

func (c Conductor) sensePin() fixture.Pin {
	switch c {
	case Tip:
		return fixture.SenseContTip
	case Ring:
		return fixture.SenseContRing
	}
	return fixture.SenseContSleeve
}

// ContinuityReading is the outcome of testing one conductor.
type ContinuityReading struct {
	// Closed reports a complete path below the continuity threshold.
	Closed bool
	// LoopOhms is the measured loop resistance; +Inf when open.
	LoopOhms float64
	// OnExpected reports that the signal returned on the conductor's own
	// sense line. False for a reversed pair, and always false when open:
	// an open circuit cannot exhibit correct polarity.
	OnExpected bool
}

// Continuity measures conductor continuity and polarity. It expects the
// Continuity (or Polarity) topology to be active.
type Continuity struct {
	hw     fixture.Hardware
	reader *sample.Reader
	elec   config.ElectricalConfig
	meas   config.MeasurementConfig
	limits config.LimitsConfig
}

// NewContinuity creates a continuity meter.
func NewContinuity(hw fixture.Hardware, reader *sample.Reader, cfg *config.Config) *Continuity {
	return &Continuity{
		hw:     hw,
		reader: reader,
		elec:   cfg.Electrical,
		meas:   cfg.Measurement,
		limits: cfg.Limits,
	}
}

// Measure drives one conductor and senses which line its signal returns on.
func (m *Continuity) Measure(c Conductor) ContinuityReading {
	drive := c.drivePin()
	m.hw.Write(drive, true)
	m.hw.Sleep(m.meas.SampleGap)

	// Sample all three sense lines while the conductor is driven.
	var volts [3]float64
	for i, cc := range Conductors {
		volts[i] = m.reader.Voltage(cc.sensePin(), m.meas.Samples)
	}

	m.hw.Write(drive, false)

	// The signal returns on whichever line carries the highest level.
	best := 0
	for i := 1; i < len(volts); i++ {
		if volts[i] > volts[best] {
			best = i
		}
	}

	ohms := m.loopOhms(volts[best])
	closed := ohms <= m.limits.ContinuityThresholdOhms

	return ContinuityReading{
		Closed:     closed,
		LoopOhms:   ohms,
		OnExpected: closed && Conductors[best] == c,
	}
}

// loopOhms converts a sense voltage into loop resistance via the pulldown
// divider. A dead line reads as an open (infinite) loop.
func (m *Continuity) loopOhms(v float64) float64 {
	vcc := m.elec.VRef
	if v <= vcc*0.01 {
		return math.Inf(1)
	}
	if v >= vcc {
		return 0
	}
	return m.elec.PulldownResistor * (vcc - v) / v
}

// PolarityReading is the outcome of the polarity test across all conductors.
type PolarityReading struct {
	TipOK    bool
	RingOK   bool
	SleeveOK bool
	// Correct is true only when every conductor returned on its own line.
	Correct bool
}

// Polarity verifies that each conductor's signal returns on its paired sense
// line. It expects the Polarity topology to be active.
func (m *Continuity) Polarity() PolarityReading {
	var r PolarityReading
	r.TipOK = m.Measure(Tip).OnExpected
	r.RingOK = m.Measure(Ring).OnExpected
	r.SleeveOK = m.Measure(Sleeve).OnExpected
	r.Correct = r.TipOK && r.RingOK && r.SleeveOK
	return r
}
