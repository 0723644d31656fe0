package meter

import (
	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/sample"
)

// ResistanceReading is the outcome of a loop resistance measurement.
type ResistanceReading struct {
	// Ohms is the calibrated loop resistance, clamped at zero.
	Ohms float64
	// RawOhms is the reading before the calibration offset is applied.
	RawOhms float64
	// Open reports that no current flowed: the junction sat at the rail, so
	// there is no resistance figure to divide out. Distinct from a true
	// zero-ohm reading.
	Open bool
}

// Resistance measures end-to-end loop resistance through the known series
// resistor. It expects the Resistance (or Calibration) topology to be active.
type Resistance struct {
	hw     fixture.Hardware
	reader *sample.Reader
	elec   config.ElectricalConfig
	meas   config.MeasurementConfig
	cal    *cal.Data
}

// NewResistance creates a resistance meter.
func NewResistance(hw fixture.Hardware, reader *sample.Reader, cfg *config.Config, c *cal.Data) *Resistance {
	return &Resistance{
		hw:     hw,
		reader: reader,
		elec:   cfg.Electrical,
		meas:   cfg.Measurement,
		cal:    c,
	}
}

// Measure drives the loop and computes R = Rs*V/(Vcc-V) from the junction
// voltage, minus the calibration offset.
func (m *Resistance) Measure() ResistanceReading {
	m.hw.Write(fixture.ResistanceSource, true)
	m.hw.Sleep(m.meas.SampleGap)

	v := m.reader.Voltage(fixture.SenseResistance, m.meas.Samples)

	m.hw.Write(fixture.ResistanceSource, false)

	vcc := m.elec.VRef
	if v >= vcc*m.meas.OpenFraction {
		// Junction at the rail: open circuit, no current to divide by.
		return ResistanceReading{Open: true}
	}
	if v < 0 {
		v = 0
	}

	raw := m.elec.SeriesResistor * v / (vcc - v)
	ohms := raw - m.cal.ResistanceOffset
	if ohms < 0 {
		ohms = 0
	}

	return ResistanceReading{Ohms: ohms, RawOhms: raw}
}
