// Package sample converts raw ADC codes into calibrated voltages. It is the
// primitive every measurement builds on: read a pin N times, average, scale
// by the reference and the calibration voltage factor.
package sample

import (
	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
)

// DefaultSamples is the averaging count used when the caller passes n <= 0.
const DefaultSamples = 10

// Reader samples analog pins through the hardware boundary.
type Reader struct {
	hw   fixture.Hardware
	elec config.ElectricalConfig
	cal  *cal.Data
}

// NewReader creates a Reader. The calibration record is shared with the
// owner; updates to it take effect on the next read.
func NewReader(hw fixture.Hardware, elec config.ElectricalConfig, c *cal.Data) *Reader {
	return &Reader{hw: hw, elec: elec, cal: c}
}

// Raw performs a single conversion with no averaging or scaling.
func (r *Reader) Raw(p fixture.Pin) uint16 {
	return r.hw.ReadADC(p)
}

// Voltage returns the mean of n consecutive conversions on p converted to a
// calibrated voltage. Noise is absorbed by the averaging; there is no error
// path.
func (r *Reader) Voltage(p fixture.Pin, n int) float64 {
	return r.UncalibratedVoltage(p, n) * r.cal.VoltageFactor
}

// UncalibratedVoltage is Voltage without the calibration factor. The voltage
// calibration routine uses it to measure the factor itself.
func (r *Reader) UncalibratedVoltage(p fixture.Pin, n int) float64 {
	if n <= 0 {
		n = DefaultSamples
	}

	var sum uint32
	for i := 0; i < n; i++ {
		sum += uint32(r.hw.ReadADC(p))
	}
	mean := float64(sum) / float64(n)

	return mean / float64(r.elec.FullScale()) * r.elec.VRef
}

// DividerInput recovers the input of a resistive divider from the voltage
// measured across its lower leg: V_in = V_out * (R1 + R2) / R2.
func DividerInput(vout, r1, r2 float64) float64 {
	return vout * ((r1 + r2) / r2)
}
