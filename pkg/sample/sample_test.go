package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
)

// scriptedHardware replays a fixed sequence of ADC codes.
type scriptedHardware struct {
	codes []uint16
	i     int
}

func (h *scriptedHardware) Configure(fixture.Pin, fixture.PinMode) {}
func (h *scriptedHardware) Write(fixture.Pin, bool)                {}
func (h *scriptedHardware) Read(fixture.Pin) bool                  { return false }
func (h *scriptedHardware) Now() int64                             { return 0 }
func (h *scriptedHardware) Sleep(time.Duration)                    {}

func (h *scriptedHardware) ReadADC(fixture.Pin) uint16 {
	c := h.codes[h.i%len(h.codes)]
	h.i++
	return c
}

var _ fixture.Hardware = (*scriptedHardware)(nil)

func testElec() config.ElectricalConfig {
	return config.Default().Electrical
}

func TestReader_UncalibratedVoltage(t *testing.T) {
	tests := []struct {
		name  string
		codes []uint16
		n     int
		want  float64
	}{
		{
			name:  "full scale reads vref",
			codes: []uint16{1023},
			n:     4,
			want:  5.0,
		},
		{
			name:  "midscale",
			codes: []uint16{512},
			n:     1,
			want:  2.5024,
		},
		{
			name:  "averaging smooths noise",
			codes: []uint16{510, 514, 508, 516},
			n:     4,
			want:  2.5024, // mean 512
		},
		{
			name:  "zero",
			codes: []uint16{0},
			n:     10,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cal.Default()
			r := NewReader(&scriptedHardware{codes: tt.codes}, testElec(), &c)
			got := r.UncalibratedVoltage(fixture.SenseVoltage, tt.n)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestReader_VoltageAppliesCalibration(t *testing.T) {
	c := cal.Data{VoltageFactor: 1.02}
	r := NewReader(&scriptedHardware{codes: []uint16{1023}}, testElec(), &c)

	assert.InDelta(t, 5.1, r.Voltage(fixture.SenseVoltage, 1), 0.001)

	// The record is shared; changing the factor changes the next read.
	c.VoltageFactor = 0.5
	assert.InDelta(t, 2.5, r.Voltage(fixture.SenseVoltage, 1), 0.001)
}

func TestReader_DefaultSampleCount(t *testing.T) {
	hw := &scriptedHardware{codes: []uint16{512}}
	c := cal.Default()
	r := NewReader(hw, testElec(), &c)

	r.Voltage(fixture.SenseVoltage, 0)
	assert.Equal(t, DefaultSamples, hw.i)
}

func TestDividerInput(t *testing.T) {
	// Equal legs double the sensed voltage back to the input.
	assert.InDelta(t, 5.0, DividerInput(2.5, 20000, 20000), 1e-9)
	// 3:1 divider.
	assert.InDelta(t, 4.0, DividerInput(1.0, 30000, 10000), 1e-9)
}
