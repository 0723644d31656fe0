//go:build tinygo

package main

import (
	"machine"
	"time"

	"github.com/greenlight/cabletester/pkg/fixture"
)

// board drives the fixture through the MCU's GPIO and ADC peripherals.
type board struct {
	adc map[fixture.Pin]machine.ADC
}

var _ fixture.Hardware = (*board)(nil)

func newBoard() *board {
	b := &board{adc: make(map[fixture.Pin]machine.ADC)}

	machine.InitADC()
	for _, p := range []fixture.Pin{
		fixture.SenseContTip, fixture.SenseContRing, fixture.SenseContSleeve,
		fixture.SenseResistance, fixture.SenseCapacitance, fixture.SenseVoltage,
	} {
		a := machine.ADC{Pin: pinMap[p]}
		a.Configure(machine.ADCConfig{
			Reference:  ADC_REFERENCE_MV,
			Resolution: ADC_RESOLUTION,
		})
		b.adc[p] = a
	}

	pinMap[fixture.FixtureDetect].Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	return b
}

func (b *board) Configure(p fixture.Pin, m fixture.PinMode) {
	mode := machine.PinInput
	if m == fixture.PinOutput {
		mode = machine.PinOutput
	}
	pinMap[p].Configure(machine.PinConfig{Mode: mode})
}

func (b *board) Write(p fixture.Pin, high bool) {
	pinMap[p].Set(high)
}

func (b *board) Read(p fixture.Pin) bool {
	if p == fixture.FixtureDetect {
		// Detect switch closes to ground when a cable seats.
		return !pinMap[p].Get()
	}
	return pinMap[p].Get()
}

func (b *board) ReadADC(p fixture.Pin) uint16 {
	// machine.ADC returns left-justified 16-bit values.
	return b.adc[p].Get() >> (16 - ADC_RESOLUTION)
}

func (b *board) Now() int64 {
	return time.Now().UnixNano() / 1000
}

func (b *board) Sleep(d time.Duration) {
	time.Sleep(d)
}
