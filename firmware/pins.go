//go:build tinygo

package main

import (
	"machine"

	"github.com/greenlight/cabletester/pkg/fixture"
)

const (
	// Serial configuration. Commands and reports are short ASCII lines;
	// 9600 baud leaves ample headroom.
	UART_BAUD_RATE = 9600

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5V rail)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Relay driver pins
	PIN_RELAY_TIP         = machine.D2
	PIN_RELAY_RING        = machine.D3
	PIN_RELAY_SLEEVE      = machine.D4
	PIN_RELAY_POLARITY    = machine.D5
	PIN_RELAY_CALIBRATION = machine.D6

	// Measurement drive pins
	PIN_RESISTANCE_SOURCE = machine.D7
	PIN_CAP_CHARGE        = machine.D8
	PIN_CAP_DISCHARGE     = machine.D9
	PIN_CONT_TIP          = machine.D10
	PIN_CONT_RING         = machine.D11
	PIN_CONT_SLEEVE       = machine.D12

	// Cable detect switch in the jack
	PIN_FIXTURE_DETECT = machine.D13

	// Analog sense pins
	PIN_SENSE_CONT_TIP    = machine.A0
	PIN_SENSE_CONT_RING   = machine.A1
	PIN_SENSE_CONT_SLEEVE = machine.A2
	PIN_SENSE_RESISTANCE  = machine.A3
	PIN_SENSE_CAPACITANCE = machine.A4
	PIN_SENSE_VOLTAGE     = machine.A5
)

// pinMap routes each fixture role to its physical pin.
var pinMap = map[fixture.Pin]machine.Pin{
	fixture.RelayTip:         PIN_RELAY_TIP,
	fixture.RelayRing:        PIN_RELAY_RING,
	fixture.RelaySleeve:      PIN_RELAY_SLEEVE,
	fixture.RelayPolarity:    PIN_RELAY_POLARITY,
	fixture.RelayCalibration: PIN_RELAY_CALIBRATION,

	fixture.ResistanceSource: PIN_RESISTANCE_SOURCE,
	fixture.CapCharge:        PIN_CAP_CHARGE,
	fixture.CapDischarge:     PIN_CAP_DISCHARGE,
	fixture.ContTip:          PIN_CONT_TIP,
	fixture.ContRing:         PIN_CONT_RING,
	fixture.ContSleeve:       PIN_CONT_SLEEVE,

	fixture.FixtureDetect: PIN_FIXTURE_DETECT,

	fixture.SenseContTip:     PIN_SENSE_CONT_TIP,
	fixture.SenseContRing:    PIN_SENSE_CONT_RING,
	fixture.SenseContSleeve:  PIN_SENSE_CONT_SLEEVE,
	fixture.SenseResistance:  PIN_SENSE_RESISTANCE,
	fixture.SenseCapacitance: PIN_SENSE_CAPACITANCE,
	fixture.SenseVoltage:     PIN_SENSE_VOLTAGE,
}
