package relay

import "github.com/greenlight/cabletester/pkg/fixture"

// assignment fixes one pin's direction, and its level when driven.
type assignment struct {
	pin   fixture.Pin
	mode  fixture.PinMode
	level bool
}

func out(p fixture.Pin, high bool) assignment {
	return assignment{pin: p, mode: fixture.PinOutput, level: high}
}

func hiZ(p fixture.Pin) assignment {
	return assignment{pin: p, mode: fixture.PinInput}
}

// idleTopology is the safe state between tests: every relay released, every
// drive line output-low so residual charge bleeds off.
var idleTopology = []assignment{
	out(fixture.RelayTip, false),
	out(fixture.RelayRing, false),
	out(fixture.RelaySleeve, false),
	out(fixture.RelayPolarity, false),
	out(fixture.RelayCalibration, false),
	out(fixture.ResistanceSource, false),
	out(fixture.CapCharge, false),
	out(fixture.CapDischarge, false),
	out(fixture.ContTip, false),
	out(fixture.ContRing, false),
	out(fixture.ContSleeve, false),
}

// topologies maps each test mode to the relay levels and pin directions it
// requires. Relays are listed before drive lines so the switching transient
// happens with every driver at a known level.
var topologies = map[Mode][]assignment{
	Idle: idleTopology,

	// Far end looped back through the relay network; drive lines start low
	// and are raised one conductor at a time by the meter.
	Continuity: {
		out(fixture.RelayTip, true),
		out(fixture.RelayRing, true),
		out(fixture.RelaySleeve, true),
		out(fixture.RelayPolarity, false),
		out(fixture.RelayCalibration, false),
		out(fixture.ResistanceSource, false),
		out(fixture.CapCharge, false),
		out(fixture.CapDischarge, false),
		out(fixture.ContTip, false),
		out(fixture.ContRing, false),
		out(fixture.ContSleeve, false),
	},

	Polarity: {
		out(fixture.RelayTip, true),
		out(fixture.RelayRing, true),
		out(fixture.RelaySleeve, true),
		out(fixture.RelayPolarity, true),
		out(fixture.RelayCalibration, false),
		out(fixture.ResistanceSource, false),
		out(fixture.CapCharge, false),
		out(fixture.CapDischarge, false),
		out(fixture.ContTip, false),
		out(fixture.ContRing, false),
		out(fixture.ContSleeve, false),
	},

	// Tip-to-sleeve loop through the series resistor. The source itself is
	// raised by the meter only while it samples.
	Resistance: {
		out(fixture.RelayTip, true),
		out(fixture.RelayRing, false),
		out(fixture.RelaySleeve, true),
		out(fixture.RelayPolarity, false),
		out(fixture.RelayCalibration, false),
		out(fixture.ResistanceSource, false),
		out(fixture.CapCharge, false),
		out(fixture.CapDischarge, false),
		out(fixture.ContTip, false),
		out(fixture.ContRing, false),
		out(fixture.ContSleeve, false),
	},

	// Far end must float: loop relays engaged but the drive lines released
	// to high impedance, so the only DC path is the charge resistor.
	Capacitance: {
		out(fixture.RelayTip, true),
		out(fixture.RelayRing, true),
		out(fixture.RelaySleeve, true),
		out(fixture.RelayPolarity, false),
		out(fixture.RelayCalibration, false),
		out(fixture.ResistanceSource, false),
		out(fixture.CapCharge, false),
		out(fixture.CapDischarge, false),
		hiZ(fixture.ContTip),
		hiZ(fixture.ContRing),
		hiZ(fixture.ContSleeve),
	},

	// Capacitance topology plus the zero-ohm reference relay, serving both
	// the stray-capacitance and resistance-offset calibration measurements.
	Calibration: {
		out(fixture.RelayTip, true),
		out(fixture.RelayRing, true),
		out(fixture.RelaySleeve, true),
		out(fixture.RelayPolarity, false),
		out(fixture.RelayCalibration, true),
		out(fixture.ResistanceSource, false),
		out(fixture.CapCharge, false),
		out(fixture.CapDischarge, false),
		hiZ(fixture.ContTip),
		hiZ(fixture.ContRing),
		hiZ(fixture.ContSleeve),
	},
}
