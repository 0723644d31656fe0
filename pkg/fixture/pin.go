package fixture

// Pin identifies a logical pin role on the test fixture. The mapping from
// role to physical pin lives in the hardware implementation, so the
// measurement code never sees board numbering.
type Pin int

const (
	// Relay drive outputs.
	RelayTip Pin = iota
	RelayRing
	RelaySleeve
	RelayPolarity
	RelayCalibration

	// Test drive outputs.
	ResistanceSource
	CapCharge
	CapDischarge

	// Continuity drive lines: output-low at idle, driven high one at a time
	// during continuity tests, floated during capacitance tests so the far
	// end of the cable is open.
	ContTip
	ContRing
	ContSleeve

	// Continuity sense inputs, one per conductor, on the far side of the
	// relay network.
	SenseContTip
	SenseContRing
	SenseContSleeve

	// Dedicated analog inputs.
	SenseResistance
	SenseCapacitance
	SenseVoltage

	// Cable insertion detect.
	FixtureDetect

	numPins
)

var pinNames = map[Pin]string{
	RelayTip:         "relay_tip",
	RelayRing:        "relay_ring",
	RelaySleeve:      "relay_sleeve",
	RelayPolarity:    "relay_polarity",
	RelayCalibration: "relay_calibration",
	ResistanceSource: "resistance_source",
	CapCharge:        "cap_charge",
	CapDischarge:     "cap_discharge",
	ContTip:          "cont_tip",
	ContRing:         "cont_ring",
	ContSleeve:       "cont_sleeve",
	SenseContTip:     "sense_cont_tip",
	SenseContRing:    "sense_cont_ring",
	SenseContSleeve:  "sense_cont_sleeve",
	SenseResistance:  "sense_resistance",
	SenseCapacitance: "sense_capacitance",
	SenseVoltage:     "sense_voltage",
	FixtureDetect:    "fixture_detect",
}

func (p Pin) String() string {
	if name, ok := pinNames[p]; ok {
		return name
	}
	return "unknown"
}

// PinMode is the electrical direction of a pin.
type PinMode int

const (
	// PinInput leaves the pin high-impedance: it neither drives nor loads
	// the node it is connected to.
	PinInput PinMode = iota
	// PinOutput drives the pin to the last written level.
	PinOutput
)

func (m PinMode) String() string {
	if m == PinOutput {
		return "output"
	}
	return "input"
}
