// Package cal holds the fixture calibration record and its persistence.
//
// A fixture starts life uncalibrated: identity voltage scale and zero
// offsets. The calibration routines replace the record wholesale; nothing
// accumulates across runs.
package cal

// Data contains the correction factors applied to raw measurements.
type Data struct {
	// VoltageFactor multiplies every ADC-derived voltage.
	VoltageFactor float64 `json:"voltageFactor"`
	// ResistanceOffset is subtracted from raw loop resistance (ohms).
	ResistanceOffset float64 `json:"resistanceOffset"`
	// CapacitanceOffset is the fixture's stray capacitance, subtracted from
	// raw capacitance readings (pF).
	CapacitanceOffset float64 `json:"capacitanceOffset"`
	// Calibrated reports whether the calibration routines have run.
	Calibrated bool `json:"calibrated"`
}

// Default returns the uncalibrated identity record.
func Default() Data {
	return Data{VoltageFactor: 1.0}
}
