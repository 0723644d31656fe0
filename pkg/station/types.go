package station

// ContinuityStatus is the parsed outcome of a CONT command.
type ContinuityStatus struct {
	Passed   bool
	Tip      bool
	Ring     bool
	Sleeve   bool
	Polarity bool
	// Reason carries the unit's failure classification
	// (NO_CABLE, TIP_OPEN, RING_OPEN, SLEEVE_OPEN, REVERSED).
	Reason string
}

// ResistanceStatus is the parsed outcome of a RES command.
type ResistanceStatus struct {
	Passed       bool
	Open         bool
	Uncalibrated bool
	Ohms         float64
}

// CapacitanceStatus is the parsed outcome of a CAP command.
type CapacitanceStatus struct {
	Valid        bool
	InRange      bool
	Picofarads   float64
	ChargeTimeUS int64
	Samples      int
}

// Status is the parsed outcome of a STATUS command.
type Status struct {
	Ready      bool
	Calibrated bool
	Inserted   bool
	Supply     float64
}
