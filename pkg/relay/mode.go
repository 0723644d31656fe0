package relay

// Mode is an electrical configuration of the fixture. Exactly one mode is
// active at a time; every transition between test modes passes through Idle.
type Mode int

const (
	Idle Mode = iota
	Continuity
	Polarity
	Resistance
	Capacitance
	Calibration
)

var modeNames = map[Mode]string{
	Idle:        "idle",
	Continuity:  "continuity",
	Polarity:    "polarity",
	Resistance:  "resistance",
	Capacitance: "capacitance",
	Calibration: "calibration",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}
