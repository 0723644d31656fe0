package fixture

import (
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/greenlight/cabletester/pkg/config"
)

// CableSpec describes the cable (or absence of one) plugged into the
// simulated fixture.
type CableSpec struct {
	LoopOhms      float64
	CapacitancePF float64
	TipOpen       bool
	RingOpen      bool
	SleeveOpen    bool
	Reversed      bool // tip and ring swapped at the far end
}

// Sim is a simulated fixture. It runs on a virtual microsecond clock: Sleep
// advances it directly and every ADC conversion advances it by the configured
// conversion time, so charge timing behaves deterministically without real
// waiting. The capacitance node follows a single-pole RC model; continuity
// and resistance senses follow the fixture's divider networks.
//
// Single-precision math (math32) is used for the RC curve to match the
// arithmetic of the MCU build.
type Sim struct {
	sim  config.SimConfig
	elec config.ElectricalConfig

	mu       sync.Mutex
	now      int64 // virtual microseconds
	modes    map[Pin]PinMode
	levels   map[Pin]bool
	attached bool
	cable    CableSpec

	// Capacitance node state at the last regime change.
	capVolts float64
	capAt    int64
	capTau   float64 // seconds; <= 0 means the node holds its voltage
	capTo    float64 // asymptote the node is moving toward

	reads int // conversion counter, drives the deterministic noise phase
}

// NewSim creates a simulated fixture from configuration.
func NewSim(cfg *config.Config) *Sim {
	s := &Sim{
		sim:    cfg.Sim,
		elec:   cfg.Electrical,
		modes:  make(map[Pin]PinMode),
		levels: make(map[Pin]bool),
	}
	if cfg.Sim.Attached {
		s.attached = true
		s.cable = CableSpec{
			LoopOhms:      cfg.Sim.LoopResistance,
			CapacitancePF: cfg.Sim.CapacitancePF,
			TipOpen:       cfg.Sim.TipOpen,
			RingOpen:      cfg.Sim.RingOpen,
			SleeveOpen:    cfg.Sim.SleeveOpen,
			Reversed:      cfg.Sim.Reversed,
		}
	}
	return s
}

// Attach plugs a cable into the simulated jacks.
func (s *Sim) Attach(spec CableSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleCap()
	s.attached = true
	s.cable = spec
	s.updateCapRegime()
}

// Detach removes the cable, leaving only the fixture's stray capacitance.
func (s *Sim) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleCap()
	s.attached = false
	s.updateCapRegime()
}

// Configure implements Hardware.
func (s *Sim) Configure(p Pin, m PinMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleCap()
	s.modes[p] = m
	s.updateCapRegime()
}

// Write implements Hardware.
func (s *Sim) Write(p Pin, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleCap()
	s.levels[p] = high
	s.updateCapRegime()
}

// Read implements Hardware.
func (s *Sim) Read(p Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == FixtureDetect {
		return s.attached
	}
	return s.levels[p]
}

// ReadADC implements Hardware. Each conversion advances the virtual clock.
func (s *Sim) ReadADC(p Pin) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now += s.sim.ADCConversionUS
	s.reads++

	v := s.senseVolts(p)
	if s.sim.Noise > 0 {
		v += float64(math32.Sin(float32(s.reads))) * s.sim.Noise
	}

	fullScale := float64(s.elec.FullScale())
	code := v / s.elec.VRef * fullScale
	if code < 0 {
		code = 0
	} else if code > fullScale {
		code = fullScale
	}
	return uint16(code)
}

// Now implements Hardware.
func (s *Sim) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Sleep implements Hardware by advancing the virtual clock.
func (s *Sim) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += d.Microseconds()
}

// settleCap folds the RC trajectory into capVolts at the current instant.
// Must be called before any change that alters the charge/discharge regime.
func (s *Sim) settleCap() {
	s.capVolts = s.capVoltsAt(s.now)
	s.capAt = s.now
}

// updateCapRegime derives the active RC regime from the charge and discharge
// pin states. The discharge path (small resistor) dominates the charge path.
func (s *Sim) updateCapRegime() {
	c := s.capFarads()
	charging := s.modes[CapCharge] == PinOutput && s.levels[CapCharge]
	discharging := s.modes[CapDischarge] == PinOutput && !s.levels[CapDischarge]

	switch {
	case discharging:
		s.capTo = 0
		s.capTau = s.elec.DischargeResistor * c
	case charging:
		s.capTo = s.sim.Supply
		s.capTau = s.elec.ChargeResistor * c
	default:
		s.capTau = 0 // floating, node holds its charge
	}
}

// capVoltsAt returns the capacitance node voltage at virtual time t.
func (s *Sim) capVoltsAt(t int64) float64 {
	if s.capTau <= 0 {
		return s.capVolts
	}
	dt := float64(t-s.capAt) / 1e6
	f := float64(math32.Exp(float32(-dt / s.capTau)))
	return s.capTo + (s.capVolts-s.capTo)*f
}

// capFarads returns the capacitance hanging on the charge node: fixture
// stray plus the cable's shunt capacitance when a cable with intact
// conductors is attached.
func (s *Sim) capFarads() float64 {
	pf := s.sim.StrayPF
	if s.attached && !s.cable.TipOpen && !s.cable.SleeveOpen {
		pf += s.cable.CapacitancePF
	}
	return pf * 1e-12
}

// senseVolts computes the voltage on an analog pin from the current pin and
// cable state.
func (s *Sim) senseVolts(p Pin) float64 {
	switch p {
	case SenseCapacitance:
		return s.capVoltsAt(s.now)

	case SenseVoltage:
		r1, r2 := s.elec.MonitorR1, s.elec.MonitorR2
		return s.sim.Supply * r2 / (r1 + r2)

	case SenseResistance:
		return s.resistanceVolts()

	case SenseContTip, SenseContRing, SenseContSleeve:
		return s.continuityVolts(p)
	}
	return 0
}

// resistanceVolts models the junction of the series resistor and the cable
// loop. With no current path the junction sits at the supply rail.
func (s *Sim) resistanceVolts() float64 {
	if !(s.modes[ResistanceSource] == PinOutput && s.levels[ResistanceSource]) {
		return 0
	}

	var loop float64
	switch {
	case s.levels[RelayCalibration]:
		// Zero-ohm reference shorting the loop; only lead resistance remains.
		loop = s.sim.LeadResistance
	case s.attached && !s.cable.TipOpen && !s.cable.SleeveOpen &&
		s.levels[RelayTip] && s.levels[RelaySleeve]:
		loop = s.cable.LoopOhms + s.sim.LeadResistance
	default:
		// Open circuit: no current through the series resistor.
		return s.sim.Supply
	}

	return s.sim.Supply * loop / (s.elec.SeriesResistor + loop)
}

// continuityVolts models a continuity sense line with its pulldown. A driven
// conductor whose far end lands on this line lifts it toward the supply
// through the loop resistance.
func (s *Sim) continuityVolts(sense Pin) float64 {
	for _, d := range []Pin{ContTip, ContRing, ContSleeve} {
		if !(s.modes[d] == PinOutput && s.levels[d]) {
			continue
		}
		if !s.conductorClosed(d) {
			continue
		}
		if s.farEnd(d) != sense {
			continue
		}
		loop := s.cable.LoopOhms + s.sim.LeadResistance
		rpd := s.elec.PulldownResistor
		return s.sim.Supply * rpd / (rpd + loop)
	}
	return 0
}

// conductorClosed reports whether the driven conductor has a complete path
// through the far-end relay network.
func (s *Sim) conductorClosed(drive Pin) bool {
	if !s.attached {
		return false
	}
	switch drive {
	case ContTip:
		return !s.cable.TipOpen && s.levels[RelayTip]
	case ContRing:
		return !s.cable.RingOpen && s.levels[RelayRing]
	case ContSleeve:
		return !s.cable.SleeveOpen && s.levels[RelaySleeve]
	}
	return false
}

// farEnd returns the sense line a driven conductor lands on, accounting for
// a reversed tip/ring pair.
func (s *Sim) farEnd(drive Pin) Pin {
	tip, ring := SenseContTip, SenseContRing
	if s.cable.Reversed {
		tip, ring = ring, tip
	}
	switch drive {
	case ContTip:
		return tip
	case ContRing:
		return ring
	}
	return SenseContSleeve
}
