package main

import (
	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/station"
	"github.com/greenlight/cabletester/pkg/tester"
)

// backend abstracts the fixture the panel drives: a serial unit or the
// built-in simulation.
type backend interface {
	Connect() error
	Close() error
	ID() string
	RunTest() (tester.Result, error)
	Calibrate() (float64, error)
	Status() (station.Status, error)
}

// serialBackend drives a fixture unit over its serial link.
type serialBackend struct {
	client *station.Client
}

func newSerialBackend(cfg *config.Config) *serialBackend {
	return &serialBackend{
		client: station.New(cfg.Serial.Port, cfg.Serial.BaudRate),
	}
}

func (b *serialBackend) Connect() error { return b.client.Connect() }
func (b *serialBackend) Close() error   { return b.client.Close() }
func (b *serialBackend) ID() string     { return b.client.UnitID() }

func (b *serialBackend) RunTest() (tester.Result, error) { return b.client.RunTest() }
func (b *serialBackend) Calibrate() (float64, error)     { return b.client.Calibrate() }
func (b *serialBackend) Status() (station.Status, error) { return b.client.Status() }

// simBackend drives the simulated fixture in-process.
type simBackend struct {
	cfg *config.Config
	sim *fixture.Sim
	tr  *tester.Tester
}

func newSimBackend(cfg *config.Config) *simBackend {
	return &simBackend{cfg: cfg}
}

func (b *simBackend) Connect() error {
	b.sim = fixture.NewSim(b.cfg)
	tr, err := tester.New(b.sim, b.cfg, cal.NewFileStore(b.cfg.Calibration.Path))
	if err != nil {
		return err
	}
	b.tr = tr
	return nil
}

func (b *simBackend) Close() error {
	b.sim = nil
	b.tr = nil
	return nil
}

func (b *simBackend) ID() string { return "SIM" }

func (b *simBackend) RunTest() (tester.Result, error) {
	return b.tr.Run(), nil
}

func (b *simBackend) Calibrate() (float64, error) {
	// Calibration runs against the empty fixture.
	b.sim.Detach()
	defer b.attachConfigured()

	data, err := b.tr.Calibrate()
	if err != nil {
		return 0, err
	}
	return data.CapacitanceOffset, nil
}

func (b *simBackend) attachConfigured() {
	if !b.cfg.Sim.Attached {
		return
	}
	b.sim.Attach(fixture.CableSpec{
		LoopOhms:      b.cfg.Sim.LoopResistance,
		CapacitancePF: b.cfg.Sim.CapacitancePF,
		TipOpen:       b.cfg.Sim.TipOpen,
		RingOpen:      b.cfg.Sim.RingOpen,
		SleeveOpen:    b.cfg.Sim.SleeveOpen,
		Reversed:      b.cfg.Sim.Reversed,
	})
}

func (b *simBackend) Status() (station.Status, error) {
	return station.Status{
		Ready:      true,
		Calibrated: b.tr.Calibration().Calibrated,
		Supply:     b.tr.SupplyVoltage(),
		Inserted:   b.tr.Inserted(),
	}, nil
}
