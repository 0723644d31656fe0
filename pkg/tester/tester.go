// Package tester sequences the full cable test: continuity on all three
// conductors, polarity, loop resistance, and shunt capacitance. Every
// measurement runs inside its own mode transition, and the fixture is back
// in the idle topology when Run returns, whatever went wrong in between.
package tester

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/relay"
	"github.com/greenlight/cabletester/pkg/sample"
)

// Result is the outcome of one full cable test. It is created fresh per run,
// returned by value, and never mutated afterwards.
type Result struct {
	TipContinuity    bool
	RingContinuity   bool
	SleeveContinuity bool
	PolarityCorrect  bool

	ResistanceOhms float64
	// ResistanceOpen marks that no current flowed during the resistance
	// test; ResistanceOhms is meaningless when set.
	ResistanceOpen bool

	CapacitancePF      float64
	CapacitanceValid   bool
	ChargeTimeUS       int64
	CapacitanceSamples int

	// Pass is true iff every sub-check passed and no error occurred.
	Pass bool
	// Uncalibrated flags that the run used the identity calibration.
	Uncalibrated bool
	// Err carries human-readable measurement failures. Failures never abort
	// the sequence; a partial fault report beats no report.
	Err string

	DurationMS int64
}

// Tester owns the fixture and runs test and calibration sequences.
type Tester struct {
	hw    fixture.Hardware
	cfg   *config.Config
	ctl   *relay.Controller
	store cal.Store
	cal   *cal.Data

	reader *sample.Reader
	cont   *meter.Continuity
	res    *meter.Resistance
	capm   *meter.Capacitance
}

// New creates a Tester, loads the persisted calibration record, and puts the
// fixture into the idle topology.
func New(hw fixture.Hardware, cfg *config.Config, store cal.Store) (*Tester, error) {
	data, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration: %w", err)
	}
	if !data.Calibrated {
		logrus.Warn("fixture is uncalibrated, measurements use identity calibration")
	}

	t := &Tester{
		hw:    hw,
		cfg:   cfg,
		ctl:   relay.New(hw, cfg.Measurement.SettleDelay),
		store: store,
		cal:   &data,
	}
	t.reader = sample.NewReader(hw, cfg.Electrical, t.cal)
	t.cont = meter.NewContinuity(hw, t.reader, cfg)
	t.res = meter.NewResistance(hw, t.reader, cfg, t.cal)
	t.capm = meter.NewCapacitance(hw, cfg, t.cal)

	return t, nil
}

// Run executes the full test sequence and aggregates the outcome.
func (t *Tester) Run() Result {
	start := t.hw.Now()

	var r Result
	r.Uncalibrated = !t.cal.Calibrated

	t.ctl.With(relay.Continuity, func() error {
		r.TipContinuity = t.cont.Measure(meter.Tip).Closed
		r.RingContinuity = t.cont.Measure(meter.Ring).Closed
		r.SleeveContinuity = t.cont.Measure(meter.Sleeve).Closed
		return nil
	})
	logrus.Debugf("continuity tip=%v ring=%v sleeve=%v",
		r.TipContinuity, r.RingContinuity, r.SleeveContinuity)

	t.ctl.With(relay.Polarity, func() error {
		r.PolarityCorrect = t.cont.Polarity().Correct
		return nil
	})

	t.ctl.With(relay.Resistance, func() error {
		rr := t.res.Measure()
		r.ResistanceOhms = rr.Ohms
		r.ResistanceOpen = rr.Open
		if rr.Open {
			appendErr(&r, "resistance open circuit")
		}
		return nil
	})

	t.ctl.With(relay.Capacitance, func() error {
		cs := t.capm.Measure()
		r.CapacitanceValid = cs.Valid
		r.CapacitancePF = cs.Picofarads
		r.ChargeTimeUS = cs.ChargeTimeUS
		r.CapacitanceSamples = cs.SampleCount
		if !cs.Valid {
			appendErr(&r, "capacitance no charge detected")
		}
		return nil
	})

	continuityOK := r.TipContinuity && r.RingContinuity && r.SleeveContinuity
	resistanceOK := !r.ResistanceOpen && r.ResistanceOhms <= t.cfg.Limits.MaxResistanceOhms
	capacitanceOK := r.CapacitanceValid &&
		r.CapacitancePF >= t.cfg.Limits.CapMinPF &&
		r.CapacitancePF <= t.cfg.Limits.CapMaxPF

	r.Pass = continuityOK && r.PolarityCorrect && resistanceOK && capacitanceOK && r.Err == ""
	r.DurationMS = (t.hw.Now() - start) / 1000

	logrus.Infof("cable test %s in %dms", passFail(r.Pass), r.DurationMS)
	return r
}

// Reset forces the fixture back to the idle topology.
func (t *Tester) Reset() {
	t.ctl.Reset()
}

// Inserted reports whether a cable is present in the jacks.
func (t *Tester) Inserted() bool {
	return t.hw.Read(fixture.FixtureDetect)
}

// SupplyVoltage measures the supply rail through the monitor divider.
func (t *Tester) SupplyVoltage() float64 {
	v := t.reader.Voltage(fixture.SenseVoltage, t.cfg.Measurement.Samples)
	return sample.DividerInput(v, t.cfg.Electrical.MonitorR1, t.cfg.Electrical.MonitorR2)
}

// Calibration returns a copy of the active calibration record.
func (t *Tester) Calibration() cal.Data {
	return *t.cal
}

func appendErr(r *Result, msg string) {
	if r.Err != "" {
		r.Err += "; "
	}
	r.Err += msg
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
