package tester

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/relay"
	"github.com/greenlight/cabletester/pkg/sample"
)

// Calibrate runs all three calibration routines against the fixture's
// references (supply monitor, zero-ohm relay, open jacks — no cable may be
// attached), marks the record calibrated, and persists it.
func (t *Tester) Calibrate() (cal.Data, error) {
	if _, err := t.CalibrateVoltage(); err != nil {
		return *t.cal, err
	}
	if _, err := t.CalibrateResistance(); err != nil {
		return *t.cal, err
	}
	if _, err := t.CalibrateCapacitance(); err != nil {
		return *t.cal, err
	}

	t.cal.Calibrated = true
	if err := t.store.Save(*t.cal); err != nil {
		return *t.cal, err
	}
	logrus.Infof("calibration complete: factor=%.4f resistance=%.2f ohm stray=%.1f pF",
		t.cal.VoltageFactor, t.cal.ResistanceOffset, t.cal.CapacitanceOffset)
	return *t.cal, nil
}

// CalibrateVoltage measures the supply through the monitor divider and
// derives the scale factor that maps it onto the nominal supply.
func (t *Tester) CalibrateVoltage() (float64, error) {
	var supply float64
	t.ctl.With(relay.Calibration, func() error {
		v := t.reader.UncalibratedVoltage(fixture.SenseVoltage, t.cfg.Measurement.Samples)
		supply = sample.DividerInput(v, t.cfg.Electrical.MonitorR1, t.cfg.Electrical.MonitorR2)
		return nil
	})

	if supply <= 0 {
		return 0, fmt.Errorf("voltage calibration: no supply reading")
	}

	t.cal.VoltageFactor = t.cfg.Calibration.NominalSupply / supply
	if err := t.store.Save(*t.cal); err != nil {
		return 0, err
	}
	return t.cal.VoltageFactor, nil
}

// CalibrateResistance shorts the loop with the zero-ohm reference relay and
// stores the residual reading as the resistance offset.
func (t *Tester) CalibrateResistance() (float64, error) {
	var rr meter.ResistanceReading
	t.ctl.With(relay.Calibration, func() error {
		rr = t.res.Measure()
		return nil
	})

	if rr.Open {
		return 0, fmt.Errorf("resistance calibration: reference loop open")
	}

	t.cal.ResistanceOffset = rr.RawOhms
	if err := t.store.Save(*t.cal); err != nil {
		return 0, err
	}
	return rr.RawOhms, nil
}

// CalibrateCapacitance measures the open fixture's stray capacitance and
// stores it as the capacitance offset, replacing any prior value.
func (t *Tester) CalibrateCapacitance() (float64, error) {
	var s meter.CapacitanceSample
	t.ctl.With(relay.Calibration, func() error {
		s = t.capm.MeasureRaw()
		return nil
	})

	if !s.Valid {
		return 0, fmt.Errorf("capacitance calibration: no charge detected")
	}

	t.cal.CapacitanceOffset = s.Picofarads
	if err := t.store.Save(*t.cal); err != nil {
		return 0, err
	}
	return s.Picofarads, nil
}
