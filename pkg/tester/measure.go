package tester

import (
	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/relay"
)

// ContinuityResult is the outcome of the standalone continuity test.
type ContinuityResult struct {
	Tip      meter.ContinuityReading
	Ring     meter.ContinuityReading
	Sleeve   meter.ContinuityReading
	Polarity meter.PolarityReading
}

// Pass reports whether every conductor is closed and correctly wired.
func (c ContinuityResult) Pass() bool {
	return c.Tip.Closed && c.Ring.Closed && c.Sleeve.Closed && c.Polarity.Correct
}

// MeasureContinuity runs the continuity and polarity tests on their own.
func (t *Tester) MeasureContinuity() ContinuityResult {
	var r ContinuityResult
	t.ctl.With(relay.Continuity, func() error {
		r.Tip = t.cont.Measure(meter.Tip)
		r.Ring = t.cont.Measure(meter.Ring)
		r.Sleeve = t.cont.Measure(meter.Sleeve)
		return nil
	})
	t.ctl.With(relay.Polarity, func() error {
		r.Polarity = t.cont.Polarity()
		return nil
	})
	return r
}

// MeasureResistance runs the loop resistance test on its own.
func (t *Tester) MeasureResistance() meter.ResistanceReading {
	var r meter.ResistanceReading
	t.ctl.With(relay.Resistance, func() error {
		r = t.res.Measure()
		return nil
	})
	return r
}

// MeasureCapacitance runs the capacitance test on its own.
func (t *Tester) MeasureCapacitance() meter.CapacitanceSample {
	var s meter.CapacitanceSample
	t.ctl.With(relay.Capacitance, func() error {
		s = t.capm.Measure()
		return nil
	})
	return s
}
