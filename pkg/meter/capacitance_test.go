package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/relay"
)

func TestFromChargeTime(t *testing.T) {
	tests := []struct {
		name string
		us   int64
		r    float64
		want float64
	}{
		{name: "zero time is zero capacitance", us: 0, r: 2.2e6, want: 0},
		{name: "stray-scale reading", us: 31, r: 2.2e6, want: 20.3},
		{name: "one nanofarad", us: 1525, r: 2.2e6, want: 1000.3},
		{name: "near the upper limit", us: 3000, r: 2.2e6, want: 1967.7},
		{name: "smaller charge resistor", us: 693, r: 1e6, want: 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FromChargeTime(tt.us, tt.r), 0.5)
		})
	}
}

func TestFromChargeTime_Monotonic(t *testing.T) {
	prev := 0.0
	for us := int64(100); us <= 100000; us += 700 {
		pf := FromChargeTime(us, 2.2e6)
		assert.Greater(t, pf, prev, "at %dus", us)
		prev = pf
	}
}

func newCapBench(t *testing.T, c *cal.Data) (*Capacitance, *fixture.Sim, *relay.Controller) {
	t.Helper()
	cfg := config.Default()
	sim := fixture.NewSim(cfg)
	ctl := relay.New(sim, cfg.Measurement.SettleDelay)
	return NewCapacitance(sim, cfg, c), sim, ctl
}

func TestCapacitance_Measure(t *testing.T) {
	c := cal.Default()
	m, _, ctl := newCapBench(t, &c)

	var s CapacitanceSample
	ctl.With(relay.Capacitance, func() error {
		s = m.Measure()
		return nil
	})

	require.True(t, s.Valid)
	assert.Equal(t, StateThresholdReached, s.State)
	assert.Equal(t, 5, s.SampleCount)
	// 480pF cable plus 20pF stray crosses 50% at ~762us; the conversion
	// clock quantizes the timing upward.
	assert.InDelta(t, 762, s.ChargeTimeUS, 112)
	assert.InDelta(t, 500, s.Picofarads, 40)
}

func TestCapacitance_MeasureIsRepeatable(t *testing.T) {
	c := cal.Default()
	m, _, ctl := newCapBench(t, &c)

	var first, second CapacitanceSample
	ctl.With(relay.Capacitance, func() error {
		first = m.Measure()
		return nil
	})
	ctl.With(relay.Capacitance, func() error {
		second = m.Measure()
		return nil
	})

	require.True(t, first.Valid)
	assert.Equal(t, first.ChargeTimeUS, second.ChargeTimeUS)
	assert.Equal(t, first.Picofarads, second.Picofarads)
}

func TestCapacitance_OffsetApplied(t *testing.T) {
	c := cal.Data{VoltageFactor: 1, CapacitanceOffset: 73.5, Calibrated: true}
	m, _, ctl := newCapBench(t, &c)

	var raw, corrected CapacitanceSample
	ctl.With(relay.Capacitance, func() error {
		raw = m.MeasureRaw()
		corrected = m.Measure()
		return nil
	})

	require.True(t, raw.Valid)
	require.True(t, corrected.Valid)
	assert.InDelta(t, raw.Picofarads-73.5, corrected.Picofarads, 0.1)
}

func TestCapacitance_OffsetClampsAtZero(t *testing.T) {
	c := cal.Data{VoltageFactor: 1, CapacitanceOffset: 5000, Calibrated: true}
	m, sim, ctl := newCapBench(t, &c)
	sim.Detach()

	var s CapacitanceSample
	ctl.With(relay.Capacitance, func() error {
		s = m.Measure()
		return nil
	})

	require.True(t, s.Valid)
	assert.Zero(t, s.Picofarads)
}

func TestCapacitance_Timeout(t *testing.T) {
	c := cal.Default()
	m, sim, ctl := newCapBench(t, &c)
	// Far too large to cross 50% inside the timeout.
	sim.Attach(fixture.CableSpec{CapacitancePF: 1e6})

	var s CapacitanceSample
	ctl.With(relay.Capacitance, func() error {
		s = m.Measure()
		return nil
	})

	assert.False(t, s.Valid)
	assert.Equal(t, StateTimedOut, s.State)
	assert.Zero(t, s.SampleCount)
	assert.Zero(t, s.ChargeTimeUS)
	assert.Zero(t, s.Picofarads)
}

func TestCapacitance_LeavesNodeDischarged(t *testing.T) {
	c := cal.Default()
	m, sim, ctl := newCapBench(t, &c)

	ctl.With(relay.Capacitance, func() error {
		m.Measure()

		// Whatever the outcome, the charge line must be off and the
		// discharge path engaged.
		assert.False(t, sim.Read(fixture.CapCharge))
		assert.False(t, sim.Read(fixture.CapDischarge))
		return nil
	})

	sim.Sleep(config.Default().Measurement.DischargeSettle)
	assert.Less(t, sim.ReadADC(fixture.SenseCapacitance), uint16(20))
}

func TestChargeState_String(t *testing.T) {
	assert.Equal(t, "discharged", StateDischarged.String())
	assert.Equal(t, "threshold_reached", StateThresholdReached.String())
	assert.Equal(t, "timed_out", StateTimedOut.String())
}
