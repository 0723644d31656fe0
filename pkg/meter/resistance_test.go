package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/relay"
	"github.com/greenlight/cabletester/pkg/sample"
)

func newResBench(t *testing.T, c *cal.Data) (*Resistance, *fixture.Sim, *relay.Controller) {
	t.Helper()
	cfg := config.Default()
	sim := fixture.NewSim(cfg)
	ctl := relay.New(sim, cfg.Measurement.SettleDelay)
	reader := sample.NewReader(sim, cfg.Electrical, c)
	return NewResistance(sim, reader, cfg, c), sim, ctl
}

func TestResistance_Measure(t *testing.T) {
	c := cal.Default()
	m, _, ctl := newResBench(t, &c)

	var r ResistanceReading
	ctl.With(relay.Resistance, func() error {
		r = m.Measure()
		return nil
	})

	require.False(t, r.Open)
	// 0.5 ohm loop plus 0.3 ohm leads; the 10-bit ADC quantizes the tiny
	// sense voltage, so allow a generous band.
	assert.InDelta(t, 0.8, r.RawOhms, 0.5)
	assert.Equal(t, r.RawOhms, r.Ohms) // zero offset
}

func TestResistance_OffsetApplied(t *testing.T) {
	c := cal.Data{VoltageFactor: 1, ResistanceOffset: 0.3, Calibrated: true}
	m, _, ctl := newResBench(t, &c)

	var r ResistanceReading
	ctl.With(relay.Resistance, func() error {
		r = m.Measure()
		return nil
	})

	require.False(t, r.Open)
	assert.InDelta(t, r.RawOhms-0.3, r.Ohms, 1e-9)
}

func TestResistance_OffsetClampsAtZero(t *testing.T) {
	c := cal.Data{VoltageFactor: 1, ResistanceOffset: 100, Calibrated: true}
	m, _, ctl := newResBench(t, &c)

	var r ResistanceReading
	ctl.With(relay.Resistance, func() error {
		r = m.Measure()
		return nil
	})

	require.False(t, r.Open)
	assert.Zero(t, r.Ohms)
}

func TestResistance_Open(t *testing.T) {
	c := cal.Default()
	m, sim, ctl := newResBench(t, &c)
	sim.Detach()

	var r ResistanceReading
	ctl.With(relay.Resistance, func() error {
		r = m.Measure()
		return nil
	})

	assert.True(t, r.Open)
	assert.Zero(t, r.Ohms)
}

func TestResistance_SourceReleasedAfterMeasure(t *testing.T) {
	c := cal.Default()
	m, sim, ctl := newResBench(t, &c)

	ctl.With(relay.Resistance, func() error {
		m.Measure()
		assert.False(t, sim.Read(fixture.ResistanceSource))
		return nil
	})
}
