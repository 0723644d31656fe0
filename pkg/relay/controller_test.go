package relay

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
)

func newController(t *testing.T) (*Controller, *fixture.Sim) {
	t.Helper()
	sim := fixture.NewSim(config.Default())
	return New(sim, time.Millisecond), sim
}

func TestController_StartsIdle(t *testing.T) {
	c, sim := newController(t)

	assert.Equal(t, Idle, c.Mode())
	for _, p := range []fixture.Pin{
		fixture.RelayTip, fixture.RelayRing, fixture.RelaySleeve,
		fixture.RelayPolarity, fixture.RelayCalibration,
		fixture.ResistanceSource, fixture.CapCharge, fixture.CapDischarge,
	} {
		assert.False(t, sim.Read(p), "pin %v should be low in idle", p)
	}
}

func TestController_SetMode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		high []fixture.Pin
	}{
		{
			name: "continuity engages the loop relays",
			mode: Continuity,
			high: []fixture.Pin{fixture.RelayTip, fixture.RelayRing, fixture.RelaySleeve},
		},
		{
			name: "polarity adds the polarity relay",
			mode: Polarity,
			high: []fixture.Pin{fixture.RelayTip, fixture.RelayRing, fixture.RelaySleeve, fixture.RelayPolarity},
		},
		{
			name: "resistance routes tip to sleeve",
			mode: Resistance,
			high: []fixture.Pin{fixture.RelayTip, fixture.RelaySleeve},
		},
		{
			name: "calibration engages the reference relay",
			mode: Calibration,
			high: []fixture.Pin{fixture.RelayTip, fixture.RelayRing, fixture.RelaySleeve, fixture.RelayCalibration},
		},
	}

	allRelays := []fixture.Pin{
		fixture.RelayTip, fixture.RelayRing, fixture.RelaySleeve,
		fixture.RelayPolarity, fixture.RelayCalibration,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sim := newController(t)
			c.SetMode(tt.mode)
			assert.Equal(t, tt.mode, c.Mode())

			want := make(map[fixture.Pin]bool)
			for _, p := range tt.high {
				want[p] = true
			}
			for _, p := range allRelays {
				assert.Equal(t, want[p], sim.Read(p), "pin %v", p)
			}
		})
	}
}

func TestController_ModeNeverDrivesSources(t *testing.T) {
	// Entering a mode must not energize a drive line; meters own those.
	for m := range topologies {
		c, sim := newController(t)
		c.SetMode(m)
		assert.False(t, sim.Read(fixture.ResistanceSource), "mode %v", m)
		assert.False(t, sim.Read(fixture.CapCharge), "mode %v", m)
	}
}

func TestController_SettleAdvancesClock(t *testing.T) {
	sim := fixture.NewSim(config.Default())
	c := New(sim, 20*time.Millisecond)

	before := sim.Now()
	c.SetMode(Continuity)
	assert.Equal(t, int64(20000), sim.Now()-before)
}

func TestController_With(t *testing.T) {
	c, sim := newController(t)

	var seen Mode
	err := c.With(Capacitance, func() error {
		seen = c.Mode()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Capacitance, seen)
	assert.Equal(t, Idle, c.Mode())
	assert.False(t, sim.Read(fixture.RelayTip))
}

func TestController_WithResetsOnError(t *testing.T) {
	c, sim := newController(t)

	wantErr := errors.New("measurement blew up")
	err := c.With(Resistance, func() error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)

	// Failure inside the mode must still release every relay.
	assert.Equal(t, Idle, c.Mode())
	assert.False(t, sim.Read(fixture.RelayTip))
	assert.False(t, sim.Read(fixture.RelaySleeve))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "capacitance", Capacitance.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
