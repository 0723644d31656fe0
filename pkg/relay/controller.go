// Package relay switches the fixture between electrical test modes. The
// controller is the only code that touches relay levels and pin directions
// wholesale; measurements run inside With so the fixture always returns to
// the idle topology, whatever happens in between.
package relay

import (
	"time"

	"github.com/greenlight/cabletester/pkg/fixture"
)

// Controller sequences the fixture's relay topology.
type Controller struct {
	hw     fixture.Hardware
	settle time.Duration
	mode   Mode
}

// New creates a controller and puts the fixture into the idle topology.
func New(hw fixture.Hardware, settle time.Duration) *Controller {
	c := &Controller{hw: hw, settle: settle}
	c.Reset()
	return c
}

// SetMode drives every relay and pin direction the mode requires, then waits
// the settle delay for relay transients and stray charge to die out.
func (c *Controller) SetMode(m Mode) {
	c.apply(topologies[m])
	c.mode = m
	c.hw.Sleep(c.settle)
}

// Reset returns the fixture to the idle topology. It is safe from any prior
// state and is the only mode-exit path.
func (c *Controller) Reset() {
	c.apply(idleTopology)
	c.mode = Idle
	c.hw.Sleep(c.settle)
}

// Mode returns the currently active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// With enters a mode, runs fn, and restores the idle topology on every exit
// path, including when fn fails.
func (c *Controller) With(m Mode, fn func() error) error {
	c.SetMode(m)
	defer c.Reset()
	return fn()
}

func (c *Controller) apply(assignments []assignment) {
	for _, a := range assignments {
		if a.mode == fixture.PinOutput {
			// Level first so the pin never drives a stale value.
			c.hw.Write(a.pin, a.level)
			c.hw.Configure(a.pin, fixture.PinOutput)
		} else {
			c.hw.Configure(a.pin, fixture.PinInput)
		}
	}
}
