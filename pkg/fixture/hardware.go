package fixture

import "time"

// Hardware is the boundary between the measurement engine and the physical
// fixture electronics (real board or simulation). All measurement routines
// are blocking and single-threaded; implementations only need to be safe for
// one caller at a time.
type Hardware interface {
	// Configure sets the direction of a pin. Configuring a pin as input
	// releases it to high impedance.
	Configure(p Pin, m PinMode)

	// Write drives an output pin high or low.
	Write(p Pin, high bool)

	// Read returns the digital level of a pin.
	Read(p Pin) bool

	// ReadADC performs one conversion on an analog pin and returns the raw
	// code (0 to full scale per the configured resolution).
	ReadADC(p Pin) uint16

	// Now returns a monotonic timestamp in microseconds. Charge timing and
	// timeouts are measured against this clock.
	Now() int64

	// Sleep blocks for the given duration on the same clock Now uses.
	Sleep(d time.Duration)
}

// Ensure the simulated fixture satisfies the boundary.
var _ Hardware = (*Sim)(nil)
