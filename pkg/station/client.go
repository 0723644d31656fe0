// Package station talks to a fixture unit over its serial link. It sends the
// line commands the firmware dispatcher understands (ID, TEST, CONT, RES,
// CAP, CAL, STATUS, RESET) and parses the report lines that come back.
package station

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/greenlight/cabletester/pkg/tester"
)

const (
	// DefaultBaudRate matches the fixture firmware's UART configuration.
	DefaultBaudRate = 9600
	// DefaultTimeout bounds a single command/response exchange.
	DefaultTimeout = 10 * time.Second

	// resetGrace is how long the MCU takes to reboot after the host opens
	// the port.
	resetGrace = 2 * time.Second
)

// ErrNotConnected is returned when a command is issued before Connect.
var ErrNotConnected = errors.New("station not connected")

// Port describes an available serial port.
type Port struct {
	Name        string
	Description string
}

// Client is a connection to a fixture unit.
type Client struct {
	port     string
	baudRate int

	mu        sync.Mutex
	conn      serial.Port
	connected bool
	unitID    string
}

// New creates a client for the given port.
func New(port string, baudRate int) *Client {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Client{port: port, baudRate: baudRate}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list serial ports")
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the port, waits out the MCU reset, and verifies the unit by
// asking for its ID.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return errors.New("already connected")
	}

	conn, err := serial.Open(c.port, &serial.Mode{BaudRate: c.baudRate})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", c.port)
	}
	if err := conn.SetReadTimeout(100 * time.Millisecond); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to set read timeout")
	}

	// The board reboots when the host opens the port; wait it out and drop
	// any boot chatter.
	time.Sleep(resetGrace)
	conn.ResetInputBuffer()

	c.conn = conn
	c.connected = true

	id, err := c.command("ID", "ID:", DefaultTimeout)
	if err != nil {
		c.closeLocked()
		return errors.Wrap(err, "unit did not identify")
	}
	c.unitID = strings.TrimPrefix(id, "ID:")
	logrus.Infof("connected to fixture unit %s on %s", c.unitID, c.port)

	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	c.unitID = ""
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected reports whether the client currently holds an open port.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// UnitID returns the identifier the unit reported at connect time.
func (c *Client) UnitID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unitID
}

// RunTest runs the full test sequence on the unit.
func (c *Client) RunTest() (tester.Result, error) {
	line, err := c.exchange("TEST", "RESULT:")
	if err != nil {
		return tester.Result{}, err
	}
	return parseResult(line)
}

// RunContinuity runs only the continuity/polarity test.
func (c *Client) RunContinuity() (ContinuityStatus, error) {
	line, err := c.exchange("CONT", "CONT:")
	if err != nil {
		return ContinuityStatus{}, err
	}
	return parseContinuity(line)
}

// RunResistance runs only the resistance test.
func (c *Client) RunResistance() (ResistanceStatus, error) {
	line, err := c.exchange("RES", "RES:")
	if err != nil {
		return ResistanceStatus{}, err
	}
	return parseResistance(line)
}

// RunCapacitance runs only the capacitance test.
func (c *Client) RunCapacitance() (CapacitanceStatus, error) {
	line, err := c.exchange("CAP", "CAP:")
	if err != nil {
		return CapacitanceStatus{}, err
	}
	return parseCapacitance(line)
}

// Calibrate runs the unit's calibration sequence. The jacks must be empty.
func (c *Client) Calibrate() (float64, error) {
	line, err := c.exchange("CAL", "CAL:OK")
	if err != nil {
		return 0, err
	}
	return parseCalibration(line)
}

// Status queries the unit's readiness.
func (c *Client) Status() (Status, error) {
	line, err := c.exchange("STATUS", "STATUS:")
	if err != nil {
		return Status{}, err
	}
	return parseStatus(line)
}

// Reset forces the unit back to the idle topology.
func (c *Client) Reset() error {
	_, err := c.exchange("RESET", "RESET:OK")
	return err
}

// exchange sends one command and waits for the matching response line.
func (c *Client) exchange(cmd, prefix string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", ErrNotConnected
	}
	return c.command(cmd, prefix, DefaultTimeout)
}

func (c *Client) command(cmd, prefix string, timeout time.Duration) (string, error) {
	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", errors.Wrapf(err, "failed to send %s", cmd)
	}
	logrus.Debugf("station sent: %s", cmd)
	return c.readUntil(prefix, timeout)
}

// readUntil reads lines until one starts with the expected prefix, skipping
// chatter and surfacing ERROR: lines from the unit.
func (c *Client) readUntil(prefix string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		line, err := c.readLine(deadline)
		if err != nil {
			return "", err
		}
		if line == "" {
			continue
		}
		logrus.Debugf("station received: %s", line)
		if strings.HasPrefix(line, prefix) {
			return line, nil
		}
		if strings.HasPrefix(line, "ERROR:") {
			return "", errors.Errorf("unit error: %s", strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return "", errors.Errorf("timed out waiting for %s response", prefix)
}

// readLine accumulates bytes until a newline or the deadline. The port's own
// read timeout keeps each Read call short.
func (c *Client) readLine(deadline time.Time) (string, error) {
	var buf []byte
	b := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := c.conn.Read(b)
		if err != nil {
			return "", errors.Wrap(err, "serial read failed")
		}
		if n == 0 {
			continue
		}
		switch b[0] {
		case '\n':
			return strings.TrimSpace(string(buf)), nil
		case '\r':
			// swallow
		default:
			buf = append(buf, b[0])
		}
	}
	return "", errors.New("timed out reading line")
}
