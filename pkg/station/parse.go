package station

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/greenlight/cabletester/pkg/tester"
)

// lookup finds the value following a key token in a colon-delimited line.
func lookup(parts []string, key string) (string, bool) {
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == key {
			return parts[i+1], true
		}
	}
	return "", false
}

func has(parts []string, key string) bool {
	for _, p := range parts {
		if p == key {
			return true
		}
	}
	return false
}

func lookupBool(parts []string, key string) (bool, error) {
	v, ok := lookup(parts, key)
	if !ok {
		return false, errors.Errorf("missing %s field", key)
	}
	return v == "1", nil
}

// parseResult parses a RESULT line back into a test result.
// Format: RESULT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1:OHM:0.52:PF:480.2:TIME_MS:812[:UNCAL][:ERROR:msg]
func parseResult(line string) (tester.Result, error) {
	var r tester.Result

	// The error message is free text; split it off before tokenizing.
	if i := strings.Index(line, ":ERROR:"); i >= 0 {
		r.Err = line[i+len(":ERROR:"):]
		line = line[:i]
	}

	parts := strings.Split(line, ":")
	if len(parts) < 2 || parts[0] != "RESULT" {
		return r, errors.Errorf("invalid result line: %q", line)
	}
	r.Pass = parts[1] == "PASS"
	r.Uncalibrated = has(parts, "UNCAL")

	var err error
	if r.TipContinuity, err = lookupBool(parts, "TIP"); err != nil {
		return r, err
	}
	if r.RingContinuity, err = lookupBool(parts, "RING"); err != nil {
		return r, err
	}
	if r.SleeveContinuity, err = lookupBool(parts, "SLEEVE"); err != nil {
		return r, err
	}
	if r.PolarityCorrect, err = lookupBool(parts, "POL"); err != nil {
		return r, err
	}

	ohm, ok := lookup(parts, "OHM")
	if !ok {
		return r, errors.New("missing OHM field")
	}
	if ohm == "OPEN" {
		r.ResistanceOpen = true
	} else if r.ResistanceOhms, err = strconv.ParseFloat(ohm, 64); err != nil {
		return r, errors.Wrap(err, "invalid OHM value")
	}

	pf, ok := lookup(parts, "PF")
	if !ok {
		return r, errors.New("missing PF field")
	}
	if pf == "INVALID" {
		r.CapacitanceValid = false
	} else {
		if r.CapacitancePF, err = strconv.ParseFloat(pf, 64); err != nil {
			return r, errors.Wrap(err, "invalid PF value")
		}
		r.CapacitanceValid = true
	}

	if ms, ok := lookup(parts, "TIME_MS"); ok {
		if r.DurationMS, err = strconv.ParseInt(ms, 10, 64); err != nil {
			return r, errors.Wrap(err, "invalid TIME_MS value")
		}
	}

	return r, nil
}

// parseContinuity parses a CONT line.
// Format: CONT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1[:REASON:x]
func parseContinuity(line string) (ContinuityStatus, error) {
	var s ContinuityStatus
	parts := strings.Split(line, ":")
	if len(parts) < 2 || parts[0] != "CONT" {
		return s, errors.Errorf("invalid continuity line: %q", line)
	}
	s.Passed = parts[1] == "PASS"

	var err error
	if s.Tip, err = lookupBool(parts, "TIP"); err != nil {
		return s, err
	}
	if s.Ring, err = lookupBool(parts, "RING"); err != nil {
		return s, err
	}
	if s.Sleeve, err = lookupBool(parts, "SLEEVE"); err != nil {
		return s, err
	}
	if s.Polarity, err = lookupBool(parts, "POL"); err != nil {
		return s, err
	}
	s.Reason, _ = lookup(parts, "REASON")

	return s, nil
}

// parseResistance parses a RES line.
// Format: RES:PASS:OHM:0.52[:UNCAL] or RES:FAIL:OPEN
func parseResistance(line string) (ResistanceStatus, error) {
	var s ResistanceStatus
	parts := strings.Split(line, ":")
	if len(parts) < 2 || parts[0] != "RES" {
		return s, errors.Errorf("invalid resistance line: %q", line)
	}
	s.Passed = parts[1] == "PASS"
	s.Uncalibrated = has(parts, "UNCAL")

	if has(parts, "OPEN") {
		s.Open = true
		return s, nil
	}

	ohm, ok := lookup(parts, "OHM")
	if !ok {
		return s, errors.New("missing OHM field")
	}
	v, err := strconv.ParseFloat(ohm, 64)
	if err != nil {
		return s, errors.Wrap(err, "invalid OHM value")
	}
	s.Ohms = v

	return s, nil
}

// parseCapacitance parses a CAP line.
// Format: CAP:PASS:PF:123.4:TIME_US:45678:SAMPLES:5 or CAP:FAIL:TIMEOUT:...
func parseCapacitance(line string) (CapacitanceStatus, error) {
	var s CapacitanceStatus
	parts := strings.Split(line, ":")
	if len(parts) < 2 || parts[0] != "CAP" {
		return s, errors.Errorf("invalid capacitance line: %q", line)
	}

	if has(parts, "TIMEOUT") {
		return s, nil
	}
	s.Valid = true
	s.InRange = parts[1] == "PASS"

	pf, ok := lookup(parts, "PF")
	if !ok {
		return s, errors.New("missing PF field")
	}
	v, err := strconv.ParseFloat(pf, 64)
	if err != nil {
		return s, errors.Wrap(err, "invalid PF value")
	}
	s.Picofarads = v

	if us, ok := lookup(parts, "TIME_US"); ok {
		if s.ChargeTimeUS, err = strconv.ParseInt(us, 10, 64); err != nil {
			return s, errors.Wrap(err, "invalid TIME_US value")
		}
	}
	if n, ok := lookup(parts, "SAMPLES"); ok {
		if s.Samples, err = strconv.Atoi(n); err != nil {
			return s, errors.Wrap(err, "invalid SAMPLES value")
		}
	}

	return s, nil
}

// parseCalibration parses a CAL:OK line.
// Format: CAL:OK:STRAY:73.4
func parseCalibration(line string) (float64, error) {
	parts := strings.Split(line, ":")
	stray, ok := lookup(parts, "STRAY")
	if !ok {
		return 0, errors.Errorf("invalid calibration line: %q", line)
	}
	v, err := strconv.ParseFloat(stray, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid STRAY value")
	}
	return v, nil
}

// parseStatus parses a STATUS line.
// Format: STATUS:READY:CAL:1:SUPPLY:4.98:INSERTED:1
func parseStatus(line string) (Status, error) {
	var s Status
	parts := strings.Split(line, ":")
	if len(parts) < 2 || parts[0] != "STATUS" {
		return s, errors.Errorf("invalid status line: %q", line)
	}
	s.Ready = parts[1] == "READY"

	var err error
	if s.Calibrated, err = lookupBool(parts, "CAL"); err != nil {
		return s, err
	}
	if s.Inserted, err = lookupBool(parts, "INSERTED"); err != nil {
		return s, err
	}
	if v, ok := lookup(parts, "SUPPLY"); ok {
		if s.Supply, err = strconv.ParseFloat(v, 64); err != nil {
			return s, errors.Wrap(err, "invalid SUPPLY value")
		}
	}

	return s, nil
}
