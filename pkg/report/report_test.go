package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/tester"
)

func TestCapacitance(t *testing.T) {
	tests := []struct {
		name   string
		sample meter.CapacitanceSample
		want   string
	}{
		{
			name: "in range",
			sample: meter.CapacitanceSample{
				Valid: true, State: meter.StateThresholdReached,
				ChargeTimeUS: 45678, Picofarads: 123.4, SampleCount: 5,
			},
			want: "CAP:PASS:PF:123.4:TIME_US:45678:SAMPLES:5",
		},
		{
			name: "out of range warns",
			sample: meter.CapacitanceSample{
				Valid: true, State: meter.StateThresholdReached,
				ChargeTimeUS: 5000, Picofarads: 4700.0, SampleCount: 5,
			},
			want: "CAP:WARN:PF:4700.0:TIME_US:5000:SAMPLES:5",
		},
		{
			name: "upper boundary is inclusive",
			sample: meter.CapacitanceSample{
				Valid: true, State: meter.StateThresholdReached,
				ChargeTimeUS: 3050, Picofarads: 2000.0, SampleCount: 5,
			},
			want: "CAP:PASS:PF:2000.0:TIME_US:3050:SAMPLES:5",
		},
		{
			name: "lower boundary is inclusive",
			sample: meter.CapacitanceSample{
				Valid: true, State: meter.StateThresholdReached,
				ChargeTimeUS: 76, Picofarads: 50.0, SampleCount: 5,
			},
			want: "CAP:PASS:PF:50.0:TIME_US:76:SAMPLES:5",
		},
		{
			name:   "timeout",
			sample: meter.CapacitanceSample{State: meter.StateTimedOut},
			want:   "CAP:FAIL:TIMEOUT:No charge detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Capacitance(tt.sample, 50, 2000))
		})
	}
}

func TestCapacitanceCal(t *testing.T) {
	lines := CapacitanceCal(73.5)
	assert.Equal(t, []string{
		"CAP_CAL:Measured stray capacitance: 73.5 pF",
		"CAP_CAL:Update capacitance offset to 74 pF",
	}, lines)
}

func TestResistance(t *testing.T) {
	tests := []struct {
		name       string
		reading    meter.ResistanceReading
		calibrated bool
		want       string
	}{
		{
			name:       "pass",
			reading:    meter.ResistanceReading{Ohms: 0.52, RawOhms: 0.81},
			calibrated: true,
			want:       "RES:PASS:OHM:0.52",
		},
		{
			name:       "too resistive",
			reading:    meter.ResistanceReading{Ohms: 7.31, RawOhms: 7.60},
			calibrated: true,
			want:       "RES:FAIL:OHM:7.31",
		},
		{
			name:       "uncalibrated flagged",
			reading:    meter.ResistanceReading{Ohms: 0.81, RawOhms: 0.81},
			calibrated: false,
			want:       "RES:PASS:OHM:0.81:UNCAL",
		},
		{
			name:       "open",
			reading:    meter.ResistanceReading{Open: true},
			calibrated: true,
			want:       "RES:FAIL:OPEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resistance(tt.reading, 5, tt.calibrated))
		})
	}
}

func TestContinuity(t *testing.T) {
	tests := []struct {
		name                        string
		tip, ring, sleeve, polarity bool
		want                        string
	}{
		{
			name: "all good",
			tip:  true, ring: true, sleeve: true, polarity: true,
			want: "CONT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1",
		},
		{
			name: "no cable",
			want: "CONT:FAIL:TIP:0:RING:0:SLEEVE:0:POL:0:REASON:NO_CABLE",
		},
		{
			name: "tip open",
			ring: true, sleeve: true,
			want: "CONT:FAIL:TIP:0:RING:1:SLEEVE:1:POL:0:REASON:TIP_OPEN",
		},
		{
			name: "ring open",
			tip:  true, sleeve: true,
			want: "CONT:FAIL:TIP:1:RING:0:SLEEVE:1:POL:0:REASON:RING_OPEN",
		},
		{
			name: "sleeve open",
			tip:  true, ring: true,
			want: "CONT:FAIL:TIP:1:RING:1:SLEEVE:0:POL:0:REASON:SLEEVE_OPEN",
		},
		{
			name: "reversed",
			tip:  true, ring: true, sleeve: true,
			want: "CONT:FAIL:TIP:1:RING:1:SLEEVE:1:POL:0:REASON:REVERSED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Continuity(tt.tip, tt.ring, tt.sleeve, tt.polarity))
		})
	}
}

func TestCalibration(t *testing.T) {
	assert.Equal(t, "CAL:OK:STRAY:73.5", Calibration(73.5))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "STATUS:READY:CAL:1:SUPPLY:4.98:INSERTED:1", Status(true, 4.98, true))
	assert.Equal(t, "STATUS:READY:CAL:0:SUPPLY:5.01:INSERTED:0", Status(false, 5.01, false))
}

func TestResult(t *testing.T) {
	tests := []struct {
		name   string
		result tester.Result
		want   string
	}{
		{
			name: "pass",
			result: tester.Result{
				TipContinuity: true, RingContinuity: true, SleeveContinuity: true,
				PolarityCorrect: true, ResistanceOhms: 0.52,
				CapacitancePF: 480.2, CapacitanceValid: true,
				Pass: true, DurationMS: 812,
			},
			want: "RESULT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1:OHM:0.52:PF:480.2:TIME_MS:812",
		},
		{
			name: "open loop and timed-out capacitance",
			result: tester.Result{
				TipContinuity: true, RingContinuity: true,
				ResistanceOpen: true,
				Err:            "resistance open circuit; capacitance no charge detected",
				DurationMS:     1200,
			},
			want: "RESULT:FAIL:TIP:1:RING:1:SLEEVE:0:POL:0:OHM:OPEN:PF:INVALID:TIME_MS:1200" +
				":ERROR:resistance open circuit; capacitance no charge detected",
		},
		{
			name: "uncalibrated pass",
			result: tester.Result{
				TipContinuity: true, RingContinuity: true, SleeveContinuity: true,
				PolarityCorrect: true, ResistanceOhms: 0.81,
				CapacitancePF: 512.7, CapacitanceValid: true,
				Pass: true, Uncalibrated: true, DurationMS: 815,
			},
			want: "RESULT:PASS:TIP:1:RING:1:SLEEVE:1:POL:1:OHM:0.81:PF:512.7:TIME_MS:815:UNCAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Result(tt.result))
		})
	}
}
