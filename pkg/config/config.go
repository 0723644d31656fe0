package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the tester configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Electrical  ElectricalConfig  `yaml:"electrical"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Limits      LimitsConfig      `yaml:"limits"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Sim         SimConfig         `yaml:"sim"`
}

// SerialConfig contains serial port configuration for a remote fixture unit.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ElectricalConfig describes the fixed fixture circuit.
type ElectricalConfig struct {
	VRef              float64 `yaml:"vref"`               // ADC reference / supply voltage (V)
	ADCBits           int     `yaml:"adc_bits"`           // ADC resolution in bits
	ChargeResistor    float64 `yaml:"charge_resistor"`    // capacitance charge resistor (ohms)
	DischargeResistor float64 `yaml:"discharge_resistor"` // capacitance discharge resistor (ohms)
	PulldownResistor  float64 `yaml:"pulldown_resistor"`  // continuity sense pulldown (ohms)
	SeriesResistor    float64 `yaml:"series_resistor"`    // resistance test series resistor (ohms)
	MonitorR1         float64 `yaml:"monitor_r1"`         // supply monitor divider upper (ohms)
	MonitorR2         float64 `yaml:"monitor_r2"`         // supply monitor divider lower (ohms)
}

// FullScale returns the maximum ADC code.
func (e ElectricalConfig) FullScale() uint16 {
	return uint16((1 << e.ADCBits) - 1)
}

// ThresholdCode returns the ADC code corresponding to 50% of the supply.
func (e ElectricalConfig) ThresholdCode() uint16 {
	return uint16(1 << (e.ADCBits - 1))
}

// MeasurementConfig contains measurement timing and averaging parameters.
type MeasurementConfig struct {
	Samples         int           `yaml:"samples"`          // averaged ADC reads per voltage sample
	CapSamples      int           `yaml:"cap_samples"`      // charge cycles per capacitance measurement
	CapTimeoutUS    int64         `yaml:"cap_timeout_us"`   // charge timeout (microseconds)
	DischargeSettle time.Duration `yaml:"discharge_settle"` // time to fully discharge the cable
	SettleDelay     time.Duration `yaml:"settle_delay"`     // relay settle after a mode transition
	SampleGap       time.Duration `yaml:"sample_gap"`       // pause between capacitance cycles
	OpenFraction    float64       `yaml:"open_fraction"`    // sense fraction of Vcc treated as open
}

// LimitsConfig contains pass/fail windows.
type LimitsConfig struct {
	ContinuityThresholdOhms float64 `yaml:"continuity_threshold_ohms"`
	MaxResistanceOhms       float64 `yaml:"max_resistance_ohms"`
	CapMinPF                float64 `yaml:"cap_min_pf"`
	CapMaxPF                float64 `yaml:"cap_max_pf"`
}

// CalibrationConfig contains calibration persistence and references.
type CalibrationConfig struct {
	Path          string  `yaml:"path"`           // calibration record file
	NominalSupply float64 `yaml:"nominal_supply"` // expected supply voltage (V)
}

// SimConfig configures the simulated fixture.
type SimConfig struct {
	Attached        bool    `yaml:"attached"`          // cable present in the jacks
	LoopResistance  float64 `yaml:"loop_resistance"`   // end-to-end loop resistance (ohms)
	CapacitancePF   float64 `yaml:"capacitance_pf"`    // cable shunt capacitance (pF)
	StrayPF         float64 `yaml:"stray_pf"`          // fixture stray capacitance (pF)
	TipOpen         bool    `yaml:"tip_open"`
	RingOpen        bool    `yaml:"ring_open"`
	SleeveOpen      bool    `yaml:"sleeve_open"`
	Reversed        bool    `yaml:"reversed"`          // tip and ring swapped at the far end
	Supply          float64 `yaml:"supply"`            // actual supply voltage (V)
	LeadResistance  float64 `yaml:"lead_resistance"`   // fixture lead resistance (ohms)
	ADCConversionUS int64   `yaml:"adc_conversion_us"` // simulated conversion time per read
	Noise           float64 `yaml:"noise"`             // sense noise amplitude (V)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 9600,
		},
		Electrical: ElectricalConfig{
			VRef:              5.0,
			ADCBits:           10,
			ChargeResistor:    2.2e6,
			DischargeResistor: 1000,
			PulldownResistor:  10000,
			SeriesResistor:    100,
			MonitorR1:         20000,
			MonitorR2:         20000,
		},
		Measurement: MeasurementConfig{
			Samples:         10,
			CapSamples:      5,
			CapTimeoutUS:    100000,
			DischargeSettle: 10 * time.Millisecond,
			SettleDelay:     20 * time.Millisecond,
			SampleGap:       10 * time.Millisecond,
			OpenFraction:    0.95,
		},
		Limits: LimitsConfig{
			ContinuityThresholdOhms: 10,
			MaxResistanceOhms:       5,
			CapMinPF:                50,
			CapMaxPF:                2000,
		},
		Calibration: CalibrationConfig{
			Path:          "calibration.json",
			NominalSupply: 5.0,
		},
		Sim: SimConfig{
			Attached:        true,
			LoopResistance:  0.5,
			CapacitancePF:   480,
			StrayPF:         20,
			Supply:          5.0,
			LeadResistance:  0.3,
			ADCConversionUS: 112,
			Noise:           0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Electrical.VRef == 0 {
		c.Electrical.VRef = def.Electrical.VRef
	}
	if c.Electrical.ADCBits == 0 {
		c.Electrical.ADCBits = def.Electrical.ADCBits
	}
	if c.Electrical.ChargeResistor == 0 {
		c.Electrical.ChargeResistor = def.Electrical.ChargeResistor
	}
	if c.Electrical.DischargeResistor == 0 {
		c.Electrical.DischargeResistor = def.Electrical.DischargeResistor
	}
	if c.Electrical.PulldownResistor == 0 {
		c.Electrical.PulldownResistor = def.Electrical.PulldownResistor
	}
	if c.Electrical.SeriesResistor == 0 {
		c.Electrical.SeriesResistor = def.Electrical.SeriesResistor
	}
	if c.Electrical.MonitorR1 == 0 {
		c.Electrical.MonitorR1 = def.Electrical.MonitorR1
	}
	if c.Electrical.MonitorR2 == 0 {
		c.Electrical.MonitorR2 = def.Electrical.MonitorR2
	}

	if c.Measurement.Samples == 0 {
		c.Measurement.Samples = def.Measurement.Samples
	}
	if c.Measurement.CapSamples == 0 {
		c.Measurement.CapSamples = def.Measurement.CapSamples
	}
	if c.Measurement.CapTimeoutUS == 0 {
		c.Measurement.CapTimeoutUS = def.Measurement.CapTimeoutUS
	}
	if c.Measurement.DischargeSettle == 0 {
		c.Measurement.DischargeSettle = def.Measurement.DischargeSettle
	}
	if c.Measurement.SettleDelay == 0 {
		c.Measurement.SettleDelay = def.Measurement.SettleDelay
	}
	if c.Measurement.SampleGap == 0 {
		c.Measurement.SampleGap = def.Measurement.SampleGap
	}
	if c.Measurement.OpenFraction == 0 {
		c.Measurement.OpenFraction = def.Measurement.OpenFraction
	}

	if c.Limits.ContinuityThresholdOhms == 0 {
		c.Limits.ContinuityThresholdOhms = def.Limits.ContinuityThresholdOhms
	}
	if c.Limits.MaxResistanceOhms == 0 {
		c.Limits.MaxResistanceOhms = def.Limits.MaxResistanceOhms
	}
	if c.Limits.CapMinPF == 0 {
		c.Limits.CapMinPF = def.Limits.CapMinPF
	}
	if c.Limits.CapMaxPF == 0 {
		c.Limits.CapMaxPF = def.Limits.CapMaxPF
	}

	if c.Calibration.Path == "" {
		c.Calibration.Path = def.Calibration.Path
	}
	if c.Calibration.NominalSupply == 0 {
		c.Calibration.NominalSupply = def.Calibration.NominalSupply
	}

	if c.Sim.Supply == 0 {
		c.Sim.Supply = def.Sim.Supply
	}
	if c.Sim.ADCConversionUS == 0 {
		c.Sim.ADCConversionUS = def.Sim.ADCConversionUS
	}
	if c.Sim.StrayPF == 0 {
		c.Sim.StrayPF = def.Sim.StrayPF
	}
}
