package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/greenlight/cabletester/pkg/cal"
	"github.com/greenlight/cabletester/pkg/config"
	"github.com/greenlight/cabletester/pkg/fixture"
	"github.com/greenlight/cabletester/pkg/meter"
	"github.com/greenlight/cabletester/pkg/report"
	"github.com/greenlight/cabletester/pkg/station"
	"github.com/greenlight/cabletester/pkg/tester"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if portName != "" {
		cfg.Serial.Port = portName
	}
	return cfg, nil
}

// newSimTester builds a tester on the simulated fixture.
func newSimTester(cfg *config.Config) (*tester.Tester, error) {
	sim := fixture.NewSim(cfg)
	return tester.New(sim, cfg, cal.NewFileStore(cfg.Calibration.Path))
}

// connect opens the serial link to a fixture unit.
func connect(cfg *config.Config) (*station.Client, error) {
	c := station.New(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err := c.Connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewRunCommand .
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full test sequence on the inserted cable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var r tester.Result
			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				r = tr.Run()
			} else {
				c, err := connect(cfg)
				if err != nil {
					return err
				}
				defer c.Close()
				if r, err = c.RunTest(); err != nil {
					return err
				}
			}

			cmd.Println(report.Result(r))
			if !r.Pass {
				return errors.New("cable test failed")
			}
			return nil
		},
	}
}

// NewContinuityCommand .
func NewContinuityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "continuity",
		Short: "Test continuity and polarity only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				c := tr.MeasureContinuity()
				cmd.Println(report.Continuity(
					c.Tip.Closed, c.Ring.Closed, c.Sleeve.Closed, c.Polarity.Correct))
				return nil
			}

			c, err := connect(cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.RunContinuity()
			if err != nil {
				return err
			}
			cmd.Println(report.Continuity(s.Tip, s.Ring, s.Sleeve, s.Polarity))
			return nil
		},
	}
}

// NewResistanceCommand .
func NewResistanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resistance",
		Short: "Measure loop resistance only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var r meter.ResistanceReading
			calibrated := true
			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				r = tr.MeasureResistance()
				calibrated = tr.Calibration().Calibrated
			} else {
				c, err := connect(cfg)
				if err != nil {
					return err
				}
				defer c.Close()
				s, err := c.RunResistance()
				if err != nil {
					return err
				}
				r = meter.ResistanceReading{Ohms: s.Ohms, RawOhms: s.Ohms, Open: s.Open}
				calibrated = !s.Uncalibrated
			}

			cmd.Println(report.Resistance(r, cfg.Limits.MaxResistanceOhms, calibrated))
			return nil
		},
	}
}

// NewCapacitanceCommand .
func NewCapacitanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capacitance",
		Short: "Measure shunt capacitance only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var s meter.CapacitanceSample
			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				s = tr.MeasureCapacitance()
			} else {
				c, err := connect(cfg)
				if err != nil {
					return err
				}
				defer c.Close()
				cs, err := c.RunCapacitance()
				if err != nil {
					return err
				}
				s = meter.CapacitanceSample{
					Valid:        cs.Valid,
					Picofarads:   cs.Picofarads,
					ChargeTimeUS: cs.ChargeTimeUS,
					SampleCount:  cs.Samples,
				}
			}

			cmd.Println(report.Capacitance(s, cfg.Limits.CapMinPF, cfg.Limits.CapMaxPF))
			return nil
		},
	}
}

// NewCalibrateCommand .
func NewCalibrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Calibrate the fixture (remove the cable first)",
		Long: "Calibrate the fixture against its built-in references: the supply monitor, " +
			"the zero-ohm reference relay, and the open jacks. The cable must be removed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var stray float64
			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				data, err := tr.Calibrate()
				if err != nil {
					return err
				}
				stray = data.CapacitanceOffset
			} else {
				c, err := connect(cfg)
				if err != nil {
					return err
				}
				defer c.Close()
				if stray, err = c.Calibrate(); err != nil {
					return err
				}
			}

			for _, line := range report.CapacitanceCal(stray) {
				cmd.Println(line)
			}
			cmd.Println(report.Calibration(stray))
			return nil
		},
	}
}

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show fixture status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if useSim {
				tr, err := newSimTester(cfg)
				if err != nil {
					return err
				}
				cmd.Println(report.Status(
					tr.Calibration().Calibrated, tr.SupplyVoltage(), tr.Inserted()))
				return nil
			}

			c, err := connect(cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.Status()
			if err != nil {
				return err
			}
			cmd.Println(report.Status(s.Calibrated, s.Supply, s.Inserted))
			return nil
		},
	}
}

// NewResetCommand .
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return the fixture to its idle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if useSim {
				// A simulated fixture is rebuilt per invocation; nothing to do.
				cmd.Println("RESET:OK")
				return nil
			}

			c, err := connect(cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Reset(); err != nil {
				return err
			}
			cmd.Println("RESET:OK")
			return nil
		},
	}
}

// NewPortsCommand .
func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := station.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				logrus.Warn("no serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p.Name)
			}
			return nil
		},
	}
}
