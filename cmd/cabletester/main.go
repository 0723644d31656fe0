package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel   = "info"
	configPath = "config.yaml"
	portName   = ""
	useSim     = false
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.Kitchen,
	})
	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCommand .
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cabletester",
		Short:        "cabletester runs electrical tests on audio cables through a bench fixture",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVarP(&configPath, "config", "c", "config.yaml", "configuration file")
	globalFlags.StringVarP(&portName, "port", "p", "", "fixture serial port (overrides the config)")
	globalFlags.BoolVar(&useSim, "sim", false, "run against the simulated fixture instead of a serial unit")

	cmd.AddCommand(
		NewRunCommand(),
		NewContinuityCommand(),
		NewResistanceCommand(),
		NewCapacitanceCommand(),
		NewCalibrateCommand(),
		NewStatusCommand(),
		NewResetCommand(),
		NewPortsCommand(),
	)

	return cmd
}
