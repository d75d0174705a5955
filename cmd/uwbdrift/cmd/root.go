/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/facebook/uwbdrift/config"
	"github.com/facebook/uwbdrift/uwb"
)

// RootCmd is a main entry point
var RootCmd = &cobra.Command{
	Use:   "uwbdrift",
	Short: "Measure clock drift between two UWB chips",
}

var okString = color.GreenString("[OK]")
var warnString = color.YellowString("[WARN]")
var failString = color.RedString("[FAIL]")

// flags
var (
	rootVerboseFlag bool
	rootConfigFlag  string
	rootFlags       config.Config
)

func init() {
	defaults := config.DefaultConfig()
	f := RootCmd.PersistentFlags()
	f.BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	f.StringVarP(&rootConfigFlag, "config", "c", "", "path to the config")
	f.StringVarP(&rootFlags.PortA, "porta", "a", defaults.PortA, "serial device of chip A")
	f.StringVarP(&rootFlags.PortB, "portb", "b", defaults.PortB, "serial device of chip B, drift is reported relative to it")
	f.IntVar(&rootFlags.BaudRate, "baud", defaults.BaudRate, "serial console baud rate")
	f.DurationVarP(&rootFlags.Wait, "wait", "w", defaults.Wait, "wall-clock time between the two rounds")
	f.Float64Var(&rootFlags.TickFrequency, "frequency", defaults.TickFrequency, "nominal tick frequency in Hz")
	f.UintVar(&rootFlags.CounterWidth, "width", defaults.CounterWidth, "tick counter width in bits")
	f.IntVar(&rootFlags.MaxLines, "maxlines", defaults.MaxLines, "console lines to read per sample before giving up")
	f.DurationVar(&rootFlags.ReadTimeout, "readtimeout", defaults.ReadTimeout, "single serial read timeout")
	f.DurationVar(&rootFlags.Settle, "settle", defaults.Settle, "pause after flushing the consoles")
}

// ConfigureVerbosity configures log verbosity based on parsed flags. Needs to be called by any subcommand.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

func setFlags(c *cobra.Command) map[string]bool {
	set := make(map[string]bool)
	c.Flags().Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	return set
}

// prepareConfig merges defaults, config file and flags explicitly set on c, and validates the result
func prepareConfig(c *cobra.Command) (*config.Config, error) {
	return config.PrepareConfig(rootConfigFlag, &rootFlags, setFlags(c))
}

// openChips opens both consoles. The caller must close both chips.
func openChips(cfg *config.Config) (*uwb.Chip, *uwb.Chip, error) {
	log.Infof("Opening %s and %s at %d baud...", cfg.PortA, cfg.PortB, cfg.BaudRate)
	a, err := uwb.Open(cfg.PortA, cfg.BaudRate, cfg.ReadTimeout, cfg.MaxLines)
	if err != nil {
		return nil, nil, err
	}
	b, err := uwb.Open(cfg.PortB, cfg.BaudRate, cfg.ReadTimeout, cfg.MaxLines)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, b, nil
}

func closeChip(c *uwb.Chip) {
	if err := c.Close(); err != nil {
		log.Warningf("closing %s: %v", c.Name(), err)
	}
}

// Execute is the main entry point for CLI interface
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
