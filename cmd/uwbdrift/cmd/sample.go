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
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/uwbdrift/config"
	"github.com/facebook/uwbdrift/drift"
	"github.com/facebook/uwbdrift/uwb"
)

func init() {
	RootCmd.AddCommand(sampleCmd)
}

// sampleSources reads one timestamp from every source and prints it.
// All sources are tried, the first error is returned.
func sampleSources(w io.Writer, sources []drift.Source, cfg *config.Config) error {
	var firstErr error
	for _, s := range sources {
		if err := s.Flush(); err != nil {
			fmt.Fprintln(w, failString, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("flushing %s: %w", s.Name(), err)
			}
			continue
		}
		ts, err := s.Sample()
		if err != nil {
			fmt.Fprintln(w, failString, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ts &= drift.TickCount(drift.Mask(cfg.CounterWidth))
		fmt.Fprintf(w, "%s %s: %s (%.6f s)\n", okString, s.Name(), ts, drift.Seconds(ts, cfg.TickFrequency))
	}
	return firstErr
}

func sampleRun(w io.Writer, cfg *config.Config, devices []string) error {
	sources := []drift.Source{}
	for _, d := range devices {
		c, err := uwb.Open(d, cfg.BaudRate, cfg.ReadTimeout, cfg.MaxLines)
		if err != nil {
			return err
		}
		defer closeChip(c)
		sources = append(sources, c)
	}
	return sampleSources(w, sources, cfg)
}

var sampleCmd = &cobra.Command{
	Use:   "sample [device...]",
	Short: "Read one timestamp from each chip",
	Long:  "Read one timestamp from each listed serial device, or from --porta and --portb when none are given.",
	Run: func(c *cobra.Command, args []string) {
		ConfigureVerbosity()
		cfg, err := prepareConfig(c)
		if err != nil {
			log.Fatal(err)
		}
		devices := args
		if len(devices) == 0 {
			devices = []string{cfg.PortA, cfg.PortB}
		}
		if err := sampleRun(c.OutOrStdout(), cfg, devices); err != nil {
			log.Fatal(err)
		}
	},
}
