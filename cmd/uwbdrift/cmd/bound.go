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
)

func init() {
	RootCmd.AddCommand(boundCmd)
}

func boundRun(w io.Writer, cfg *config.Config) error {
	if cfg.TickFrequency <= 0 {
		return fmt.Errorf("frequency must be greater than zero")
	}
	if cfg.CounterWidth == 0 || cfg.CounterWidth > drift.MaxCounterWidth {
		return fmt.Errorf("width must be between 1 and %d bits", drift.MaxCounterWidth)
	}
	bound := drift.MaxSafeWait(cfg.CounterWidth, cfg.TickFrequency)
	fmt.Fprintf(w, "Counter width      : %d bits\n", cfg.CounterWidth)
	fmt.Fprintf(w, "Tick frequency     : %.0f Hz\n", cfg.TickFrequency)
	fmt.Fprintf(w, "Wrap period        : %v\n", bound)
	status := okString
	if cfg.Wait >= bound {
		status = failString
	} else if float64(cfg.Wait) > 0.8*float64(bound) {
		status = warnString
	}
	fmt.Fprintf(w, "Configured wait    : %v %s\n", cfg.Wait, status)
	return nil
}

var boundCmd = &cobra.Command{
	Use:   "bound",
	Short: "Print the longest wait a single counter wraparound allows",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := config.MergeConfig(rootConfigFlag, &rootFlags, setFlags(c))
		if err != nil {
			log.Fatal(err)
		}
		if err := boundRun(c.OutOrStdout(), cfg); err != nil {
			log.Fatal(err)
		}
	},
}
