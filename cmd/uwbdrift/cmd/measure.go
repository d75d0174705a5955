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
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/facebook/uwbdrift/config"
	"github.com/facebook/uwbdrift/drift"
)

var (
	measureJSONFlag  bool
	measureTableFlag bool
)

func init() {
	RootCmd.AddCommand(measureCmd)
	measureCmd.Flags().BoolVarP(&measureJSONFlag, "json", "j", false, "JSON output")
	measureCmd.Flags().BoolVarP(&measureTableFlag, "table", "t", false, "print summary as a table")
}

func progressLine(format string, args ...interface{}) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Printf("\u001b[1000D")
	fmt.Printf(format, args...)
}

func printReport(w io.Writer, report *drift.Report, jsonOut, tableOut bool) error {
	if jsonOut {
		b, err := report.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	if tableOut {
		return report.WriteTable(w)
	}
	return report.WriteText(w)
}

func measureRun(cfg *config.Config, jsonOut, tableOut bool) error {
	a, b, err := openChips(cfg)
	if err != nil {
		return err
	}
	defer closeChip(a)
	defer closeChip(b)

	e, err := drift.NewEstimator(cfg.Estimator(), drift.SystemClock{})
	if err != nil {
		return err
	}
	e.OnWait = func(d time.Duration) {
		progressLine("Waiting %v between rounds...\n", d)
	}
	report, err := e.Estimate(a, b)
	if err != nil {
		return err
	}
	return printReport(os.Stdout, report, jsonOut, tableOut)
}

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Measure drift of chip A relative to chip B",
	Long:  "Sample both chips twice, A then B each round, separated by --wait, and report the drift of A relative to B in ticks, ppm and us/s.",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := prepareConfig(c)
		if err != nil {
			log.Fatal(err)
		}
		if err := measureRun(cfg, measureJSONFlag, measureTableFlag); err != nil {
			log.Fatal(err)
		}
	},
}
