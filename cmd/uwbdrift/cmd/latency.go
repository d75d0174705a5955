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

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/uwbdrift/config"
	"github.com/facebook/uwbdrift/drift"
	"github.com/facebook/uwbdrift/uwb"
)

var latencyCountFlag int

func init() {
	RootCmd.AddCommand(latencyCmd)
	latencyCmd.Flags().IntVarP(&latencyCountFlag, "count", "n", 20, "number of requests per chip")
}

func printLatency(w io.Writer, stats []*uwb.LatencyStats) error {
	table := tablewriter.NewWriter(w)
	table.Header("device", "count", "mean", "stddev", "min", "max")
	for _, s := range stats {
		err := table.Append([]string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			s.Mean.String(),
			s.Stddev.String(),
			s.Min.String(),
			s.Max.String(),
		})
		if err != nil {
			return fmt.Errorf("adding table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

func latencyRun(w io.Writer, cfg *config.Config, count int) error {
	a, b, err := openChips(cfg)
	if err != nil {
		return err
	}
	defer closeChip(a)
	defer closeChip(b)

	stats := []*uwb.LatencyStats{}
	for _, c := range []*uwb.Chip{a, b} {
		s, err := uwb.MeasureLatency(c, drift.SystemClock{}, count)
		if err != nil {
			return err
		}
		stats = append(stats, s)
	}
	return printLatency(w, stats)
}

var latencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Measure how long timestamp requests take on each chip",
	Long:  "Measure how long timestamp requests take on each chip. Drift measurement only cancels a constant request latency, a large stddev here makes results unreliable.",
	Run: func(c *cobra.Command, _ []string) {
		ConfigureVerbosity()
		cfg, err := prepareConfig(c)
		if err != nil {
			log.Fatal(err)
		}
		if err := latencyRun(c.OutOrStdout(), cfg, latencyCountFlag); err != nil {
			log.Fatal(err)
		}
	},
}
