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

package drift

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Report is the result of one drift measurement
type Report struct {
	NameA                string        `json:"name_a"`
	NameB                string        `json:"name_b"`
	Wait                 time.Duration `json:"wait_ns"`
	First                Round         `json:"first"`
	Second               Round         `json:"second"`
	WallElapsed          float64       `json:"wall_elapsed_s"`
	PeriodA              TickCount     `json:"period_a_ticks"`
	PeriodB              TickCount     `json:"period_b_ticks"`
	SecondsA             float64       `json:"period_a_s"`
	SecondsB             float64       `json:"period_b_s"`
	DriftTicks           int64         `json:"drift_ticks"`
	DriftPPM             float64       `json:"drift_ppm"`
	DriftMicrosPerSecond float64       `json:"drift_us_per_s"`
}

func (r *Report) roundLabel() string {
	if r.Wait <= 0 {
		return fmt.Sprintf("[t=%.3fs]", r.WallElapsed)
	}
	return fmt.Sprintf("[t=%v]", r.Wait)
}

// WriteText writes the human readable report
func (r *Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"%-7s Chip A: %s  Chip B: %s\n"+
			"%-7s Chip A: %s  Chip B: %s\n"+
			"\n"+
			"Wall clock elapsed : %.6f s\n"+
			"Period A           : %d ticks  (%.6f s)\n"+
			"Period B           : %d ticks  (%.6f s)\n"+
			"Drift (ticks)      : %+d\n"+
			"Drift (ppm)        : %+.2f ppm\n"+
			"Drift (us/s)       : %+.3f us/s\n"+
			"Drift (ns/s)       : %+.3f ns/s\n",
		"[t=0]", r.First.A, r.First.B,
		r.roundLabel(), r.Second.A, r.Second.B,
		r.WallElapsed,
		uint64(r.PeriodA), r.SecondsA,
		uint64(r.PeriodB), r.SecondsB,
		r.DriftTicks,
		r.DriftPPM,
		r.DriftMicrosPerSecond,
		r.DriftMicrosPerSecond*1e3,
	)
	return err
}

// WriteTable writes the per-chip summary as a table
func (r *Report) WriteTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("chip", "t=0", r.roundLabel(), "period(ticks)", "period(s)")
	rows := [][]string{
		{
			chipLabel("A", r.NameA), r.First.A.String(), r.Second.A.String(),
			fmt.Sprintf("%d", uint64(r.PeriodA)), fmt.Sprintf("%.6f", r.SecondsA),
		},
		{
			chipLabel("B", r.NameB), r.First.B.String(), r.Second.B.String(),
			fmt.Sprintf("%d", uint64(r.PeriodB)), fmt.Sprintf("%.6f", r.SecondsB),
		},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("adding table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	_, err := fmt.Fprintf(w, "wall: %.6f s  drift: %+d ticks  %+.2f ppm  %+.3f us/s  %+.3f ns/s\n",
		r.WallElapsed, r.DriftTicks, r.DriftPPM, r.DriftMicrosPerSecond, r.DriftMicrosPerSecond*1e3)
	return err
}

// JSON returns the report marshaled as JSON
func (r *Report) JSON() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}
	return b, nil
}

func chipLabel(id, name string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, name)
}
