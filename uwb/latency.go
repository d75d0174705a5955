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

package uwb

import (
	"fmt"
	"time"

	"github.com/eclesh/welford"
	"github.com/facebook/uwbdrift/drift"
)

// LatencyStats summarizes how long sample requests to one chip take
type LatencyStats struct {
	Name   string
	Count  int
	Mean   time.Duration
	Stddev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// MeasureLatency times count consecutive sample requests to s.
// The drift estimator assumes this latency is stable, since it only cancels a constant offset.
func MeasureLatency(s drift.Source, clock drift.Clock, count int) (*LatencyStats, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be greater than zero")
	}
	if err := s.Flush(); err != nil {
		return nil, fmt.Errorf("flushing %s: %w", s.Name(), err)
	}
	w := welford.New()
	stats := &LatencyStats{Name: s.Name(), Count: count}
	for i := range count {
		start := clock.Now()
		if _, err := s.Sample(); err != nil {
			return nil, fmt.Errorf("sample %d of %s: %w", i, s.Name(), err)
		}
		d := clock.Now().Sub(start)
		w.Add(float64(d))
		if i == 0 || d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
	}
	stats.Mean = time.Duration(w.Mean())
	stats.Stddev = time.Duration(w.Stddev())
	return stats, nil
}
