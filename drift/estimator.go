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
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultSettle is how long we wait after flushing channels before the first request
const DefaultSettle = 200 * time.Millisecond

// wrapWarnRatio is the share of the wrap bound above which a wait is logged as risky
const wrapWarnRatio = 0.8

// Config holds measurement parameters
type Config struct {
	Wait          time.Duration // wall-clock time between the two rounds
	TickFrequency float64       // nominal tick frequency in Hz
	CounterWidth  uint          // counter width in bits
	Settle        time.Duration // pause after flushing channels
}

// Validate Config is sane
func (c *Config) Validate() error {
	if c.TickFrequency <= 0 {
		return fmt.Errorf("%w: tick frequency must be greater than zero", ErrConfig)
	}
	if c.CounterWidth == 0 || c.CounterWidth > MaxCounterWidth {
		return fmt.Errorf("%w: counter width must be between 1 and %d bits", ErrConfig, MaxCounterWidth)
	}
	if c.Wait <= 0 {
		return fmt.Errorf("%w: wait must be greater than zero", ErrConfig)
	}
	if c.Settle < 0 {
		return fmt.Errorf("%w: settle must be 0 or positive", ErrConfig)
	}
	bound := MaxSafeWait(c.CounterWidth, c.TickFrequency)
	if c.Wait >= bound {
		return fmt.Errorf("%w: wait %v allows the %d bit counter to wrap more than once (bound %v)", ErrConfig, c.Wait, c.CounterWidth, bound)
	}
	if float64(c.Wait) > wrapWarnRatio*float64(bound) {
		log.Warningf("wait %v is close to the counter wrap bound %v", c.Wait, bound)
	}
	return nil
}

// Round is one pass over both sources
type Round struct {
	A  TickCount `json:"a"`
	B  TickCount `json:"b"`
	At time.Time `json:"at"` // taken after both sources answered
}

// Estimator runs a single two-round drift measurement
type Estimator struct {
	cfg   Config
	clock Clock
	// OnWait is called right before the wait between rounds
	OnWait func(d time.Duration)
}

// NewEstimator validates cfg and returns an Estimator using clock
func NewEstimator(cfg Config, clock Clock) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Estimator{cfg: cfg, clock: clock}, nil
}

// Estimate measures drift of a relative to b with default settle delay and the system clock
func Estimate(a, b Source, wait time.Duration, tickFrequency float64, counterWidth uint) (*Report, error) {
	e, err := NewEstimator(Config{
		Wait:          wait,
		TickFrequency: tickFrequency,
		CounterWidth:  counterWidth,
		Settle:        DefaultSettle,
	}, SystemClock{})
	if err != nil {
		return nil, err
	}
	return e.Estimate(a, b)
}

// round samples a then b. The order must never change between rounds,
// otherwise constant per-request latency stops cancelling out.
func (e *Estimator) round(n int, a, b Source) (Round, error) {
	r := Round{}
	var err error
	mask := Mask(e.cfg.CounterWidth)
	if r.A, err = a.Sample(); err != nil {
		return r, fmt.Errorf("sampling %s in round %d: %w", a.Name(), n, err)
	}
	if r.B, err = b.Sample(); err != nil {
		return r, fmt.Errorf("sampling %s in round %d: %w", b.Name(), n, err)
	}
	r.At = e.clock.Now()
	r.A &= TickCount(mask)
	r.B &= TickCount(mask)
	log.Debugf("round %d: %s=%s %s=%s", n, a.Name(), r.A, b.Name(), r.B)
	return r, nil
}

// Estimate measures drift of a relative to b
func (e *Estimator) Estimate(a, b Source) (*Report, error) {
	for _, s := range []Source{a, b} {
		if err := s.Flush(); err != nil {
			return nil, fmt.Errorf("flushing %s: %w", s.Name(), err)
		}
	}
	e.clock.Sleep(e.cfg.Settle)

	first, err := e.round(1, a, b)
	if err != nil {
		return nil, err
	}
	if e.OnWait != nil {
		e.OnWait(e.cfg.Wait)
	}
	e.clock.Sleep(e.cfg.Wait)
	second, err := e.round(2, a, b)
	if err != nil {
		return nil, err
	}

	report, err := Compute(first, second, e.cfg.TickFrequency, e.cfg.CounterWidth)
	if err != nil {
		return nil, err
	}
	report.NameA = a.Name()
	report.NameB = b.Name()
	report.Wait = e.cfg.Wait
	return report, nil
}

// Compute derives drift metrics from two rounds
func Compute(first, second Round, tickFrequency float64, counterWidth uint) (*Report, error) {
	if tickFrequency <= 0 {
		return nil, fmt.Errorf("%w: tick frequency must be greater than zero", ErrConfig)
	}
	if counterWidth == 0 || counterWidth > MaxCounterWidth {
		return nil, fmt.Errorf("%w: counter width must be between 1 and %d bits", ErrConfig, MaxCounterWidth)
	}
	periodA := Period(first.A, second.A, counterWidth)
	periodB := Period(first.B, second.B, counterWidth)
	if periodB == 0 {
		return nil, fmt.Errorf("%w: reference period is zero ticks", ErrDegenerate)
	}
	wall := second.At.Sub(first.At)
	if wall <= 0 {
		return nil, fmt.Errorf("%w: wall clock did not advance between rounds", ErrDegenerate)
	}

	driftTicks := int64(periodA) - int64(periodB)
	return &Report{
		First:                first,
		Second:               second,
		WallElapsed:          wall.Seconds(),
		PeriodA:              periodA,
		PeriodB:              periodB,
		SecondsA:             Seconds(periodA, tickFrequency),
		SecondsB:             Seconds(periodB, tickFrequency),
		DriftTicks:           driftTicks,
		DriftPPM:             float64(driftTicks) / float64(periodB) * 1e6,
		DriftMicrosPerSecond: float64(driftTicks) / tickFrequency / wall.Seconds() * 1e6,
	}, nil
}
