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

/*
Package drift estimates relative clock drift between two free-running hardware tick counters.

Both counters are sampled twice, A then B in both rounds, separated by a wall-clock wait.
Elapsed ticks are taken modulo the counter width, so a single wraparound between
the two samples of one counter is absorbed.
*/
package drift

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultCounterWidth is the width of the DW3000 system time counter in bits
	DefaultCounterWidth uint = 40
	// DefaultTickFrequency is the DW3000 timestamp clock: 499.2 MHz * 128
	DefaultTickFrequency = 499.2e6 * 128
	// MaxCounterWidth keeps every period representable as a signed 64 bit value
	MaxCounterWidth uint = 63
)

// TickCount is a raw counter reading
type TickCount uint64

// String returns the reading as 12 characters of hex: 0x and 10 zero padded digits.
// Readings wider than 40 bits get more digits.
func (t TickCount) String() string {
	return fmt.Sprintf("0x%010x", uint64(t))
}

// Mask returns the bit mask for a counter of the given width
func Mask(width uint) uint64 {
	if width >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << width) - 1
}

// Period returns the forward distance from ts1 to ts2 on a counter of the given width.
// The result is correct as long as the counter wrapped at most once between the readings.
func Period(ts1, ts2 TickCount, width uint) TickCount {
	return TickCount((uint64(ts2) - uint64(ts1)) & Mask(width))
}

// MaxSafeWait is the time it takes a counter of the given width to wrap once at nominal frequency
func MaxSafeWait(width uint, tickFrequency float64) time.Duration {
	seconds := math.Ldexp(1, int(width)) / tickFrequency
	if seconds*float64(time.Second) >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

// Seconds converts ticks to seconds at nominal frequency
func Seconds(ticks TickCount, tickFrequency float64) float64 {
	return float64(ticks) / tickFrequency
}
