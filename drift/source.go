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

import "time"

// Source is a request/response channel bound to one oscillator
type Source interface {
	// Name identifies the channel in logs and errors
	Name() string
	// Flush discards any buffered response data
	Flush() error
	// Sample requests and returns the current counter value
	Sample() (TickCount, error)
}

// Clock provides wall-clock readings and sleeping
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is a Clock backed by the time package.
// Readings carry the monotonic clock, so differences are immune to wall time steps.
type SystemClock struct{}

// Now returns current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the current goroutine for d
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
