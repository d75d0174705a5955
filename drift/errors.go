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

import "errors"

var (
	// ErrTimeout is returned when a chip did not answer with a timestamp within the line budget
	ErrTimeout = errors.New("no timestamp received")
	// ErrMalformed is returned when a timestamp line carries a value that is not hexadecimal
	ErrMalformed = errors.New("malformed timestamp")
	// ErrDegenerate is returned when the measurement cannot produce a finite drift
	ErrDegenerate = errors.New("degenerate measurement")
	// ErrOpen is returned when the channel to a chip cannot be established
	ErrOpen = errors.New("cannot open channel")
	// ErrConfig is returned for measurement parameters the estimator cannot work with
	ErrConfig = errors.New("invalid measurement parameters")
)
