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

package sysclock

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// POSIX is a clock_gettime(2) clock.
// Construct it with NewPOSIX so the clock id is known to be readable.
type POSIX struct {
	nanosClock
	id int32
}

// NewPOSIX validates clock id and returns the clock for it
func NewPOSIX(id int32) (POSIX, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(id, &ts); err != nil {
		return POSIX{}, fmt.Errorf("clock_gettime on clock %d: %w", id, err)
	}
	return POSIX{id: id}, nil
}

// ID returns the clock id
func (c POSIX) ID() int32 {
	return c.id
}

// Now reads the clock. Reads of a validated clock id don't fail,
// if they ever do the zero Nanos is returned.
func (c POSIX) Now() Nanos {
	var ts unix.Timespec
	if err := unix.ClockGettime(c.id, &ts); err != nil {
		return 0
	}
	return Nanos(ts.Nano())
}

// Resolution returns the clock resolution as reported by clock_getres(2)
func (c POSIX) Resolution() (Nanos, error) {
	var ts unix.Timespec
	if err := unix.ClockGetres(c.id, &ts); err != nil {
		return 0, fmt.Errorf("clock_getres on clock %d: %w", c.id, err)
	}
	return Nanos(ts.Nano()), nil
}

// clock names accepted by ByName
var clockIDs = map[string]int32{
	"realtime":  unix.CLOCK_REALTIME,
	"monotonic": unix.CLOCK_MONOTONIC,
	"raw":       unix.CLOCK_MONOTONIC_RAW,
	"boottime":  unix.CLOCK_BOOTTIME,
	"tai":       unix.CLOCK_TAI,
}

// Names returns clock names understood by ByName
func Names() []string {
	return []string{"realtime", "monotonic", "raw", "boottime", "tai"}
}

// ByName returns the POSIX clock with the given name, one of Names()
func ByName(name string) (POSIX, error) {
	id, ok := clockIDs[strings.ToLower(name)]
	if !ok {
		return POSIX{}, fmt.Errorf("unknown clock %q, supported: %s", name, strings.Join(Names(), ", "))
	}
	return NewPOSIX(id)
}

// MonotonicRaw returns CLOCK_MONOTONIC_RAW, which is not slewed by NTP/PTP
// and so is the preferred reference for cycle counter calibration
func MonotonicRaw() (POSIX, error) {
	return NewPOSIX(unix.CLOCK_MONOTONIC_RAW)
}
