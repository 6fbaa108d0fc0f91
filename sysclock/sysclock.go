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
Package sysclock adapts the clocks provided by the operating system and the Go
runtime to the clock capability contract.

Monotonic reads the runtime's monotonic clock, Realtime reads the epoch based
wall clock. On Linux POSIX exposes any clock_gettime(2) clock id, which covers
CLOCK_MONOTONIC_RAW, CLOCK_BOOTTIME, CLOCK_TAI and dynamic clocks such as PTP
hardware clocks.
*/
package sysclock

import (
	"cmp"
	"time"
	_ "unsafe" // for go:linkname
)

//go:noescape
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Nanos is a reading of a non-wrapping nanosecond clock.
// Readings of different clocks are not comparable.
type Nanos int64

// Duration returns n as a time.Duration
func (n Nanos) Duration() time.Duration {
	return time.Duration(n)
}

// nanosClock implements the arithmetic shared by all Nanos clocks
type nanosClock struct{}

// Compare orders two readings
func (nanosClock) Compare(a, b Nanos) int {
	return cmp.Compare(a, b)
}

// SubNS returns later - earlier in nanoseconds
func (nanosClock) SubNS(later, earlier Nanos) int64 {
	return int64(later - earlier)
}

// AddNS offsets base by ns nanoseconds
func (nanosClock) AddNS(base Nanos, ns int64) Nanos {
	return base + Nanos(ns)
}

// Monotonic is the runtime's monotonic clock, the one behind time.Since.
// On Linux it is CLOCK_MONOTONIC read through the vDSO.
type Monotonic struct {
	nanosClock
}

// Now returns nanoseconds since an arbitrary, process-independent point
func (Monotonic) Now() Nanos {
	return Nanos(nanotime())
}

// Realtime is the epoch based wall clock. Its instants are time.Time values
// with the monotonic reading stripped, so arithmetic follows wall time.
type Realtime struct{}

// Now returns the current wall clock time
func (Realtime) Now() time.Time {
	return time.Now().Round(0)
}

// Compare orders two wall clock instants
func (Realtime) Compare(a, b time.Time) int {
	return a.Compare(b)
}

// SubNS returns later - earlier in nanoseconds, saturating like time.Time.Sub
func (Realtime) SubNS(later, earlier time.Time) int64 {
	return int64(later.Sub(earlier))
}

// AddNS offsets base by ns nanoseconds
func (Realtime) AddNS(base time.Time, ns int64) time.Time {
	return base.Add(time.Duration(ns))
}
