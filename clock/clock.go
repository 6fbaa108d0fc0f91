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

package clock

import "time"

// Clock is a monotonic time source producing instants of type I.
//
// Implementations are small values which can be copied freely and used from
// any number of goroutines: Now is a plain read of the underlying source with
// no coordination.
type Clock[I any] interface {
	// Now reads the source once. It must not block or allocate.
	Now() I
	// Compare returns -1 if a is earlier than b, +1 if a is later than b and 0
	// if they denote the same instant. For cyclic sources see CompareWrapping.
	Compare(a, b I) int
}

// Calibrated is a Clock whose instants can be related to nanoseconds.
// Both operations wrap for cyclic sources instead of failing.
type Calibrated[I any] interface {
	Clock[I]
	// SubNS returns later - earlier in nanoseconds. The result is negative
	// if later is in fact earlier.
	SubNS(later, earlier I) int64
	// AddNS offsets base by ns nanoseconds, which may be negative.
	AddNS(base I, ns int64) I
}

// Before reports whether a is strictly earlier than b on clock c.
func Before[I any](c Clock[I], a, b I) bool {
	return c.Compare(a, b) < 0
}

// Since returns the time elapsed on c since t.
func Since[I any](c Calibrated[I], t I) time.Duration {
	return time.Duration(c.SubNS(c.Now(), t))
}

// Elapsed returns later - earlier on c as a time.Duration.
func Elapsed[I any](c Calibrated[I], later, earlier I) time.Duration {
	return time.Duration(c.SubNS(later, earlier))
}
