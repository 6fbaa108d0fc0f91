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

import "fmt"

// WrappingSub returns a - b for readings of a counter which is bits wide,
// interpreted as a signed distance in (-2^(bits-1), 2^(bits-1)).
// Bits of a and b above the counter width are ignored.
//
// The result is the true distance only if the readings are less than half the
// counter's range apart (2^(bits-1) ticks). Readings exactly half the range
// apart always come out negative, whichever order they are passed in.
func WrappingSub(a, b uint64, bits uint) int64 {
	if bits == 0 || bits > 64 {
		panic(fmt.Sprintf("clock: counter width %d out of range [1, 64]", bits))
	}
	shift := 64 - bits
	return int64((a-b)<<shift) >> shift
}

// CompareWrapping orders two readings of a counter which wraps at 2^bits.
// It returns -1 if a is earlier than b, +1 if later and 0 if equal.
//
// Precondition: the true separation of a and b is less than 2^(bits-1) ticks.
// Within that bound the result agrees with the true order even if the counter
// wrapped between the readings, and CompareWrapping(a, b) == -CompareWrapping(b, a).
func CompareWrapping(a, b uint64, bits uint) int {
	return sign(WrappingSub(a, b, bits))
}

// CompareWrapping64 is CompareWrapping for 64-bit counters.
// The same half-range precondition (2^63 ticks) applies.
func CompareWrapping64(a, b uint64) int {
	return sign(int64(a - b))
}

func sign(d int64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
