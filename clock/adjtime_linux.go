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

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PPBToTimexPPM is what we use to conver PPB to PPM.
// man clock_adjtime(2):
// In struct timex, freq, ppsfreq, and stabil are ppm (parts per million) with a 16-bit fractional part.
// To covert value where 2^16=65536 is 1 ppm to ppb or back, we need this multiplier
const PPBToTimexPPM = 65.536

// DefaultMaxFreqPPB is reported when the kernel doesn't advertise a tolerance
const DefaultMaxFreqPPB = 500000.0

// clock states as returned by clock_adjtime, from usr/include/linux/timex.h
var timexStates = []string{
	"TIME_OK",
	"TIME_INS",
	"TIME_DEL",
	"TIME_OOP",
	"TIME_WAIT",
	"TIME_ERROR",
}

// StateString returns the timex.h name of a clock state
func StateString(state int) string {
	if state < 0 || state >= len(timexStates) {
		return fmt.Sprintf("TIME_UNKNOWN(%d)", state)
	}
	return timexStates[state]
}

// adjtime issues a read-only CLOCK_ADJTIME (modes = 0)
func adjtime(clockid int32) (*unix.Timex, int, error) {
	tx := &unix.Timex{}
	state, err := unix.ClockAdjtime(clockid, tx)
	return tx, state, err
}

// FrequencyPPB reads the frequency adjustment currently applied to the clock in PPB.
// A calibration against a clock which is being slewed inherits the slew.
func FrequencyPPB(clockid int32) (freqPPB float64, state int, err error) {
	tx, state, err := adjtime(clockid)
	// man(2) clock_adjtime
	freqPPB = float64(tx.Freq) / PPBToTimexPPM
	return freqPPB, state, err
}

// MaxFreqPPB returns maximum frequency adjustment supported by the clock
func MaxFreqPPB(clockid int32) (freqPPB float64, state int, err error) {
	tx, state, err := adjtime(clockid)
	if err != nil {
		return 0.0, state, err
	}
	freqPPB = float64(tx.Tolerance) / PPBToTimexPPM
	if freqPPB == 0 {
		freqPPB = DefaultMaxFreqPPB
	}
	return freqPPB, state, nil
}

// Synchronized reports whether the kernel considers the clock synchronized,
// i.e. clock_adjtime returns TIME_OK
func Synchronized(clockid int32) (bool, error) {
	_, state, err := adjtime(clockid)
	if err != nil {
		return false, fmt.Errorf("clock_adjtime on clock %d: %w", clockid, err)
	}
	return state == unix.TIME_OK, nil
}
