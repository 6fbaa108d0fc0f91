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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestStateString(t *testing.T) {
	require.Equal(t, "TIME_OK", StateString(0))
	require.Equal(t, "TIME_INS", StateString(1))
	require.Equal(t, "TIME_ERROR", StateString(5))
	require.Equal(t, "TIME_UNKNOWN(42)", StateString(42))
	require.Equal(t, "TIME_UNKNOWN(-1)", StateString(-1))
}

func TestAdjtimeRealtime(t *testing.T) {
	freq, state, err := FrequencyPPB(unix.CLOCK_REALTIME)
	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOSYS) {
		t.Skipf("clock_adjtime refused: %v", err)
	}
	require.NoError(t, err)
	require.GreaterOrEqual(t, state, 0)

	maxFreq, _, err := MaxFreqPPB(unix.CLOCK_REALTIME)
	require.NoError(t, err)
	require.Positive(t, maxFreq)
	require.LessOrEqual(t, math.Abs(freq), maxFreq)

	synced, err := Synchronized(unix.CLOCK_REALTIME)
	require.NoError(t, err)
	require.Equal(t, state == unix.TIME_OK, synced)
}

func TestAdjtimeBadClock(t *testing.T) {
	_, err := Synchronized(-1)
	require.Error(t, err)
	_, _, err = MaxFreqPPB(-1)
	require.Error(t, err)
}
