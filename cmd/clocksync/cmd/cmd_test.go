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

package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/facebookincubator/clocksync/clocksync"
	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

func TestCounterFlagsStatus(t *testing.T) {
	present, missing := counterFlagsStatus([]string{"fpu", "tsc", "nonstop_tsc", "sse"})
	require.Equal(t, []string{"tsc", "nonstop_tsc"}, present)
	require.Equal(t, []string{"constant_tsc", "tsc_known_freq", "tsc_reliable"}, missing)

	present, missing = counterFlagsStatus(nil)
	require.Empty(t, present)
	require.Equal(t, counterFlags, missing)
}

func TestProbeLine(t *testing.T) {
	require.Equal(t, fmt.Sprintf("%s cpu probe: lol", failString), probeLine("cpu probe", tsc.Counter{}, errors.New("lol")))
	c := tsc.Counter{}
	require.Equal(t, fmt.Sprintf("%s cpu probe: %s is usable", okString, c.Name()), probeLine("cpu probe", c, nil))
}

func TestCheckReference(t *testing.T) {
	ref, err := sysclock.NewPOSIX(unix.CLOCK_REALTIME)
	require.NoError(t, err)
	// only logs, must cope with whatever state the host clock is in
	checkReference(ref, tsc.DefaultConfig())
	raw, err := sysclock.MonotonicRaw()
	require.NoError(t, err)
	checkReference(raw, tsc.DefaultConfig())
}

func TestReportRows(t *testing.T) {
	rows := reportRows(tsc.Report{
		NSPerCycle:     0.5,
		FrequencyHz:    2e9,
		Iterations:     3,
		Elapsed:        30 * time.Millisecond,
		RelativeChange: 1e-6,
		RateMean:       2,
		RateStddev:     0,
	})
	require.Equal(t, [][]string{
		{"ns/cycle", "0.500000000"},
		{"frequency", "2000.000 MHz"},
		{"iterations", "3"},
		{"elapsed", "30ms"},
		{"last relative change", "1.000e-06"},
		{"rate mean", "2.000000000"},
		{"rate stddev", "0.000e+00"},
	}, rows)
}

func TestSyncStatsRows(t *testing.T) {
	rows := syncStatsRows(clocksync.RoundTripStats{
		Trials: 3,
		Min:    10 * time.Nanosecond,
		Mean:   30 * time.Nanosecond,
		Stddev: 20 * time.Nanosecond,
	}, 5*time.Nanosecond)
	require.Equal(t, [][]string{
		{"trials", "3"},
		{"round trip min", "10ns"},
		{"round trip mean", "30ns"},
		{"round trip stddev", "20ns"},
		{"uncertainty", "5ns"},
	}, rows)
}

func TestFmtDrift(t *testing.T) {
	require.Equal(t, color.GreenString("%v", time.Microsecond), fmtDrift(time.Microsecond, 10*time.Microsecond))
	require.Equal(t, color.RedString("%v", -time.Millisecond), fmtDrift(-time.Millisecond, 10*time.Microsecond))
}
