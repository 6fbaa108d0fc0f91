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

package tsc

import (
	"context"
	"testing"
	"time"

	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/stretchr/testify/require"
)

func TestCalibrateAgainstMonotonicRaw(t *testing.T) {
	if testing.Short() {
		t.Skip("busy-polls for tens of milliseconds")
	}
	counter, err := NewFromClocksource()
	if err != nil {
		t.Skipf("no stable cycle counter: %v", err)
	}
	ref, err := sysclock.MonotonicRaw()
	require.NoError(t, err)

	cfg := DefaultConfig()
	// shared CI machines are noisy
	cfg.Tolerance = 1e-3
	c, err := counter.Calibrate(context.Background(), ref, cfg)
	require.NoError(t, err)
	require.Greater(t, c.NSPerCycle(), 0.0)

	// the calibrated counter agrees with the reference over a short interval
	c0, r0 := c.Now(), ref.Now()
	time.Sleep(20 * time.Millisecond)
	c1, r1 := c.Now(), ref.Now()
	elapsed := float64(ref.SubNS(r1, r0))
	require.InEpsilon(t, elapsed, float64(c.SubNS(c1, c0)), 0.01)
}
