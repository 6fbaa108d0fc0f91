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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// counter8 is an 8-bit counter ticking once per nanosecond
type counter8 struct {
	now *uint64
}

func (c counter8) Now() uint64 { return *c.now % 256 }

func (c counter8) Compare(a, b uint64) int { return CompareWrapping(a, b, 8) }

func (c counter8) SubNS(later, earlier uint64) int64 { return WrappingSub(later, earlier, 8) }

func (c counter8) AddNS(base uint64, ns int64) uint64 { return (base + uint64(ns)) % 256 }

func TestBefore(t *testing.T) {
	var now uint64
	c := counter8{now: &now}
	require.True(t, Before[uint64](c, 250, 3))
	require.False(t, Before[uint64](c, 3, 250))
	require.False(t, Before[uint64](c, 7, 7))
}

func TestSinceAcrossWrap(t *testing.T) {
	now := uint64(250)
	c := counter8{now: &now}
	start := c.Now()
	now += 10
	require.Equal(t, 10*time.Nanosecond, Since[uint64](c, start))
	require.Equal(t, -10*time.Nanosecond, Elapsed[uint64](c, start, c.Now()))
}

func TestAddNSRoundTrip(t *testing.T) {
	var now uint64
	c := counter8{now: &now}
	var cc Calibrated[uint64] = c
	for _, base := range []uint64{0, 100, 255} {
		for _, ns := range []int64{-100, -1, 0, 1, 100} {
			require.Equal(t, ns, cc.SubNS(cc.AddNS(base, ns), base))
		}
	}
}
