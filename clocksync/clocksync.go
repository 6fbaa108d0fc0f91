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

package clocksync

import (
	"errors"
	"fmt"
	"time"

	"github.com/eclesh/welford"
	"github.com/facebookincubator/clocksync/clock"
)

// DefaultTrials is how many brackets are measured by default
const DefaultTrials = 3

// Trial is one A-B-A bracket: A was read at A0, then B at B, then A at A1
type Trial[IA, IB any] struct {
	A0 IA
	B  IB
	A1 IA
}

// RoundTripStats describes the round trips of the brackets a construction used
type RoundTripStats struct {
	Trials int
	Min    time.Duration
	Mean   time.Duration
	Stddev time.Duration
}

type options struct {
	trials int
}

// Option tunes construction
type Option func(*options)

// WithTrials sets the number of brackets to measure. More trials tighten the
// uncertainty at the cost of construction latency. Values below 1 mean 1.
func WithTrials(n int) Option {
	return func(o *options) {
		o.trials = max(n, 1)
	}
}

// Synchronization maps instants of clock A to instants of clock B.
// It is immutable and safe for concurrent use.
type Synchronization[IA, IB any] struct {
	epochA    IA
	epochB    IB
	roundTrip int64
	stats     RoundTripStats
	a         clock.Calibrated[IA]
	b         clock.Clock[IB]
}

// maxDiscards bounds how many backwards brackets New re-measures before giving up
const maxDiscards = 1000

// New measures a synchronization between a and b. It busy-reads both clocks
// and cannot fail; scheduling noise only widens the selected bracket.
// A must be monotonic: a bracket where A stepped backwards is discarded and
// measured again, and New panics if A keeps going backwards.
func New[IA, IB any](a clock.Calibrated[IA], b clock.Clock[IB], opts ...Option) Synchronization[IA, IB] {
	o := options{trials: DefaultTrials}
	for _, opt := range opts {
		opt(&o)
	}
	trials := make([]Trial[IA, IB], o.trials)
	discarded := 0
	for i := range trials {
		t := measure(a, b)
		for a.SubNS(t.A1, t.A0) < 0 {
			discarded++
			if discarded > maxDiscards {
				panic(fmt.Sprintf("clock A went backwards in %d brackets, it is not monotonic", discarded))
			}
			t = measure(a, b)
		}
		trials[i] = t
	}
	s, _ := fromTrials(a, b, trials)
	return s
}

// ErrNoTrials is returned by FromTrials when given nothing to choose from
var ErrNoTrials = errors.New("no trials to synchronize from")

// FromTrials builds a synchronization from brackets obtained elsewhere, for
// example sampled by the kernel. Brackets with a negative round trip are
// skipped; if none is left the error wraps ErrNoTrials.
func FromTrials[IA, IB any](a clock.Calibrated[IA], b clock.Clock[IB], trials []Trial[IA, IB]) (Synchronization[IA, IB], error) {
	if len(trials) == 0 {
		return Synchronization[IA, IB]{}, ErrNoTrials
	}
	return fromTrials(a, b, trials)
}

func measure[IA, IB any](a clock.Calibrated[IA], b clock.Clock[IB]) Trial[IA, IB] {
	a0 := a.Now()
	tb := b.Now()
	a1 := a.Now()
	return Trial[IA, IB]{A0: a0, B: tb, A1: a1}
}

// fromTrials picks the bracket with the smallest non-negative round trip,
// first one wins ties
func fromTrials[IA, IB any](a clock.Calibrated[IA], b clock.Clock[IB], trials []Trial[IA, IB]) (Synchronization[IA, IB], error) {
	stats := welford.New()
	best := -1
	var bestRT int64
	used := 0
	for i, t := range trials {
		rt := a.SubNS(t.A1, t.A0)
		if rt < 0 {
			continue
		}
		used++
		stats.Add(float64(rt))
		if best < 0 || rt < bestRT {
			best, bestRT = i, rt
		}
	}
	if best < 0 {
		return Synchronization[IA, IB]{}, fmt.Errorf("all %d brackets went backwards on clock A: %w", len(trials), ErrNoTrials)
	}
	t := trials[best]
	return Synchronization[IA, IB]{
		epochA:    a.AddNS(t.A0, bestRT/2),
		epochB:    t.B,
		roundTrip: bestRT,
		stats: RoundTripStats{
			Trials: used,
			Min:    time.Duration(bestRT),
			Mean:   time.Duration(stats.Mean()),
			Stddev: time.Duration(stats.Stddev()),
		},
		a: a,
		b: b,
	}, nil
}

// EpochA is the instant on A denoting the same moment as EpochB
func (s Synchronization[IA, IB]) EpochA() IA {
	return s.epochA
}

// EpochB is the instant on B denoting the same moment as EpochA
func (s Synchronization[IA, IB]) EpochB() IB {
	return s.epochB
}

// A returns clock A
func (s Synchronization[IA, IB]) A() clock.Calibrated[IA] {
	return s.a
}

// B returns clock B
func (s Synchronization[IA, IB]) B() clock.Clock[IB] {
	return s.b
}

// RoundTrip is the round trip on A of the selected bracket
func (s Synchronization[IA, IB]) RoundTrip() time.Duration {
	return time.Duration(s.roundTrip)
}

// Uncertainty bounds how far EpochA may be from the true moment EpochB was read
func (s Synchronization[IA, IB]) Uncertainty() time.Duration {
	return time.Duration(s.roundTrip / 2)
}

// Stats describes all measured brackets
func (s Synchronization[IA, IB]) Stats() RoundTripStats {
	return s.stats
}
