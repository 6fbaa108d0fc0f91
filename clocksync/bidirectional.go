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
	"time"

	"github.com/facebookincubator/clocksync/clock"
)

// Bidirectional is a Synchronization between two calibrated clocks, which
// allows translating instants in both directions
type Bidirectional[IA, IB any] struct {
	Synchronization[IA, IB]
	cb clock.Calibrated[IB]
}

// NewBidirectional measures a synchronization between a and b
func NewBidirectional[IA, IB any](a clock.Calibrated[IA], b clock.Calibrated[IB], opts ...Option) Bidirectional[IA, IB] {
	return Bidirectional[IA, IB]{
		Synchronization: New[IA, IB](a, b, opts...),
		cb:              b,
	}
}

// BidirectionalFromTrials is FromTrials for two calibrated clocks
func BidirectionalFromTrials[IA, IB any](a clock.Calibrated[IA], b clock.Calibrated[IB], trials []Trial[IA, IB]) (Bidirectional[IA, IB], error) {
	s, err := FromTrials[IA, IB](a, b, trials)
	if err != nil {
		return Bidirectional[IA, IB]{}, err
	}
	return Bidirectional[IA, IB]{Synchronization: s, cb: b}, nil
}

// ToA translates an instant of B into A. It reads neither clock.
func (s Bidirectional[IA, IB]) ToA(tb IB) IA {
	return s.a.AddNS(s.epochA, s.cb.SubNS(tb, s.epochB))
}

// ToB translates an instant of A into B. It reads neither clock.
func (s Bidirectional[IA, IB]) ToB(ta IA) IB {
	return s.cb.AddNS(s.epochB, s.a.SubNS(ta, s.epochA))
}

// Drift measures one fresh bracket and returns how far the translation of B's
// reading lands from the bracket midpoint on A. It is positive when B gained on
// A since construction. The uncertainty of the result is half the fresh round
// trip plus Uncertainty().
func (s Bidirectional[IA, IB]) Drift() (drift time.Duration, roundTrip time.Duration) {
	t := measure[IA, IB](s.a, s.cb)
	rt := s.a.SubNS(t.A1, t.A0)
	mid := s.a.AddNS(t.A0, rt/2)
	return time.Duration(s.a.SubNS(s.ToA(t.B), mid)), time.Duration(rt)
}
