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

package monitor

import (
	"maps"
	"sync"
)

// Counter names reported by the monitor
const (
	CounterChecks        = "checks"
	CounterDriftNS       = "drift_ns"
	CounterRoundTripNS   = "roundtrip_ns"
	CounterUncertaintyNS = "uncertainty_ns"
	CounterDriftMeanNS   = "drift_mean_ns"
	CounterDriftStddevNS = "drift_stddev_ns"
	CounterDriftMaxAbsNS = "drift_max_abs_ns"
	CounterDriftExceeded = "drift_exceeded"

	CounterCalibrationPSPerCycle = "calibration_ps_per_cycle"
	CounterCalibrationIterations = "calibration_iterations"
)

// StatsServer is where the monitor reports counters
type StatsServer interface {
	// Reset atomically sets all the counters to 0
	Reset()
	SetCounter(key string, val int64)
	UpdateCounterBy(key string, count int64)
}

// Stats keeps counters in memory for the JSON and Prometheus servers
type Stats struct {
	sync.Mutex
	counters map[string]int64
}

// NewStats returns empty Stats
func NewStats() *Stats {
	return &Stats{counters: make(map[string]int64)}
}

// UpdateCounterBy adds count to the counter
func (s *Stats) UpdateCounterBy(key string, count int64) {
	s.Lock()
	defer s.Unlock()
	s.counters[key] += count
}

// SetCounter sets the counter to val
func (s *Stats) SetCounter(key string, val int64) {
	s.Lock()
	defer s.Unlock()
	s.counters[key] = val
}

// Counter returns the current value of a single counter
func (s *Stats) Counter(key string) int64 {
	s.Lock()
	defer s.Unlock()
	return s.counters[key]
}

// Snapshot returns a copy of all counters
func (s *Stats) Snapshot() map[string]int64 {
	s.Lock()
	defer s.Unlock()
	return maps.Clone(s.counters)
}

// Reset zeroes all counters, keeping their keys
func (s *Stats) Reset() {
	s.Lock()
	defer s.Unlock()
	for k := range s.counters {
		s.counters[k] = 0
	}
}
