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

/*
Package monitor watches how far a synchronized clock pair drifts apart.

It builds one synchronization and periodically measures the disagreement
between the two clocks, exporting it as JSON and Prometheus counters.
It reports drift, it never re-synchronizes.
*/
package monitor

import (
	"context"
	"time"

	"github.com/eclesh/welford"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Drifter is a synchronization which can measure its current drift,
// clocksync.Bidirectional implements it
type Drifter interface {
	Drift() (drift, roundTrip time.Duration)
	Uncertainty() time.Duration
}

// Sample is the result of one drift check
type Sample struct {
	Drift     time.Duration
	RoundTrip time.Duration
	Exceeded  bool
}

// Monitor periodically measures drift of a synchronization
type Monitor struct {
	cfg    *Config
	d      Drifter
	stats  StatsServer
	drifts *welford.Stats
	maxAbs time.Duration
}

// New returns a Monitor of d reporting to stats
func New(cfg *Config, d Drifter, stats StatsServer) *Monitor {
	return &Monitor{
		cfg:    cfg,
		d:      d,
		stats:  stats,
		drifts: welford.New(),
	}
}

// Check measures drift once and updates the counters
func (m *Monitor) Check() Sample {
	drift, rt := m.d.Drift()
	s := Sample{Drift: drift, RoundTrip: rt}
	m.drifts.Add(float64(drift))
	abs := drift.Abs()
	m.maxAbs = max(m.maxAbs, abs)
	s.Exceeded = m.cfg.DriftThreshold > 0 && abs > m.cfg.DriftThreshold

	m.stats.UpdateCounterBy(CounterChecks, 1)
	m.stats.SetCounter(CounterDriftNS, drift.Nanoseconds())
	m.stats.SetCounter(CounterRoundTripNS, rt.Nanoseconds())
	m.stats.SetCounter(CounterUncertaintyNS, m.d.Uncertainty().Nanoseconds())
	m.stats.SetCounter(CounterDriftMeanNS, int64(m.drifts.Mean()))
	m.stats.SetCounter(CounterDriftStddevNS, int64(m.drifts.Stddev()))
	m.stats.SetCounter(CounterDriftMaxAbsNS, m.maxAbs.Nanoseconds())
	if s.Exceeded {
		m.stats.UpdateCounterBy(CounterDriftExceeded, 1)
		log.Warningf("drift %v is over threshold %v (round trip %v)", drift, m.cfg.DriftThreshold, rt)
	} else {
		log.Debugf("drift %v (round trip %v)", drift, rt)
	}
	return s
}

// Run checks drift every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check()
		}
	}
}

// Serve runs the monitor of d along with the stats servers the config enables.
// It returns when ctx is done or any of them fails.
func Serve(ctx context.Context, cfg *Config, d Drifter, stats *JSONStats) error {
	eg, ctx := errgroup.WithContext(ctx)
	if cfg.MonitoringPort != 0 {
		eg.Go(func() error {
			return stats.Start(ctx, cfg.MonitoringPort)
		})
	}
	if cfg.PrometheusPort != 0 {
		exporter := NewPrometheusExporter(stats.Stats, cfg.PrometheusPort, cfg.Interval)
		eg.Go(func() error {
			return exporter.Start(ctx)
		})
	}
	m := New(cfg, d, stats)
	eg.Go(func() error {
		return m.Run(ctx)
	})
	return eg.Wait()
}
