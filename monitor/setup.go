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
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/facebookincubator/clocksync/clocksync"
	"github.com/facebookincubator/clocksync/phc"
	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

// Setup builds the synchronization of cfg.Target against cfg.Reference.
// The returned func releases whatever the target holds open.
func Setup(ctx context.Context, cfg *Config, stats StatsServer) (Drifter, func() error, error) {
	noop := func() error { return nil }
	ref, err := sysclock.ByName(cfg.Reference)
	if err != nil {
		return nil, nil, err
	}
	opt := clocksync.WithTrials(cfg.Trials)

	switch {
	case cfg.Target == TargetTSC:
		counter, err := tsc.NewFromProbe(cfg.Probe, cfg.Sysfs)
		if err != nil {
			return nil, nil, err
		}
		if res, err := ref.Resolution(); err == nil && cfg.Calibration.CoarseReference(res.Duration()) {
			log.Warningf("%s resolution %v is too coarse to calibrate against, calibration may not converge", cfg.Reference, res.Duration())
		}
		cal, err := tsc.Calibrate[sysclock.Nanos](ctx, counter, ref, cfg.Calibration)
		if err != nil {
			return nil, nil, fmt.Errorf("calibrating %s: %w", counter.Name(), err)
		}
		r := cal.Report()
		log.Infof("calibrated %s: %.6f ns/cycle (%.0f Hz) in %d iterations", counter.Name(), r.NSPerCycle, r.FrequencyHz, r.Iterations)
		stats.SetCounter(CounterCalibrationPSPerCycle, int64(r.NSPerCycle*1000))
		stats.SetCounter(CounterCalibrationIterations, int64(r.Iterations))
		s := clocksync.NewBidirectional[sysclock.Nanos, tsc.Instant](ref, cal, opt)
		return s, noop, nil
	case strings.HasPrefix(cfg.Target, "/dev/"):
		dev, err := phc.Open(cfg.Target)
		if err != nil {
			return nil, nil, err
		}
		s := clocksync.NewBidirectional[sysclock.Nanos, sysclock.Nanos](ref, dev.Clock(), opt)
		return s, dev.Close, nil
	default:
		target, err := sysclock.ByName(cfg.Target)
		if err != nil {
			return nil, nil, err
		}
		s := clocksync.NewBidirectional[sysclock.Nanos, sysclock.Nanos](ref, target, opt)
		return s, noop, nil
	}
}
