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
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eclesh/welford"
	"github.com/facebookincubator/clocksync/clock"
	"github.com/facebookincubator/clocksync/sysclock"
	log "github.com/sirupsen/logrus"
)

// Calibration defaults
const (
	// DefaultWindow is the minimum reference time a single rate sample spans.
	// It has to dominate the jitter of reading both clocks.
	DefaultWindow = 10 * time.Millisecond
	// DefaultTolerance is the relative change between two consecutive rate
	// samples below which the rate is accepted
	DefaultTolerance = 1e-5
	// DefaultMaxIterations bounds the number of rate samples
	DefaultMaxIterations = 100
	// DefaultTimeout bounds the whole calibration
	DefaultTimeout = 5 * time.Second
)

// how many spins of the sampling loop between deadline checks
const deadlineCheckEvery = 1024

// ErrNoConvergence is returned when calibration ran out of budget
var ErrNoConvergence = errors.New("cycle counter calibration did not converge")

// ConvergenceError describes a calibration which ran out of budget
type ConvergenceError struct {
	Iterations     int
	Elapsed        time.Duration
	RelativeChange float64
	Reason         string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations in %v (last relative change %.3g): %s",
		ErrNoConvergence, e.Iterations, e.Elapsed, e.RelativeChange, e.Reason)
}

// Unwrap makes errors.Is(err, ErrNoConvergence) work
func (e *ConvergenceError) Unwrap() error {
	return ErrNoConvergence
}

// Config controls the calibration loop. Zero fields take the defaults.
type Config struct {
	Window        time.Duration `yaml:"window"`
	Tolerance     float64       `yaml:"tolerance"`
	MaxIterations int           `yaml:"maxiterations"`
	Timeout       time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the reference calibration parameters
func DefaultConfig() Config {
	return Config{
		Window:        DefaultWindow,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Timeout:       DefaultTimeout,
	}
}

// CoarseReference reports whether a reference clock ticking every resolution
// is too coarse to resolve Tolerance over Window. Reading both ends of a window
// can be off by a tick each, so such a calibration may never converge.
func (c Config) CoarseReference(resolution time.Duration) bool {
	c = c.withDefaults()
	return 2*float64(resolution) > float64(c.Window)*c.Tolerance
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// Report summarizes a calibration run
type Report struct {
	NSPerCycle     float64
	FrequencyHz    float64
	Iterations     int
	Elapsed        time.Duration
	RelativeChange float64
	// mean and stddev of all rate samples, in cycles per ns
	RateMean   float64
	RateStddev float64
}

// Calibrated is a cycle counter with a known nanoseconds-per-cycle scale.
// All conversions between cycles and nanoseconds round to the nearest
// integer, ties away from zero.
//
// The zero value, also returned alongside errors, has no scale and is not a
// clock: it must not be read, and its conversions return 0.
type Calibrated struct {
	nsPerCycle float64
	src        clock.Clock[Instant]
	report     Report
}

// NewCalibrated returns src scaled by a known nsPerCycle, which must be
// positive and finite
func NewCalibrated(src clock.Clock[Instant], nsPerCycle float64) (Calibrated, error) {
	if !(nsPerCycle > 0) || math.IsInf(nsPerCycle, 0) {
		return Calibrated{}, fmt.Errorf("invalid ns per cycle %v: must be positive and finite", nsPerCycle)
	}
	return Calibrated{
		nsPerCycle: nsPerCycle,
		src:        src,
		report:     Report{NSPerCycle: nsPerCycle, FrequencyHz: 1e9 / nsPerCycle},
	}, nil
}

// Calibrate discovers how many nanoseconds of ref one cycle of src takes.
//
// It repeatedly measures the rate of src against ref over Window, and accepts
// the rate once two consecutive measurements differ by less than Tolerance
// relative to the latest one. Both clocks are busy-polled.
// A ConvergenceError is returned once MaxIterations measurements were taken
// or Timeout passed without agreement.
func Calibrate[R any](ctx context.Context, src clock.Clock[Instant], ref clock.Calibrated[R], cfg Config) (Calibrated, error) {
	cfg = cfg.withDefaults()
	start := time.Now()
	deadline := start.Add(cfg.Timeout)
	stats := welford.New()
	var (
		prev   float64
		change = math.Inf(1)
	)
	for i := 1; i <= cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return Calibrated{}, fmt.Errorf("calibrating: %w", err)
		}
		rate, ok := sampleRate(src, ref, cfg.Window, deadline)
		if !ok {
			return Calibrated{}, &ConvergenceError{
				Iterations:     i - 1,
				Elapsed:        time.Since(start),
				RelativeChange: change,
				Reason:         fmt.Sprintf("timed out after %v sampling a %v window", cfg.Timeout, cfg.Window),
			}
		}
		stats.Add(rate)
		change = math.Abs(rate-prev) / rate
		log.Debugf("calibration iteration %d: %.9f cycles/ns, relative change %.3g", i, rate, change)
		if change < cfg.Tolerance {
			nsPerCycle := 1 / rate
			return Calibrated{
				nsPerCycle: nsPerCycle,
				src:        src,
				report: Report{
					NSPerCycle:     nsPerCycle,
					FrequencyHz:    rate * 1e9,
					Iterations:     i,
					Elapsed:        time.Since(start),
					RelativeChange: change,
					RateMean:       stats.Mean(),
					RateStddev:     stats.Stddev(),
				},
			}, nil
		}
		prev = rate
	}
	return Calibrated{}, &ConvergenceError{
		Iterations:     cfg.MaxIterations,
		Elapsed:        time.Since(start),
		RelativeChange: change,
		Reason:         fmt.Sprintf("rate never settled within %g", cfg.Tolerance),
	}
}

// Calibrate is Calibrate of the counter against a nanosecond reference such as
// sysclock.MonotonicRaw
func (c Counter) Calibrate(ctx context.Context, ref clock.Calibrated[sysclock.Nanos], cfg Config) (Calibrated, error) {
	return Calibrate(ctx, c, ref, cfg)
}

// sampleRate measures cycles per nanosecond of ref over at least window.
// It returns false if deadline passed first.
func sampleRate[R any](src clock.Clock[Instant], ref clock.Calibrated[R], window time.Duration, deadline time.Time) (float64, bool) {
	refStart := ref.Now()
	cycleStart := src.Now()
	for spins := 1; ; spins++ {
		refNow := ref.Now()
		cycleNow := src.Now()
		elapsedNS := ref.SubNS(refNow, refStart)
		elapsedCycles := int64(cycleNow - cycleStart)
		if elapsedNS > int64(window) && elapsedCycles > 0 {
			return float64(elapsedCycles) / float64(elapsedNS), true
		}
		if spins%deadlineCheckEvery == 0 && time.Now().After(deadline) {
			return 0, false
		}
	}
}

// Now reads the underlying counter
func (c Calibrated) Now() Instant {
	return c.src.Now()
}

// Compare orders two readings taken less than 2^63 cycles apart
func (c Calibrated) Compare(a, b Instant) int {
	return clock.CompareWrapping64(uint64(a), uint64(b))
}

// SubNS returns later - earlier in nanoseconds
func (c Calibrated) SubNS(later, earlier Instant) int64 {
	return c.CyclesToNS(int64(later - earlier))
}

// AddNS offsets base by ns nanoseconds, wrapping around the counter width
func (c Calibrated) AddNS(base Instant, ns int64) Instant {
	return base + Instant(c.NSToCycles(ns))
}

// CyclesToNS converts a cycle count to nanoseconds
func (c Calibrated) CyclesToNS(cycles int64) int64 {
	return int64(math.Round(float64(cycles) * c.nsPerCycle))
}

// NSToCycles converts nanoseconds to a cycle count
func (c Calibrated) NSToCycles(ns int64) int64 {
	if c.nsPerCycle == 0 {
		return 0
	}
	return int64(math.Round(float64(ns) / c.nsPerCycle))
}

// NSPerCycle returns the scale factor, > 0 for any Calibrated but the zero value
func (c Calibrated) NSPerCycle() float64 {
	return c.nsPerCycle
}

// Report returns how the scale factor was obtained
func (c Calibrated) Report() Report {
	return c.report
}

// Raw returns the uncalibrated counter
func (c Calibrated) Raw() clock.Clock[Instant] {
	return c.src
}
