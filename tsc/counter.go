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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/facebookincubator/clocksync/clock"
	"github.com/prometheus/procfs/sysfs"
)

// ErrUnavailable is returned by probes which could not attest a stable counter
var ErrUnavailable = errors.New("no stable cycle counter available")

// Instant is a raw reading of the cycle counter. Readings wrap at 64 bits and
// are only ordered through Counter.Compare.
type Instant uint64

// Counter is the raw hardware cycle counter of the CPU.
// Obtain it from NewFromCPU or NewFromClocksource; the zero value reads the
// counter without any stability guarantee.
//
// Now doesn't serialize instruction execution: the read may be reordered with
// neighbouring instructions as far as the hardware allows.
type Counter struct{}

// Compare orders two readings taken less than 2^63 cycles apart
func (Counter) Compare(a, b Instant) int {
	return clock.CompareWrapping64(uint64(a), uint64(b))
}

// Name returns the name of the hardware counter
func (Counter) Name() string {
	return counterName
}

// NewFromCPU asks the processor whether it has a counter ticking at a constant
// rate regardless of power state. It needs no operating system support, which
// makes it the probe for bare metal and embedded deployments.
func NewFromCPU() (Counter, error) {
	if err := cpuProbe(); err != nil {
		return Counter{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Counter{}, nil
}

// NewFromClocksource checks that the kernel lists the cycle counter as its
// current or an available clocksource. The kernel drops the counter from the
// list once it is found unstable, so this reflects what the OS trusts rather
// than what the hardware advertises.
func NewFromClocksource() (Counter, error) {
	fs, err := sysfs.NewDefaultFS()
	if err != nil {
		return Counter{}, fmt.Errorf("%w: opening sysfs: %w", ErrUnavailable, err)
	}
	return fromClocksources(fs)
}

// NewFromSysfs is NewFromClocksource for sysfs mounted at mountPoint
func NewFromSysfs(mountPoint string) (Counter, error) {
	fs, err := sysfs.NewFS(mountPoint)
	if err != nil {
		return Counter{}, fmt.Errorf("%w: opening sysfs at %q: %w", ErrUnavailable, mountPoint, err)
	}
	return fromClocksources(fs)
}

// Probes accepted by NewFromProbe
const (
	ProbeCPU         = "cpu"
	ProbeClocksource = "clocksource"
)

// Probes returns the probe names understood by NewFromProbe
func Probes() []string {
	return []string{ProbeCPU, ProbeClocksource}
}

// NewFromProbe runs the named probe. Whether the host is bare metal or managed
// by an OS is up to the caller: ProbeCPU is NewFromCPU, ProbeClocksource is
// NewFromClocksource, or NewFromSysfs when sysfs is not empty.
func NewFromProbe(probe, sysfs string) (Counter, error) {
	switch probe {
	case ProbeCPU:
		return NewFromCPU()
	case ProbeClocksource:
		if sysfs == "" {
			return NewFromClocksource()
		}
		return NewFromSysfs(sysfs)
	default:
		return Counter{}, fmt.Errorf("unknown probe %q, supported: %s", probe, strings.Join(Probes(), ", "))
	}
}

// ClocksourceName returns the kernel clocksource backed by the cycle counter,
// empty if there is none on this architecture
func ClocksourceName() string {
	return clocksourceName
}

func fromClocksources(fs sysfs.FS) (Counter, error) {
	if clocksourceName == "" {
		return Counter{}, fmt.Errorf("%w: no kernel clocksource backed by the cycle counter on this architecture", ErrUnavailable)
	}
	sources, err := fs.ClockSources()
	if err != nil {
		return Counter{}, fmt.Errorf("%w: reading clocksources: %w", ErrUnavailable, err)
	}
	for _, cs := range sources {
		if cs.Current == clocksourceName || slices.Contains(cs.Available, clocksourceName) {
			return Counter{}, nil
		}
	}
	return Counter{}, fmt.Errorf("%w: clocksource %q is neither current nor available", ErrUnavailable, clocksourceName)
}
