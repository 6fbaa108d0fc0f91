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
Package phc exposes PTP hardware clocks (/dev/ptpN) as calibrated clocks and
synchronizes them against CLOCK_REALTIME from kernel-sampled brackets.
*/
package phc

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/facebookincubator/clocksync/clock"
	"github.com/facebookincubator/clocksync/clocksync"
	"github.com/facebookincubator/clocksync/sysclock"
)

// Sync is a synchronization between CLOCK_REALTIME (A) and a PHC (B)
type Sync = clocksync.Bidirectional[sysclock.Nanos, sysclock.Nanos]

// FDToClockID converts file descriptor number to clockID.
// see man(3) clock_gettime, FD_TO_CLOCKID macros
func FDToClockID(fd uintptr) int32 {
	return int32((int(^fd) << 3) | 3)
}

// Device is an open PHC character device
type Device struct {
	file  *os.File
	clock sysclock.POSIX
}

// Open opens the PHC device at path, i.e. /dev/ptp0
func Open(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PHC device: %w", err)
	}
	c, err := sysclock.NewPOSIX(FDToClockID(f.Fd()))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s is not a PHC: %w", path, err)
	}
	return &Device{file: f, clock: c}, nil
}

// OpenIface opens the PHC associated with the network interface
func OpenIface(iface string) (*Device, error) {
	path, err := DeviceFromIface(iface)
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Path returns the device path
func (d *Device) Path() string {
	return d.file.Name()
}

// Clock returns the PHC as a calibrated nanosecond clock.
// It stays valid until the device is closed.
func (d *Device) Clock() sysclock.POSIX {
	return d.clock
}

// Close closes the device
func (d *Device) Close() error {
	return d.file.Close()
}

// FrequencyPPB reads the PHC frequency adjustment in PPB
func (d *Device) FrequencyPPB() (float64, error) {
	freq, _, err := clock.FrequencyPPB(d.clock.ID())
	if err != nil {
		return 0, fmt.Errorf("reading %s frequency: %w", d.Path(), err)
	}
	return freq, nil
}

// MaxFreqPPB returns the largest frequency adjustment the PHC accepts
func (d *Device) MaxFreqPPB() (float64, error) {
	freq, _, err := clock.MaxFreqPPB(d.clock.ID())
	if err != nil {
		return 0, fmt.Errorf("reading %s max frequency: %w", d.Path(), err)
	}
	return freq, nil
}

// Synchronized reports whether the kernel considers the PHC synchronized
func (d *Device) Synchronized() (bool, error) {
	return clock.Synchronized(d.clock.ID())
}

// ReadSysoffExtended asks the kernel for samples [system, phc, system] brackets
func (d *Device) ReadSysoffExtended(samples int) (*PTPSysOffsetExtended, error) {
	if samples < 1 || samples > MaxSamples {
		return nil, fmt.Errorf("samples must be within [1, %d], got %d", MaxSamples, samples)
	}
	res := &PTPSysOffsetExtended{NSamples: uint32(samples)}
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL, d.file.Fd(),
		ioctlPTPSysOffsetExtended,
		uintptr(unsafe.Pointer(res)),
	)
	if errno != 0 {
		return nil, fmt.Errorf("failed PTP_SYS_OFFSET_EXTENDED: %w", errno)
	}
	return res, nil
}

// Synchronize synchronizes CLOCK_REALTIME with the PHC using samples
// kernel-sampled brackets and picking the tightest one
func (d *Device) Synchronize(samples int) (Sync, error) {
	sys, err := sysclock.NewPOSIX(unix.CLOCK_REALTIME)
	if err != nil {
		return Sync{}, err
	}
	extended, err := d.ReadSysoffExtended(samples)
	if err != nil {
		return Sync{}, err
	}
	return synchronize(sys, d.clock, extended)
}

// ErrNoSamples is returned when the kernel returned no brackets
var ErrNoSamples = errors.New("no PTP_SYS_OFFSET_EXTENDED samples")

func synchronize(sys, phc clock.Calibrated[sysclock.Nanos], extended *PTPSysOffsetExtended) (Sync, error) {
	trials := Trials(extended)
	if len(trials) == 0 {
		return Sync{}, ErrNoSamples
	}
	return clocksync.BidirectionalFromTrials(sys, phc, trials)
}

// Trials converts the kernel brackets into synchronization trials
func Trials(extended *PTPSysOffsetExtended) []clocksync.Trial[sysclock.Nanos, sysclock.Nanos] {
	n := min(int(extended.NSamples), MaxSamples)
	trials := make([]clocksync.Trial[sysclock.Nanos, sysclock.Nanos], 0, n)
	for _, ts := range extended.TS[:n] {
		trials = append(trials, clocksync.Trial[sysclock.Nanos, sysclock.Nanos]{
			A0: sysclock.Nanos(ts[0].UnixNano()),
			B:  sysclock.Nanos(ts[1].UnixNano()),
			A1: sysclock.Nanos(ts[2].UnixNano()),
		})
	}
	return trials
}

// Offset returns PHC time minus system time at the synchronization epoch
func Offset(s Sync) time.Duration {
	return time.Duration(s.EpochB() - s.EpochA())
}
