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

package phc

import (
	"time"
	"unsafe"

	"github.com/vtolstov/go-ioctl"
)

// MaxSamples is the most brackets a single PTP_SYS_OFFSET_EXTENDED returns,
// PTP_MAX_SAMPLES in linux/ptp_clock.h
const MaxSamples = 25

// ioctl magic of PTP clock requests
const ptpClkMagic = '='

var ioctlPTPSysOffsetExtended = ioctl.IOWR(ptpClkMagic, 9, unsafe.Sizeof(PTPSysOffsetExtended{}))

// PTPClockTime is struct ptp_clock_time
type PTPClockTime struct {
	Sec      int64
	NSec     uint32
	Reserved uint32
}

// Time returns the reading as time.Time
func (t PTPClockTime) Time() time.Time {
	return time.Unix(t.Sec, int64(t.NSec))
}

// UnixNano returns the reading in nanoseconds since the epoch of its clock
func (t PTPClockTime) UnixNano() int64 {
	return t.Sec*int64(time.Second) + int64(t.NSec)
}

// PTPSysOffsetExtended is struct ptp_sys_offset_extended.
// Each of the first NSamples entries of TS is a bracket of
// system time, PHC time, system time, read in this order by the kernel.
type PTPSysOffsetExtended struct {
	NSamples uint32
	Reserved [3]uint32
	TS       [MaxSamples][3]PTPClockTime
}
