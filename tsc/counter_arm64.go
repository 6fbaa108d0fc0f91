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

const counterName = "cntvct_el0"

const clocksourceName = "arch_sys_counter"

// cntvct reads the generic timer virtual count. Implemented in counter_arm64.s
func cntvct() uint64

// Now reads the virtual counter
func (Counter) Now() Instant {
	return Instant(cntvct())
}

// The ARMv8 generic timer is architecturally required to tick at a constant
// frequency, there is no feature flag to check.
func cpuProbe() error {
	return nil
}
