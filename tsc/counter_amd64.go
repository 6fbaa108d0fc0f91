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

// counterName is how we call the counter in reports
const counterName = "tsc"

// clocksourceName is the kernel clocksource backed by the counter
const clocksourceName = "tsc"

// rdtsc reads the time stamp counter. Implemented in counter_amd64.s
func rdtsc() uint64

// cpuid executes CPUID. Implemented in counter_amd64.s
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// Now reads the time stamp counter
func (Counter) Now() Instant {
	return Instant(rdtsc())
}

func cpuProbe() error {
	return invariantTSC(cpuid)
}
