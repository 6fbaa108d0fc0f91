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

import "errors"

// CPUID leaves and feature bits, from the Intel SDM vol. 2A and AMD APM vol. 3
const (
	cpuidBasic         = 0x00000000
	cpuidFeatures      = 0x00000001
	cpuidExtended      = 0x80000000
	cpuidPowerMgmt     = 0x80000007
	featureEDXTSC      = 1 << 4
	powerMgmtEDXInvTSC = 1 << 8
)

type cpuidFunc func(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// invariantTSC checks that the time stamp counter exists and runs at a
// constant rate in all ACPI P-, C- and T-states
func invariantTSC(cpuid cpuidFunc) error {
	maxLeaf, _, _, _ := cpuid(cpuidBasic, 0)
	if maxLeaf < cpuidFeatures {
		return errors.New("CPUID feature leaf not supported")
	}
	_, _, _, edx := cpuid(cpuidFeatures, 0)
	if edx&featureEDXTSC == 0 {
		return errors.New("CPU has no time stamp counter")
	}
	maxExt, _, _, _ := cpuid(cpuidExtended, 0)
	if maxExt < cpuidPowerMgmt {
		return errors.New("CPUID power management leaf not supported")
	}
	_, _, _, edx = cpuid(cpuidPowerMgmt, 0)
	if edx&powerMgmtEDXInvTSC == 0 {
		return errors.New("time stamp counter is not invariant")
	}
	return nil
}
