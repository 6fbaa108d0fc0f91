//go:build !amd64 && !arm64

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

const counterName = "none"

// no clocksource probe on this architecture
const clocksourceName = ""

// Now always returns 0, both probes fail on this architecture
func (Counter) Now() Instant {
	return 0
}

func cpuProbe() error {
	return errors.New("no cycle counter support for this architecture")
}
