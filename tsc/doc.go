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
Package tsc reads the CPU cycle counter and calibrates it against a reference
clock.

The counter (TSC on amd64, CNTVCT_EL0 on arm64) is the cheapest time source on
a machine, but ticks at an a priori unknown rate. Two independent probes decide
whether it can be trusted:

  - NewFromCPU asks the processor (CPUID invariant TSC flag on amd64), which
    works without an operating system;
  - NewFromClocksource asks the Linux kernel whether it uses or offers the
    counter as a clocksource.

Pick the probe matching the deployment, neither implies the other.

Calibrate turns a Counter into a Calibrated clock by measuring its rate
against a reference clock until two consecutive measurements agree. Unlike the
classic unbounded loop it gives up after a bounded number of iterations or a
timeout and reports ErrNoConvergence.
*/
package tsc
