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
Package clock defines the capability contract shared by every time source in
this module.

A Clock is a small copyable value producing opaque, totally ordered instants.
A Calibrated clock additionally supports signed nanosecond arithmetic over its
own instants, which is what the synchronization protocol and the cycle counter
calibration loop are built on.

Instants of counters which wrap at a fixed bit width must not be ordered with
plain numeric comparison. WrappingSub and CompareWrapping order them by the sign
of a fixed-width wrapping subtraction, which is correct as long as the two
readings are less than half the counter's range apart.

On Linux the package also exposes read-only helpers around the CLOCK_ADJTIME
syscall (FrequencyPPB, MaxFreqPPB, Synchronized) to inspect how the kernel is
currently disciplining a clock.
*/
package clock
