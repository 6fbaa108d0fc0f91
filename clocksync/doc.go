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
Package clocksync establishes a one-time correspondence between two clock
domains.

Construction brackets a read of clock B between two reads of clock A, several
times, and keeps the bracket with the smallest round trip on A: the tighter the
bracket, the less uncertain we are about when B was read on A's timeline. B's
reading is assumed to have happened halfway through the bracket.

The result is immutable. It never re-synchronizes: drift between the domains
accumulates from the moment of construction, and callers decide when it is time
to build a new one (see Bidirectional.Drift).
*/
package clocksync
