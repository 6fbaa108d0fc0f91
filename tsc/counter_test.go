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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCPUID answers CPUID from a table of leaf -> (eax, edx)
func fakeCPUID(leaves map[uint32][2]uint32) cpuidFunc {
	return func(eaxArg, _ uint32) (eax, ebx, ecx, edx uint32) {
		r := leaves[eaxArg]
		return r[0], 0, 0, r[1]
	}
}

func TestInvariantTSC(t *testing.T) {
	good := map[uint32][2]uint32{
		cpuidBasic:     {0x16, 0},
		cpuidFeatures:  {0, featureEDXTSC},
		cpuidExtended:  {0x80000008, 0},
		cpuidPowerMgmt: {0, powerMgmtEDXInvTSC},
	}
	require.NoError(t, invariantTSC(fakeCPUID(good)))

	noTSC := map[uint32][2]uint32{
		cpuidBasic:    {0x16, 0},
		cpuidFeatures: {0, 0},
	}
	require.ErrorContains(t, invariantTSC(fakeCPUID(noTSC)), "no time stamp counter")

	noExt := map[uint32][2]uint32{
		cpuidBasic:    {0x16, 0},
		cpuidFeatures: {0, featureEDXTSC},
		cpuidExtended: {0x80000004, 0},
	}
	require.ErrorContains(t, invariantTSC(fakeCPUID(noExt)), "power management leaf")

	variant := map[uint32][2]uint32{
		cpuidBasic:     {0x16, 0},
		cpuidFeatures:  {0, featureEDXTSC},
		cpuidExtended:  {0x80000008, 0},
		cpuidPowerMgmt: {0, 0},
	}
	require.ErrorContains(t, invariantTSC(fakeCPUID(variant)), "not invariant")

	require.ErrorContains(t, invariantTSC(fakeCPUID(nil)), "feature leaf")
}

func TestNewFromCPU(t *testing.T) {
	// depends on the machine, but must be one of the two outcomes
	c, err := NewFromCPU()
	if err != nil {
		require.ErrorIs(t, err, ErrUnavailable)
		return
	}
	require.Equal(t, Counter{}, c)
}

// writeClocksource lays out a fake /sys with a single clocksource
func writeClocksource(t *testing.T, current, available string) string {
	root := t.TempDir()
	dir := filepath.Join(root, "devices", "system", "clocksource", "clocksource0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current_clocksource"), []byte(current+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "available_clocksource"), []byte(available+"\n"), 0o644))
	return root
}

func TestNewFromSysfs(t *testing.T) {
	if clocksourceName == "" {
		t.Skip("no clocksource for the cycle counter on this architecture")
	}
	root := writeClocksource(t, clocksourceName, clocksourceName+" hpet acpi_pm ")
	_, err := NewFromSysfs(root)
	require.NoError(t, err)

	// demoted but still trusted
	root = writeClocksource(t, "hpet", "hpet "+clocksourceName)
	_, err = NewFromSysfs(root)
	require.NoError(t, err)

	// marked unstable by the kernel
	root = writeClocksource(t, "hpet", "hpet acpi_pm")
	_, err = NewFromSysfs(root)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorContains(t, err, "neither current nor available")
}

func TestNewFromSysfsMissing(t *testing.T) {
	_, err := NewFromSysfs(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrUnavailable)

	// sysfs without clocksources
	_, err = NewFromSysfs(t.TempDir())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewFromProbe(t *testing.T) {
	_, err := NewFromProbe("lol", "")
	require.EqualError(t, err, `unknown probe "lol", supported: cpu, clocksource`)

	// clocksource probe honours the sysfs mount point
	_, err = NewFromProbe(ProbeClocksource, filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrUnavailable)

	if clocksourceName == "" {
		return
	}
	root := writeClocksource(t, clocksourceName, clocksourceName)
	_, err = NewFromProbe(ProbeClocksource, root)
	require.NoError(t, err)
	require.Equal(t, clocksourceName, ClocksourceName())
}

func TestCounterCompare(t *testing.T) {
	c := Counter{}
	require.Equal(t, -1, c.Compare(^Instant(0), 1))
	require.Equal(t, 1, c.Compare(1, ^Instant(0)))
	require.Equal(t, 0, c.Compare(5, 5))
	require.NotEmpty(t, c.Name())

	a := c.Now()
	b := c.Now()
	require.LessOrEqual(t, c.Compare(a, b), 0)
}
