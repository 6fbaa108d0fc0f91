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

package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/shirou/gopsutil/cpu"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/clocksync/tsc"
)

// cpu flags which tell if the cycle counter is usable as a clock
var counterFlags = []string{"tsc", "constant_tsc", "nonstop_tsc", "tsc_known_freq", "tsc_reliable"}

var probeSysfsFlag string

func init() {
	RootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeSysfsFlag, "sysfs", "", "sysfs mount point to read clocksources from, default /sys")
}

// counterFlagsStatus returns which of counterFlags are present and which are missing
func counterFlagsStatus(flags []string) (present, missing []string) {
	for _, f := range counterFlags {
		if slices.Contains(flags, f) {
			present = append(present, f)
		} else {
			missing = append(missing, f)
		}
	}
	return present, missing
}

func probeLine(name string, c tsc.Counter, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s: %v", failString, name, err)
	}
	return fmt.Sprintf("%s %s: %s is usable", okString, name, c.Name())
}

func probeRun(sysfs string) error {
	infos, err := cpu.Info()
	if err != nil {
		log.Warningf("reading cpu info: %v", err)
	}
	if len(infos) > 0 {
		info := infos[0]
		present, missing := counterFlagsStatus(info.Flags)
		fmt.Printf("CPU: %s (%s)\n", info.ModelName, info.VendorID)
		fmt.Printf("\tflags present: %s\n", color.GreenString(strings.Join(present, " ")))
		fmt.Printf("\tflags missing: %s\n", color.YellowString(strings.Join(missing, " ")))
	}

	cpuCounter, cpuErr := tsc.NewFromCPU()
	fmt.Println(probeLine("cpu probe", cpuCounter, cpuErr))

	var csCounter tsc.Counter
	var csErr error
	if sysfs == "" {
		csCounter, csErr = tsc.NewFromClocksource()
	} else {
		csCounter, csErr = tsc.NewFromSysfs(sysfs)
	}
	fmt.Println(probeLine("clocksource probe", csCounter, csErr))

	if cpuErr != nil && csErr != nil {
		return fmt.Errorf("no usable cycle counter")
	}
	return nil
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check if the cycle counter can be used as a clock",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := probeRun(probeSysfsFlag); err != nil {
			log.Fatal(err)
		}
	},
}
