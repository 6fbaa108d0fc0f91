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
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/clocksync/clock"
	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

// flags shared by commands which calibrate the counter
var (
	counterReferenceFlag string
	counterProbeFlag     string
	counterSysfsFlag     string
	calibrationCfg       = tsc.DefaultConfig()
)

var calibrateJSONFlag bool

func init() {
	RootCmd.AddCommand(calibrateCmd)
	addCounterFlags(calibrateCmd)
	calibrateCmd.Flags().BoolVarP(&calibrateJSONFlag, "json", "j", false, "produce json output")
}

func addCounterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&counterReferenceFlag, "reference", "r", "raw", fmt.Sprintf("reference clock, one of %v", sysclock.Names()))
	cmd.Flags().StringVarP(&counterProbeFlag, "probe", "p", tsc.ProbeCPU, fmt.Sprintf("how to check the counter is usable, one of %v", tsc.Probes()))
	cmd.Flags().StringVar(&counterSysfsFlag, "sysfs", "", "sysfs mount point for clocksource probe, default /sys")
	cmd.Flags().DurationVar(&calibrationCfg.Window, "window", tsc.DefaultWindow, "calibration sampling window")
	cmd.Flags().Float64Var(&calibrationCfg.Tolerance, "tolerance", tsc.DefaultTolerance, "relative change between windows considered converged")
	cmd.Flags().IntVar(&calibrationCfg.MaxIterations, "max-iterations", tsc.DefaultMaxIterations, "give up after this many windows")
	cmd.Flags().DurationVar(&calibrationCfg.Timeout, "timeout", tsc.DefaultTimeout, "give up after this long")
}

// checkReference warns about reference clock conditions which bias or stall calibration
func checkReference(ref sysclock.POSIX, cfg tsc.Config) {
	res, err := ref.Resolution()
	if err != nil {
		log.Debugf("reading resolution of clock %d: %v", ref.ID(), err)
	} else if cfg.CoarseReference(res.Duration()) {
		log.Warningf("reference clock resolution %v is too coarse for a %v window, calibration may not converge", res.Duration(), cfg.Window)
	}

	freq, state, err := clock.FrequencyPPB(ref.ID())
	if err != nil {
		log.Debugf("reading frequency of clock %d: %v", ref.ID(), err)
		return
	}
	maxFreq, _, err := clock.MaxFreqPPB(ref.ID())
	if err != nil {
		log.Debugf("reading max frequency of clock %d: %v", ref.ID(), err)
	}
	if freq != 0 {
		log.Warningf("reference clock is slewed by %.3f PPB (max %.0f PPB, %s), calibration inherits it", freq, maxFreq, clock.StateString(state))
	}
	synced, err := clock.Synchronized(ref.ID())
	if err == nil && !synced {
		log.Infof("kernel does not consider the reference clock synchronized (%s)", clock.StateString(state))
	}
}

// calibrateCounter probes and calibrates the counter against the reference
func calibrateCounter(ctx context.Context) (tsc.Calibrated, sysclock.POSIX, error) {
	ref, err := sysclock.ByName(counterReferenceFlag)
	if err != nil {
		return tsc.Calibrated{}, ref, err
	}
	counter, err := tsc.NewFromProbe(counterProbeFlag, counterSysfsFlag)
	if err != nil {
		return tsc.Calibrated{}, ref, err
	}
	checkReference(ref, calibrationCfg)
	log.Debugf("calibrating %s against %s with %+v", counter.Name(), counterReferenceFlag, calibrationCfg)
	cal, err := tsc.Calibrate[sysclock.Nanos](ctx, counter, ref, calibrationCfg)
	if err != nil {
		return tsc.Calibrated{}, ref, fmt.Errorf("calibrating %s: %w", counter.Name(), err)
	}
	return cal, ref, nil
}

func reportRows(r tsc.Report) [][]string {
	return [][]string{
		{"ns/cycle", fmt.Sprintf("%.9f", r.NSPerCycle)},
		{"frequency", fmt.Sprintf("%.3f MHz", r.FrequencyHz/1e6)},
		{"iterations", fmt.Sprintf("%d", r.Iterations)},
		{"elapsed", r.Elapsed.String()},
		{"last relative change", fmt.Sprintf("%.3e", r.RelativeChange)},
		{"rate mean", fmt.Sprintf("%.9f", r.RateMean)},
		{"rate stddev", fmt.Sprintf("%.3e", r.RateStddev)},
	}
}

func printReport(r tsc.Report) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("calibration", "value")
	if err := table.Bulk(reportRows(r)); err != nil {
		return err
	}
	return table.Render()
}

func calibrateRun(isJSON bool) error {
	ctx, cancel := signalContext()
	defer cancel()
	cal, _, err := calibrateCounter(ctx)
	if err != nil {
		return err
	}
	if isJSON {
		str, err := json.Marshal(cal.Report())
		if err != nil {
			return fmt.Errorf("marshaling json: %w", err)
		}
		fmt.Println(string(str))
		return nil
	}
	return printReport(cal.Report())
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Measure the cycle counter rate against a reference clock",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := calibrateRun(calibrateJSONFlag); err != nil {
			log.Fatal(err)
		}
	},
}
