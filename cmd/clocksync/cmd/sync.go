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
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/clocksync/clocksync"
	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

var (
	syncTrialsFlag    int
	syncCountFlag     int
	syncIntervalFlag  time.Duration
	syncThresholdFlag time.Duration
)

func init() {
	RootCmd.AddCommand(syncCmd)
	addCounterFlags(syncCmd)
	syncCmd.Flags().IntVarP(&syncTrialsFlag, "trials", "n", clocksync.DefaultTrials, "ABA trials to pick the tightest bracket from")
	syncCmd.Flags().IntVarP(&syncCountFlag, "count", "c", 5, "drift measurements after synchronization")
	syncCmd.Flags().DurationVarP(&syncIntervalFlag, "interval", "i", time.Second, "interval between drift measurements")
	syncCmd.Flags().DurationVar(&syncThresholdFlag, "threshold", 10*time.Microsecond, "drift to highlight")
}

func fmtDrift(drift, threshold time.Duration) string {
	if drift.Abs() > threshold {
		return color.RedString("%v", drift)
	}
	return color.GreenString("%v", drift)
}

func syncStatsRows(s clocksync.RoundTripStats, uncertainty time.Duration) [][]string {
	return [][]string{
		{"trials", fmt.Sprintf("%d", s.Trials)},
		{"round trip min", s.Min.String()},
		{"round trip mean", s.Mean.String()},
		{"round trip stddev", s.Stddev.String()},
		{"uncertainty", uncertainty.String()},
	}
}

func syncRun() error {
	ctx, cancel := signalContext()
	defer cancel()
	cal, ref, err := calibrateCounter(ctx)
	if err != nil {
		return err
	}
	s := clocksync.NewBidirectional[sysclock.Nanos, tsc.Instant](ref, cal, clocksync.WithTrials(syncTrialsFlag))
	fmt.Printf("%s at cycle %d, %.6f ns/cycle\n", counterReferenceFlag, s.EpochB(), cal.NSPerCycle())
	fmt.Printf("%s epoch: %s\n", counterReferenceFlag, s.EpochA().Duration())

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("synchronization", "value")
	if err := table.Bulk(syncStatsRows(s.Stats(), s.Uncertainty())); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	ticker := time.NewTicker(syncIntervalFlag)
	defer ticker.Stop()
	for i := range syncCountFlag {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		drift, rt := s.Drift()
		fmt.Printf("%3d drift: %s (round trip %v)\n", i+1, fmtDrift(drift, syncThresholdFlag), rt)
	}
	return nil
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the cycle counter with a reference clock and watch it drift",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := syncRun(); err != nil {
			log.Fatal(err)
		}
	},
}
