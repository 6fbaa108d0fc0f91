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
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/clocksync/phc"
)

type phcSyncStats struct {
	Offset       time.Duration `json:"phc.offset_ns"`
	RoundTrip    time.Duration `json:"phc.roundtrip_ns"`
	Uncertainty  time.Duration `json:"phc.uncertainty_ns"`
	FreqPPB      float64       `json:"phc.freq_ppb"`
	MaxFreqPPB   float64       `json:"phc.max_freq_ppb"`
	Synchronized bool          `json:"phc.synchronized"`
}

var (
	phcSyncDeviceFlag  string
	phcSyncIfaceFlag   string
	phcSyncSamplesFlag int
	phcSyncJSONFlag    bool
)

func init() {
	RootCmd.AddCommand(phcSyncCmd)
	phcSyncCmd.Flags().StringVarP(&phcSyncDeviceFlag, "device", "d", "/dev/ptp0", "PHC device")
	phcSyncCmd.Flags().StringVarP(&phcSyncIfaceFlag, "iface", "i", "", "network interface to use PHC of, overrides --device")
	phcSyncCmd.Flags().IntVarP(&phcSyncSamplesFlag, "samples", "n", phc.MaxSamples, "kernel samples to pick the tightest bracket from")
	phcSyncCmd.Flags().BoolVarP(&phcSyncJSONFlag, "json", "j", false, "produce json output")
}

func openDevice(device, iface string) (*phc.Device, error) {
	if iface != "" {
		return phc.OpenIface(iface)
	}
	return phc.Open(device)
}

func phcSyncRun(device, iface string, samples int, isJSON bool) error {
	dev, err := openDevice(device, iface)
	if err != nil {
		return err
	}
	defer dev.Close()

	s, err := dev.Synchronize(samples)
	if err != nil {
		return err
	}
	freq, err := dev.FrequencyPPB()
	if err != nil {
		log.Warning(err)
	}
	maxFreq, err := dev.MaxFreqPPB()
	if err != nil {
		log.Warning(err)
	}
	synced, err := dev.Synchronized()
	if err != nil {
		log.Warning(err)
	}
	stats := phcSyncStats{
		Offset:       phc.Offset(s),
		RoundTrip:    s.RoundTrip(),
		Uncertainty:  s.Uncertainty(),
		FreqPPB:      freq,
		MaxFreqPPB:   maxFreq,
		Synchronized: synced,
	}

	if isJSON {
		str, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("marshaling json: %w", err)
		}
		fmt.Println(string(str))
		return nil
	}
	fmt.Printf("PHC %s offset from CLOCK_REALTIME: %v\n", dev.Path(), stats.Offset)
	fmt.Printf("Round trip: %v (uncertainty %v, best of %d)\n", stats.RoundTrip, stats.Uncertainty, s.Stats().Trials)
	fmt.Printf("Frequency: %.3f PPB (max %.0f PPB)\n", stats.FreqPPB, stats.MaxFreqPPB)
	fmt.Printf("Synchronized: %v\n", stats.Synchronized)
	return nil
}

var phcSyncCmd = &cobra.Command{
	Use:   "phcsync",
	Short: "Synchronize CLOCK_REALTIME with a PHC using kernel sampled brackets",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := phcSyncRun(phcSyncDeviceFlag, phcSyncIfaceFlag, phcSyncSamplesFlag, phcSyncJSONFlag); err != nil {
			log.Fatal(err)
		}
	},
}
