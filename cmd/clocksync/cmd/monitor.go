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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebookincubator/clocksync/monitor"
	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

var (
	monitorCfg     = monitor.DefaultConfig()
	monitorCfgPath string
)

func init() {
	RootCmd.AddCommand(monitorCmd)
	f := monitorCmd.Flags()
	f.StringVarP(&monitorCfgPath, "config", "c", "", "path to config, flag values are ignored when set")
	f.StringVarP(&monitorCfg.Reference, "reference", "r", monitorCfg.Reference, fmt.Sprintf("reference clock, one of %v", sysclock.Names()))
	f.StringVarP(&monitorCfg.Target, "target", "t", monitorCfg.Target, "monitored clock: tsc, PHC device path or POSIX clock name")
	f.StringVarP(&monitorCfg.Probe, "probe", "p", monitorCfg.Probe, fmt.Sprintf("how to check the tsc target is usable, one of %v", tsc.Probes()))
	f.StringVar(&monitorCfg.Sysfs, "sysfs", monitorCfg.Sysfs, "sysfs mount point for clocksource probe, default /sys")
	f.IntVarP(&monitorCfg.Trials, "trials", "n", monitorCfg.Trials, "ABA trials to pick the tightest bracket from")
	f.DurationVarP(&monitorCfg.Interval, "interval", "i", monitorCfg.Interval, "how often to measure drift")
	f.DurationVar(&monitorCfg.DriftThreshold, "threshold", monitorCfg.DriftThreshold, "drift to warn about, 0 disables")
	f.DurationVar(&monitorCfg.Calibration.Window, "window", tsc.DefaultWindow, "calibration sampling window")
	f.Float64Var(&monitorCfg.Calibration.Tolerance, "tolerance", tsc.DefaultTolerance, "relative change between windows considered converged")
	f.IntVar(&monitorCfg.Calibration.MaxIterations, "max-iterations", tsc.DefaultMaxIterations, "give up calibration after this many windows")
	f.DurationVar(&monitorCfg.Calibration.Timeout, "timeout", tsc.DefaultTimeout, "give up calibration after this long")
	f.IntVar(&monitorCfg.MonitoringPort, "monitoringport", monitorCfg.MonitoringPort, "port to serve JSON counters on, 0 disables")
	f.IntVar(&monitorCfg.PrometheusPort, "prometheusport", monitorCfg.PrometheusPort, "port to serve Prometheus metrics on, 0 disables")
}

func monitorRun(cfg *monitor.Config, cfgPath string) error {
	var err error
	if cfgPath != "" {
		log.Warningf("using config from %s, flag values are ignored", cfgPath)
		cfg, err = monitor.ReadConfig(cfgPath)
		if err != nil {
			return err
		}
	}
	if err := cfg.EvalAndValidate(); err != nil {
		return err
	}
	log.Debugf("Config: %+v", *cfg)

	ctx, cancel := signalContext()
	defer cancel()
	stats := monitor.NewJSONStats()
	d, closer, err := monitor.Setup(ctx, cfg, stats)
	if err != nil {
		return err
	}
	defer closer()
	log.Infof("monitoring %s against %s every %v", cfg.Target, cfg.Reference, cfg.Interval)
	return monitor.Serve(ctx, cfg, d, stats)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Continuously measure drift of a synchronized clock and export it",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := monitorRun(monitorCfg, monitorCfgPath); err != nil {
			log.Fatal(err)
		}
	},
}
