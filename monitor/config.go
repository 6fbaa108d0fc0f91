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

package monitor

import (
	"fmt"
	"os"
	"slices"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/facebookincubator/clocksync/sysclock"
	"github.com/facebookincubator/clocksync/tsc"
)

// TargetTSC selects the cycle counter as the monitored clock
const TargetTSC = "tsc"

// Config represents configuration we expect to read from file
type Config struct {
	Reference      string        // reference clock, one of sysclock.Names()
	Target         string        // "tsc", a PHC device path or a POSIX clock name
	Trials         int           // ABA trials per synchronization
	Interval       time.Duration // how often drift is measured
	DriftThreshold time.Duration // drift above which we complain, 0 disables
	Probe          string        // how to check the "tsc" target is usable, one of tsc.Probes()
	Sysfs          string        // sysfs mount point for the clocksource probe, empty means /sys
	Calibration    tsc.Config    // cycle counter calibration, only used for "tsc" target
	MonitoringPort int           // JSON stats port, 0 disables
	PrometheusPort int           // Prometheus exporter port, 0 disables
}

// DefaultConfig returns Config with sane defaults
func DefaultConfig() *Config {
	return &Config{
		Reference:      "raw",
		Target:         TargetTSC,
		Trials:         3,
		Probe:          tsc.ProbeCPU,
		Interval:       time.Second,
		DriftThreshold: 10 * time.Microsecond,
		Calibration:    tsc.DefaultConfig(),
		MonitoringPort: 4269,
	}
}

func validPort(p int) bool {
	return p >= 0 && p <= 65535
}

// EvalAndValidate makes sure config is valid
func (c *Config) EvalAndValidate() error {
	if !slices.Contains(sysclock.Names(), c.Reference) {
		return fmt.Errorf("bad config: 'reference' must be one of %v", sysclock.Names())
	}
	if c.Target == "" {
		return fmt.Errorf("bad config: 'target' must be specified")
	}
	if c.Target == c.Reference {
		return fmt.Errorf("bad config: 'target' must differ from 'reference'")
	}
	if !slices.Contains(tsc.Probes(), c.Probe) {
		return fmt.Errorf("bad config: 'probe' must be one of %v", tsc.Probes())
	}
	if c.Sysfs != "" && c.Probe != tsc.ProbeClocksource {
		return fmt.Errorf("bad config: 'sysfs' is only used by the %s probe", tsc.ProbeClocksource)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("bad config: 'trials' must be >0")
	}
	if c.Interval <= 0 || c.Interval > time.Hour {
		return fmt.Errorf("bad config: 'interval' must be between 0 and 1 hour")
	}
	if c.DriftThreshold < 0 {
		return fmt.Errorf("bad config: 'driftthreshold' must not be negative")
	}
	if c.Calibration.Tolerance < 0 || c.Calibration.Window < 0 || c.Calibration.Timeout < 0 || c.Calibration.MaxIterations < 0 {
		return fmt.Errorf("bad config: 'calibration' values must not be negative")
	}
	if !validPort(c.MonitoringPort) || !validPort(c.PrometheusPort) {
		return fmt.Errorf("bad config: ports must be between 0 and 65535")
	}
	if c.MonitoringPort != 0 && c.MonitoringPort == c.PrometheusPort {
		return fmt.Errorf("bad config: 'monitoringport' and 'prometheusport' must differ")
	}
	return nil
}

// ReadConfig reads config and unmarshals it from yaml into Config.
// Values missing from the file keep their defaults.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	err = yaml.UnmarshalStrict(data, c)
	return c, err
}
