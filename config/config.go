// Package config loads the trackmon YAML configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the telemetry pipeline and its runner.
type Config struct {
	// WindowSize is the rolling-statistics window capacity per device.
	WindowSize int `yaml:"window_size"`
	// DriftThresholdM is the displacement alarm threshold in meters.
	DriftThresholdM float64 `yaml:"drift_threshold_m"`
	// DriftHistoryCap bounds the retained displacement series per device.
	DriftHistoryCap int `yaml:"drift_history_cap"`
	// SampleRateHz is the acquisition tick rate.
	SampleRateHz int `yaml:"sample_rate_hz"`
	// ExportDir is where CSV exports are written. Empty means the
	// current working directory.
	ExportDir string `yaml:"export_dir"`
}

// Default returns the production defaults: 100-sample windows, 5 mm drift
// threshold, 3000-point drift history, 90 Hz acquisition.
func Default() Config {
	return Config{
		WindowSize:      100,
		DriftThresholdM: 0.005,
		DriftHistoryCap: 3000,
		SampleRateHz:    90,
	}
}

// Load reads and parses a YAML config file. Zero-valued fields fall back
// to the defaults from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Can't read config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "Can't parse config %s", path)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.DriftThresholdM <= 0 {
		c.DriftThresholdM = d.DriftThresholdM
	}
	if c.DriftHistoryCap <= 0 {
		c.DriftHistoryCap = d.DriftHistoryCap
	}
	if c.SampleRateHz <= 0 {
		c.SampleRateHz = d.SampleRateHz
	}
}
