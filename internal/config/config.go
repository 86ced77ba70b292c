// Package config loads the nucleus's statically sized pool tunables
// (MAXPROC, MAXSEM, time-slice/interval durations) from a YAML boot
// file: decode a file into a struct pointer, then let environment
// variables override individual fields.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every statically-sized-pool and timing tunable the
// nucleus needs at boot. Defaults give a pool of 20 PCBs and 22
// semaphore descriptors.
type Config struct {
	MaxProc       int           `yaml:"max_proc"`
	MaxSem        int           `yaml:"max_sem"`
	TimeSlice     time.Duration `yaml:"time_slice"`
	ClockInterval time.Duration `yaml:"clock_interval"`
}

// Default returns the nucleus's default tunables.
func Default() Config {
	return Config{
		MaxProc:       20,
		MaxSem:        22,
		TimeSlice:     5 * time.Millisecond,
		ClockInterval: 100 * time.Millisecond,
	}
}

// Load decodes a YAML boot file into a Config seeded with Default(),
// then applies NUCLEUS_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides applies a per-field environment override, scoped to
// this process's own tunables since the nucleus has no peer services to
// address.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NUCLEUS_MAX_PROC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxProc = n
		}
	}
	if v := os.Getenv("NUCLEUS_MAX_SEM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSem = n
		}
	}
	if v := os.Getenv("NUCLEUS_TIME_SLICE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeSlice = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("NUCLEUS_CLOCK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ClockInterval = time.Duration(n) * time.Millisecond
		}
	}
}
