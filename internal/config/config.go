// Package config loads the YAML application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone dates are interpreted in at the edges of the
	// system (e.g. "Asia/Tokyo"). The engine itself works on civil dates.
	Timezone string `yaml:"timezone"`

	// DatabasePath is the SQLite database file.
	DatabasePath string `yaml:"database_path"`

	// HorizonMonths is how many months past today the materialization job
	// covers.
	HorizonMonths int `yaml:"horizon_months"`

	// MaterializeCron is a 5-field cron spec for the materialization job.
	MaterializeCron string `yaml:"materialize_cron"`

	// CacheTTLMinutes is how long calendar window queries stay cached.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`

	// BusinessHoursStart/End bound the time slots conflict suggestions may
	// propose, HH:MM.
	BusinessHoursStart string `yaml:"business_hours_start"`
	BusinessHoursEnd   string `yaml:"business_hours_end"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		Timezone:           "Asia/Tokyo",
		DatabasePath:       "teamcal.db",
		HorizonMonths:      3,
		MaterializeCron:    "30 2 * * *",
		CacheTTLMinutes:    15,
		BusinessHoursStart: "08:00",
		BusinessHoursEnd:   "20:00",
	}
}

// Normalize fills missing or zero values with defaults so partially filled
// config files still behave.
func (c *Config) Normalize() {
	d := Default()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.HorizonMonths <= 0 {
		c.HorizonMonths = d.HorizonMonths
	}
	if c.MaterializeCron == "" {
		c.MaterializeCron = d.MaterializeCron
	}
	if c.CacheTTLMinutes <= 0 {
		c.CacheTTLMinutes = d.CacheTTLMinutes
	}
	if c.BusinessHoursStart == "" {
		c.BusinessHoursStart = d.BusinessHoursStart
	}
	if c.BusinessHoursEnd == "" {
		c.BusinessHoursEnd = d.BusinessHoursEnd
	}
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults are written there first, so a fresh install starts from a real
// file it can edit.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename), creating the
// parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".teamcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
