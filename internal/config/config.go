// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the HCL configuration file. Every block is
// optional; CLI flags override file values.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/glasswing/internal/errors"
)

// Config is the root configuration.
type Config struct {
	Capture     *CaptureConfig     `hcl:"capture,block"`
	Database    *DatabaseConfig    `hcl:"database,block"`
	Analysis    *AnalysisConfig    `hcl:"analysis,block"`
	Classifiers *ClassifiersConfig `hcl:"classifiers,block"`
	Analytics   *AnalyticsConfig   `hcl:"analytics,block"`
	Metrics     *MetricsConfig     `hcl:"metrics,block"`
	Logging     *LoggingConfig     `hcl:"logging,block"`
}

// CaptureConfig controls the packet source.
type CaptureConfig struct {
	Interface string `hcl:"interface,optional"`
	BPF       string `hcl:"bpf,optional"`
	SnapLen   int    `hcl:"snaplen,optional"`
	Promisc   bool   `hcl:"promiscuous,optional"`
}

// DatabaseConfig locates the fingerprint database.
type DatabaseConfig struct {
	Path string `hcl:"path,optional"`
}

// AnalysisConfig controls process identification.
type AnalysisConfig struct {
	Enabled      bool   `hcl:"enabled,optional"`
	NumProcs     int    `hcl:"num_procs,optional"`
	MemoCapacity int    `hcl:"memo_capacity,optional"`
	AppFamilies  string `hcl:"app_families,optional"`
}

// ClassifiersConfig locates contextual-feature data files.
type ClassifiersConfig struct {
	ASNDatabase string `hcl:"asn_database,optional"`
}

// AnalyticsConfig controls the observation store.
type AnalyticsConfig struct {
	Enabled bool   `hcl:"enabled,optional"`
	Path    string `hcl:"path,optional"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `hcl:"enabled,optional"`
	Listen  string `hcl:"listen,optional"`
}

// LoggingConfig mirrors logging.Config for the file format.
type LoggingConfig struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Capture:   &CaptureConfig{BPF: "tcp", SnapLen: 65535},
		Analysis:  &AnalysisConfig{NumProcs: 0, MemoCapacity: 1 << 16},
		Analytics: &AnalyticsConfig{},
		Metrics:   &MetricsConfig{Listen: "127.0.0.1:9832"},
		Logging:   &LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadFile reads an HCL config file and fills unset blocks with
// defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.KindNotFound, "config file %s", path)
	}
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing config file %s", path)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Capture == nil {
		cfg.Capture = def.Capture
	} else {
		if cfg.Capture.BPF == "" {
			cfg.Capture.BPF = def.Capture.BPF
		}
		if cfg.Capture.SnapLen == 0 {
			cfg.Capture.SnapLen = def.Capture.SnapLen
		}
	}
	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}
	if cfg.Analysis == nil {
		cfg.Analysis = def.Analysis
	} else if cfg.Analysis.MemoCapacity == 0 {
		cfg.Analysis.MemoCapacity = def.Analysis.MemoCapacity
	}
	if cfg.Classifiers == nil {
		cfg.Classifiers = &ClassifiersConfig{}
	}
	if cfg.Analytics == nil {
		cfg.Analytics = def.Analytics
	}
	if cfg.Metrics == nil {
		cfg.Metrics = def.Metrics
	} else if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = def.Metrics.Listen
	}
	if cfg.Logging == nil {
		cfg.Logging = def.Logging
	} else {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = def.Logging.Level
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = def.Logging.Format
		}
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Analysis != nil && c.Analysis.NumProcs < 0 {
		return errors.Errorf(errors.KindValidation, "analysis.num_procs must be >= 0, got %d", c.Analysis.NumProcs)
	}
	if c.Capture != nil && c.Capture.SnapLen < 0 {
		return errors.Errorf(errors.KindValidation, "capture.snaplen must be >= 0, got %d", c.Capture.SnapLen)
	}
	if c.Analytics != nil && c.Analytics.Enabled && c.Analytics.Path == "" {
		return errors.New(errors.KindValidation, "analytics.path is required when analytics is enabled")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.Errorf(errors.KindValidation, "logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
