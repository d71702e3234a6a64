// Package config loads the urlmin service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/urlmin/analyzer"
)

// Config holds the full service configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	LogLevel string         `yaml:"log_level"` // debug | info | warn | error
	AuditDB  string         `yaml:"audit_db"`  // empty disables the audit log

	// AuditRetentionDays bounds how long audit events are kept.
	// 0 keeps them forever.
	AuditRetentionDays int `yaml:"audit_retention_days"`
	Render   RenderConfig   `yaml:"render"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// RenderConfig selects and tunes the rendering backend.
type RenderConfig struct {
	Mode             string `yaml:"mode"`       // browser | http
	RemoteURL        string `yaml:"remote_url"` // attach to a running browser instead of launching
	UserAgent        string `yaml:"user_agent"`
	ResourceBlocking bool   `yaml:"resource_blocking"`
	MaxBytes         int64  `yaml:"max_bytes"`
}

// AnalyzerConfig tunes the minimal-URL search.
type AnalyzerConfig struct {
	TimeoutMS           int64   `yaml:"timeout_ms"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	SuccessStatus       int     `yaml:"success_status"`
	ConcurrencyLimit    int     `yaml:"concurrency_limit"`
	MaxRetries          int     `yaml:"max_retries"`
	MaxCombinationSize  int     `yaml:"max_combination_size"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8000",
		LogLevel: "info",
		Render: RenderConfig{
			Mode:             "browser",
			ResourceBlocking: true,
		},
		Analyzer: AnalyzerConfig{
			TimeoutMS:           30000,
			SimilarityThreshold: 0.95,
			SuccessStatus:       200,
			ConcurrencyLimit:    5,
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level %q (use debug, info, warn or error)", c.LogLevel)
	}
	switch c.Render.Mode {
	case "browser", "http":
	default:
		return fmt.Errorf("unsupported render mode %q (use browser or http)", c.Render.Mode)
	}
	if c.Analyzer.TimeoutMS <= 0 {
		return fmt.Errorf("analyzer timeout_ms must be > 0")
	}
	if c.Analyzer.SimilarityThreshold <= 0 || c.Analyzer.SimilarityThreshold > 1 {
		return fmt.Errorf("analyzer similarity_threshold must be in (0, 1]")
	}
	if c.Analyzer.ConcurrencyLimit <= 0 {
		return fmt.Errorf("analyzer concurrency_limit must be > 0")
	}
	if c.Analyzer.MaxRetries < 0 {
		return fmt.Errorf("analyzer max_retries must be >= 0")
	}
	if c.Analyzer.MaxCombinationSize < 0 {
		return fmt.Errorf("analyzer max_combination_size must be >= 0")
	}
	if c.AuditRetentionDays < 0 {
		return fmt.Errorf("audit_retention_days must be >= 0")
	}
	return nil
}

// AnalyzerSettings converts the YAML analyzer section to the
// analyzer's own Config type.
func (c *Config) AnalyzerSettings() analyzer.Config {
	return analyzer.Config{
		Timeout:             time.Duration(c.Analyzer.TimeoutMS) * time.Millisecond,
		SimilarityThreshold: c.Analyzer.SimilarityThreshold,
		SuccessStatus:       c.Analyzer.SuccessStatus,
		ConcurrencyLimit:    c.Analyzer.ConcurrencyLimit,
		MaxRetries:          c.Analyzer.MaxRetries,
		MaxCombinationSize:  c.Analyzer.MaxCombinationSize,
	}
}
