// =============================================================================
// Settlement Report Enricher - Configuration Module
// =============================================================================
//
// This module loads and manages the application configuration. Configuration
// lives in a single YAML file; defaults are applied for anything unset and
// the result is validated before the pipeline sees it.
//
// The core pipeline packages never read the environment or any global state:
// they receive this struct explicitly (the cmd layer is responsible for
// layering environment overrides on top before handing it over).
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DURATION WRAPPER
// =============================================================================

// Duration wraps time.Duration so YAML can express it as "5s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration, loaded from config.yaml.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for settlement report files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where enriched CSV files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir is the directory where processed input files are moved
	// after successful enrichment.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// =========================================================================
	// KEY-VALUE STORE SETTINGS
	// =========================================================================

	// RedisURL is the address of the key-value store holding transfer
	// records, in redis URL form.
	// Default: "redis://localhost:6379/0"
	RedisURL string `yaml:"redis_url"`

	// ConnectTimeout bounds the initial connection check against the store.
	// This is the only bounded wait in a run; per-key lookups rely on
	// whatever the store enforces.
	// Default: 5s
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// KeyPrefix is the store key namespace for transfer records. Lookups
	// try "<prefix>_in_<id>" first, then "<prefix>_out_<id>".
	// Default: "transferModel"
	KeyPrefix string `yaml:"key_prefix"`

	// =========================================================================
	// REPORT SCHEMA SETTINGS
	// =========================================================================

	// RequiredColumn is the column holding the transfer identifier used as
	// the lookup key. Matched exactly, case-sensitive.
	// Default: "Transfer ID"
	RequiredColumn string `yaml:"required_column"`

	// OutputColumn is the column appended to every data row with the
	// resolved home transaction id (or a sentinel).
	// Default: "Home Transaction ID"
	OutputColumn string `yaml:"output_column"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ProgressInterval is the row cadence for progress callbacks: a
	// "processing" update fires every Nth row and on the final row.
	// Default: 10
	ProgressInterval int `yaml:"progress_interval"`

	// ContinueOnError determines whether a fatal error in one input file
	// stops the batch or only that file.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// OutputNameFormat defines the enriched output file name.
	// Placeholders:
	//   {name}      - Input file base name without extension
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "{name}_enriched_{timestamp}.csv"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration from a YAML file, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Booleans that default to true are seeded before unmarshalling, since
	// an absent key and an explicit false are indistinguishable afterwards.
	cfg := Config{ContinueOnError: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every field at its default value.
// Used when no config file is present.
func Default() *Config {
	cfg := &Config{ContinueOnError: true}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "./archive"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = Duration(5 * time.Second)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "transferModel"
	}
	if cfg.RequiredColumn == "" {
		cfg.RequiredColumn = "Transfer ID"
	}
	if cfg.OutputColumn == "" {
		cfg.OutputColumn = "Home Transaction ID"
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = 10
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{name}_enriched_{timestamp}.csv"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate rejects configurations the pipeline cannot run with.
func validate(cfg *Config) error {
	if cfg.ProgressInterval < 1 {
		return fmt.Errorf("progress_interval must be at least 1, got %d", cfg.ProgressInterval)
	}
	if cfg.ConnectTimeout < 0 {
		return fmt.Errorf("connect_timeout must not be negative")
	}
	if cfg.RequiredColumn == cfg.OutputColumn {
		return fmt.Errorf("required_column and output_column must differ, both are %q", cfg.RequiredColumn)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	return nil
}
