// Package config defines the harness run configuration: where the external
// tools and test fixtures live, tool tuning values, and the optional
// coverage and history settings.
//
// Configuration is read from an optional YAML file layered over built-in
// defaults; command-line flags override both. Parsing is strict, so a typo
// in a field name fails loudly instead of silently keeping a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Coverage configures the optional lcov bracketing around a run.
type Coverage struct {
	// Enabled turns coverage collection on. Collection failures never
	// fail a run; the tools under test may be built without coverage
	// instrumentation.
	Enabled bool `yaml:"enabled"`

	// OutputFile is the tracefile written after a successful run,
	// relative to the base directory.
	OutputFile string `yaml:"output_file"`

	// SourceDir is the instrumented source tree handed to lcov
	// --directory, relative to the base directory.
	SourceDir string `yaml:"source_dir"`

	// Exclude lists path patterns stripped from the captured tracefile.
	Exclude []string `yaml:"exclude"`
}

// Config is the full harness run configuration.
type Config struct {
	// BaseDir is the directory holding the inputs/ and golden_outputs/
	// trees. Every external tool runs with this as its working
	// directory, so the relative paths inside generated documents
	// resolve against it.
	BaseDir string `yaml:"base_dir"`

	// BinDir locates the native tool binaries. Relative values resolve
	// against BaseDir at execution time.
	BinDir string `yaml:"bin_dir"`

	// Java is the JVM launcher for the java-driven catalog entries.
	Java string `yaml:"java"`

	// Classpath, when set, is passed to the JVM launcher via -cp.
	// Empty means the launcher's own CLASSPATH environment applies.
	Classpath string `yaml:"classpath"`

	// LoadSegmentSize is the buffer segment size stamped into every
	// generated loader document.
	LoadSegmentSize int64 `yaml:"load_segment_size"`

	// QuerySegmentSize is the buffer segment size passed to the native
	// query tool.
	QuerySegmentSize int64 `yaml:"query_segment_size"`

	// HistoryDB is the SQLite run-history database path. Empty disables
	// history recording.
	HistoryDB string `yaml:"history_db"`

	// KeepWorkspace keeps the scratch directory even after a successful
	// run.
	KeepWorkspace bool `yaml:"keep_workspace"`

	// Coverage configures lcov bracketing.
	Coverage Coverage `yaml:"coverage"`
}

// Default returns the built-in configuration. The values match a checkout
// where the harness runs from the tests directory with the tool binaries
// one level up.
func Default() Config {
	return Config{
		BaseDir:          ".",
		BinDir:           "../bin",
		Java:             "java",
		LoadSegmentSize:  40,
		QuerySegmentSize: 40,
		Coverage: Coverage{
			Enabled:    true,
			OutputFile: "coverage.info",
			SourceDir:  "../",
			Exclude:    []string{"/opt*", "/usr*", "dependencies*"},
		},
	}
}

// Load reads a YAML configuration file layered over the defaults.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails validation. An empty file yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are present and valid.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.BinDir == "" {
		return fmt.Errorf("bin_dir is required")
	}
	if c.Java == "" {
		return fmt.Errorf("java is required")
	}
	if c.LoadSegmentSize <= 0 {
		return fmt.Errorf("load_segment_size must be positive")
	}
	if c.QuerySegmentSize <= 0 {
		return fmt.Errorf("query_segment_size must be positive")
	}
	if c.Coverage.Enabled {
		if c.Coverage.OutputFile == "" {
			return fmt.Errorf("coverage.output_file is required when coverage is enabled")
		}
		if c.Coverage.SourceDir == "" {
			return fmt.Errorf("coverage.source_dir is required when coverage is enabled")
		}
	}
	return nil
}
