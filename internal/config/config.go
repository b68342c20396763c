// Package config loads the seedaudit configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/permahub/seedaudit/internal/similarity"
)

// DefaultPath is the configuration file looked up in the working directory
const DefaultPath = ".seedaudit.yaml"

// Config is the configuration loaded from .seedaudit.yaml
type Config struct {
	// SeedFiles is the ordered list of seed files to analyze.
	// Order matters: the first record with a slug wins collisions.
	SeedFiles []string `yaml:"seed_files"`

	// ReportPath is where the JSON report is written, overwritten each run
	// Default: seed-analysis-report.json
	ReportPath string `yaml:"report_path"`

	// HistoryDB is the SQLite database recording past runs
	// Default: .seedaudit/history.db
	HistoryDB string `yaml:"history_db"`

	// Thresholds tune the similarity engine
	Thresholds similarity.Config `yaml:"thresholds"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		SeedFiles: []string{
			"supabase/seed_madeira_czech.sql",
			"supabase/seeds/004_real_verified_wiki_content.sql",
			"supabase/seeds/003_wiki_real_data_LOCATIONS_ONLY.sql",
			"supabase/seeds/004_future_events_seed.sql",
			"supabase/seeds/002_wiki_seed_data_madeira_EVENTS_LOCATIONS_ONLY.sql",
			"supabase/seeds/003_expanded_wiki_categories.sql",
			"supabase/seeds/006_comprehensive_global_seed_data.sql",
		},
		ReportPath: "seed-analysis-report.json",
		HistoryDB:  filepath.Join(".seedaudit", "history.db"),
		Thresholds: similarity.DefaultConfig(),
	}
}

// Load reads the configuration at path, filling unset fields from the
// defaults. A missing file yields DefaultConfig. Environment overrides are
// applied afterwards and the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides paths and thresholds from the environment.
//
// Environment variables:
//   - SEEDAUDIT_SEED_FILES: comma-separated seed file list
//   - SEEDAUDIT_REPORT_PATH: JSON report path
//   - SEEDAUDIT_HISTORY_DB: history database path
//   - SEEDAUDIT_* threshold variables, see similarity.Config.ApplyEnv
func (c *Config) applyEnv() error {
	if v := os.Getenv("SEEDAUDIT_SEED_FILES"); v != "" {
		c.SeedFiles = splitList(v)
	}
	if v := os.Getenv("SEEDAUDIT_REPORT_PATH"); v != "" {
		c.ReportPath = v
	}
	if v := os.Getenv("SEEDAUDIT_HISTORY_DB"); v != "" {
		c.HistoryDB = v
	}

	thresholds, err := c.Thresholds.ApplyEnv()
	if err != nil {
		return err
	}
	c.Thresholds = thresholds
	return nil
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	if c.ReportPath == "" {
		return fmt.Errorf("report_path must not be empty")
	}
	for i, f := range c.SeedFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("seed_files[%d] is empty", i)
		}
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

// SaveDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func SaveDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	header := "# seedaudit configuration\n# Seed files are analyzed in order; the first record with a slug wins.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
