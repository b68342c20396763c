package similarity

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the tunable thresholds of the similarity engine and the
// overlap classifier. The defaults were chosen empirically on the Permahub
// seed set and are not contracts.
type Config struct {
	// ContentFlagThreshold flags a pair whose content similarity exceeds it
	// Default: 0.3
	ContentFlagThreshold float64 `yaml:"content_flag" json:"content_flag"`

	// SlugFlagThreshold flags a pair whose slug similarity exceeds it.
	// Either signal alone flags the pair.
	// Default: 0.6
	SlugFlagThreshold float64 `yaml:"slug_flag" json:"slug_flag"`

	// CriticalThreshold marks a flagged pair Critical when content
	// similarity exceeds it
	// Default: 0.5
	CriticalThreshold float64 `yaml:"critical" json:"critical"`

	// WarningThreshold marks a flagged pair Warning when content similarity
	// exceeds it (and it is not Critical)
	// Default: 0.4
	WarningThreshold float64 `yaml:"warning" json:"warning"`

	// SlugContainmentScore is the slug score given when one year-stripped
	// slug contains the other. Fixed, not proportional to length.
	// Default: 0.8
	SlugContainmentScore float64 `yaml:"slug_containment" json:"slug_containment"`

	// MinSignificantLength is the minimum rune length of a word that takes
	// part in content similarity
	// Default: 5 (words longer than 4 characters)
	MinSignificantLength int `yaml:"min_significant_length" json:"min_significant_length"`
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		ContentFlagThreshold: 0.3,
		SlugFlagThreshold:    0.6,
		CriticalThreshold:    0.5,
		WarningThreshold:     0.4,
		SlugContainmentScore: 0.8,
		MinSignificantLength: 5,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	ratios := []struct {
		name  string
		value float64
	}{
		{"content_flag", c.ContentFlagThreshold},
		{"slug_flag", c.SlugFlagThreshold},
		{"critical", c.CriticalThreshold},
		{"warning", c.WarningThreshold},
		{"slug_containment", c.SlugContainmentScore},
	}
	for _, r := range ratios {
		if r.value < 0.0 || r.value > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0 (got %.2f)", r.name, r.value)
		}
	}
	if c.WarningThreshold > c.CriticalThreshold {
		return fmt.Errorf("warning (%.2f) must not exceed critical (%.2f)",
			c.WarningThreshold, c.CriticalThreshold)
	}
	if c.MinSignificantLength < 1 {
		return fmt.Errorf("min_significant_length must be positive (got %d)", c.MinSignificantLength)
	}
	if c.MinSignificantLength > 50 {
		return fmt.Errorf("min_significant_length too large (got %d, max 50)", c.MinSignificantLength)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{ContentFlag: %.2f, SlugFlag: %.2f, Critical: %.2f, Warning: %.2f, "+
			"SlugContainment: %.2f, MinWordLen: %d}",
		c.ContentFlagThreshold, c.SlugFlagThreshold, c.CriticalThreshold, c.WarningThreshold,
		c.SlugContainmentScore, c.MinSignificantLength,
	)
}

// ApplyEnv overrides c with environment variables and validates the result.
//
// Environment variables:
//   - SEEDAUDIT_CONTENT_THRESHOLD: content similarity that flags a pair (default: 0.3)
//   - SEEDAUDIT_SLUG_THRESHOLD: slug similarity that flags a pair (default: 0.6)
//   - SEEDAUDIT_CRITICAL_THRESHOLD: content similarity for Critical (default: 0.5)
//   - SEEDAUDIT_WARNING_THRESHOLD: content similarity for Warning (default: 0.4)
//   - SEEDAUDIT_SLUG_CONTAINMENT: score for contained slugs (default: 0.8)
//   - SEEDAUDIT_MIN_WORD_LENGTH: minimum significant word length (default: 5)
func (c Config) ApplyEnv() (Config, error) {
	if err := parseEnvFloat("SEEDAUDIT_CONTENT_THRESHOLD", &c.ContentFlagThreshold); err != nil {
		return c, err
	}
	if err := parseEnvFloat("SEEDAUDIT_SLUG_THRESHOLD", &c.SlugFlagThreshold); err != nil {
		return c, err
	}
	if err := parseEnvFloat("SEEDAUDIT_CRITICAL_THRESHOLD", &c.CriticalThreshold); err != nil {
		return c, err
	}
	if err := parseEnvFloat("SEEDAUDIT_WARNING_THRESHOLD", &c.WarningThreshold); err != nil {
		return c, err
	}
	if err := parseEnvFloat("SEEDAUDIT_SLUG_CONTAINMENT", &c.SlugContainmentScore); err != nil {
		return c, err
	}
	if err := parseEnvInt("SEEDAUDIT_MIN_WORD_LENGTH", &c.MinSignificantLength); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return c, nil
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults
func ConfigFromEnv() (Config, error) {
	return DefaultConfig().ApplyEnv()
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
