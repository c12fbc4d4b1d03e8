package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/tidydir/internal/classify"
)

// HistoryConfig represents operation history configuration
type HistoryConfig struct {
	// Enabled enables recording of completed operations
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// KeepDays is the number of days to keep recorded operations (0 = forever)
	KeepDays int `yaml:"keep_days"`
}

// RuleConfig represents one custom classification rule. Custom rules
// extend the type mode's table; higher priorities are matched first.
type RuleConfig struct {
	Category   string   `yaml:"category"`
	Extensions []string `yaml:"extensions"`
	Priority   int      `yaml:"priority"`
}

// Config represents tidydir configuration options
type Config struct {
	// MaxDepth bounds how deep scans enumerate (0 = root only)
	MaxDepth int `yaml:"max_depth"`

	// Recursive enables descending into sub-folders
	Recursive bool `yaml:"recursive"`

	// Mode selects the grouping policy (content, type, date)
	Mode string `yaml:"mode"`

	// Transfer selects how files reach their destinations (move, copy)
	Transfer string `yaml:"transfer"`

	// ExcludeDirs are directory names skipped in addition to the built-in set
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where logs will be written
	LogDir string `yaml:"log_dir"`

	// History contains operation history configuration
	History HistoryConfig `yaml:"history"`

	// Rules are custom classification rules for the type mode
	Rules []RuleConfig `yaml:"rules"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:  3,
		Recursive: true,
		Mode:      "content",
		Transfer:  "move",
		LogLevel:  "info",
		LogDir:    ".tidydir/logs",
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   ".tidydir/history.db",
			KeepDays: 90,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A raw map tells apart "absent" from "set to the zero value" for
	// keys whose defaults are not the zero value (recursive, max_depth).
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, exists := rawMap["max_depth"]; exists {
		cfg.MaxDepth = yamlCfg.MaxDepth
	}
	if _, exists := rawMap["recursive"]; exists {
		cfg.Recursive = yamlCfg.Recursive
	}
	if yamlCfg.Mode != "" {
		cfg.Mode = yamlCfg.Mode
	}
	if yamlCfg.Transfer != "" {
		cfg.Transfer = yamlCfg.Transfer
	}
	if len(yamlCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if len(yamlCfg.Rules) > 0 {
		cfg.Rules = yamlCfg.Rules
	}

	// Merge the history section only when it was provided at all.
	if historySection, exists := rawMap["history"]; exists && historySection != nil {
		history := yamlCfg.History
		historyMap, _ := historySection.(map[string]interface{})

		if _, exists := historyMap["enabled"]; exists {
			cfg.History.Enabled = history.Enabled
		}
		if _, exists := historyMap["db_path"]; exists {
			cfg.History.DBPath = history.DBPath
		}
		if _, exists := historyMap["keep_days"]; exists {
			cfg.History.KeepDays = history.KeepDays
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .tidydir/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".tidydir", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(maxDepth *int, recursive *bool, mode *string, transfer *string, logDir *string) {
	if maxDepth != nil {
		c.MaxDepth = *maxDepth
	}
	if recursive != nil {
		c.Recursive = *recursive
	}
	if mode != nil {
		c.Mode = *mode
	}
	if transfer != nil {
		c.Transfer = *transfer
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// ToRules converts configured custom rules into classifier rules.
func (c *Config) ToRules() []classify.Rule {
	if len(c.Rules) == 0 {
		return nil
	}
	rules := make([]classify.Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, classify.Rule{
			Category:   r.Category,
			Extensions: r.Extensions,
			Priority:   r.Priority,
		})
	}
	return rules
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	validModes := map[string]bool{
		"content": true,
		"type":    true,
		"date":    true,
	}
	if !validModes[c.Mode] {
		return fmt.Errorf("invalid mode %q, must be one of: content, type, date", c.Mode)
	}

	validTransfers := map[string]bool{
		"move": true,
		"copy": true,
	}
	if !validTransfers[c.Transfer] {
		return fmt.Errorf("invalid transfer %q, must be one of: move, copy", c.Transfer)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepDays < 0 {
			return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
		}
	}

	for i, rule := range c.Rules {
		if err := classify.ValidateCategory(rule.Category); err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
		if len(rule.Extensions) == 0 {
			return fmt.Errorf("rules[%d] (%s): extensions cannot be empty", i, rule.Category)
		}
		for _, ext := range rule.Extensions {
			if ext == "" {
				return fmt.Errorf("rules[%d] (%s): extension cannot be empty", i, rule.Category)
			}
			if ext[0] == '.' {
				return fmt.Errorf("rules[%d] (%s): extension %q must not include the dot", i, rule.Category, ext)
			}
		}
	}

	return nil
}
