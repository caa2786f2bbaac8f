package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Level   string `mapstructure:"level"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for various commands
type DefaultsConfig struct {
	// Streaming defaults
	SampleSize int `mapstructure:"sample_size"`
	MaxLines   int `mapstructure:"max_lines"`

	// Analysis defaults
	ClusterThreshold int    `mapstructure:"cluster_threshold"`
	MaxClusters      int    `mapstructure:"max_clusters"`
	PatternsFile     string `mapstructure:"patterns_file"`
	PatternStore     string `mapstructure:"pattern_store"`

	// Batch defaults
	Workers int `mapstructure:"workers"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "ndjson",
		Level:   "info",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			SampleSize:       100,
			MaxLines:         0,
			ClusterThreshold: 5,
			MaxClusters:      20,
			Workers:          4,
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.logsift.yaml or ./.logsift.yml
// 2. ~/.logsift.yaml or ~/.logsift.yml
// 3. $XDG_CONFIG_HOME/logsift/config.yaml (or ~/.config/logsift/config.yaml)
// 4. /etc/logsift/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	configFile := findConfigFile()
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}

		if err := v.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".logsift.yaml", ".logsift.yml", "logsift.yaml", "logsift.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	// Search locations in order of precedence (highest first)
	var searchPaths []string

	cwd, err := os.Getwd()
	if err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}

	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "logsift"))
	}

	searchPaths = append(searchPaths, "/etc/logsift")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// Also check for config.yaml in subdirs
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGSIFT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOGSIFT_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOGSIFT_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("LOGSIFT_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("LOGSIFT_PATTERNS_FILE"); v != "" {
		cfg.Defaults.PatternsFile = v
	}
	if v := os.Getenv("LOGSIFT_PATTERN_STORE"); v != "" {
		cfg.Defaults.PatternStore = v
	}
	if v := os.Getenv("LOGSIFT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Defaults.Workers = n
		}
	}
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
