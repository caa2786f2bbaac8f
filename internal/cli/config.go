package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mzorec/logsift/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type":     "config",
			"format":   cfg.Format,
			"level":    cfg.Level,
			"quiet":    cfg.Quiet,
			"verbose":  cfg.Verbose,
			"defaults": cfg.Defaults,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  level:   %s\n", cfg.Level)
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Defaults:")
	fmt.Fprintf(globals.Stdout, "  sample_size:       %d\n", cfg.Defaults.SampleSize)
	fmt.Fprintf(globals.Stdout, "  max_lines:         %d\n", cfg.Defaults.MaxLines)
	fmt.Fprintf(globals.Stdout, "  cluster_threshold: %d\n", cfg.Defaults.ClusterThreshold)
	fmt.Fprintf(globals.Stdout, "  max_clusters:      %d\n", cfg.Defaults.MaxClusters)
	fmt.Fprintf(globals.Stdout, "  workers:           %d\n", cfg.Defaults.Workers)

	if cfg.Defaults.PatternsFile != "" {
		fmt.Fprintf(globals.Stdout, "  patterns_file:     %s\n", cfg.Defaults.PatternsFile)
	}
	if cfg.Defaults.PatternStore != "" {
		fmt.Fprintf(globals.Stdout, "  pattern_store:     %s\n", cfg.Defaults.PatternStore)
	}

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ~/.logsift.yaml")
		fmt.Fprintln(globals.Stdout, "  ./.logsift.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/logsift/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# logsift configuration file
# Place this file at ~/.logsift.yaml, ./.logsift.yaml, or ~/.config/logsift/config.yaml

# Output format: "ndjson" (default) or "text"
format: ndjson

# Diagnostic log level: debug, info, warn, error
level: info

# Suppress non-record output (summaries, warnings)
quiet: false

# Enable verbose/debug output
verbose: false

# Default values for commands
defaults:
  # Lines sampled from the head of each file for format detection
  sample_size: 100

  # Stop after this many input lines per file (0 = unlimited)
  max_lines: 0

  # Minimum repeats for a masked line template to surface as a cluster
  cluster_threshold: 5

  # Maximum clusters reported per analysis
  max_clusters: 20

  # Concurrent files for the batch command
  workers: 4

  # Custom detection patterns (YAML)
  # patterns_file: ~/.logsift/patterns.yaml

  # Where persisted line templates are stored
  # pattern_store: ~/.logsift/patterns.json
`

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
