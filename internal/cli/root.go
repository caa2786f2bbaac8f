package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mzorec/logsift/internal/config"
)

// CLI is the root command structure for logsift
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"ndjson" enum:"ndjson,text" help:"Output format"`
	Level   string `short:"l" default:"TRACE" enum:"TRACE,DEBUG,INFO,WARN,ERROR,FATAL,CRITICAL" help:"Minimum level to emit"`
	Quiet   bool   `short:"q" help:"Suppress non-record output (only emit normalized records)"`
	Verbose bool   `short:"v" help:"Show debug output (detection scores, parser state)"`

	// Commands
	Normalize NormalizeCmd `cmd:"" default:"withargs" help:"Normalize a log file into canonical JSON Lines"`
	Detect    DetectCmd    `cmd:"" help:"Detect the format of a log file"`
	Analyze   AnalyzeCmd   `cmd:"" help:"Scan a log file for known issues and recurring patterns"`
	Batch     BatchCmd     `cmd:"" help:"Normalize and analyze a directory of log files"`
	Demo      DemoCmd      `cmd:"" help:"Run the pipeline against built-in sample lines"`
	UI        UICmd        `cmd:"" help:"Interactive TUI record browser"`
	Config    ConfigCmd    `cmd:"" help:"Show or manage configuration"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Level   string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return &Globals{
		Format:  cli.Format,
		Level:   cli.Level,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  config.Default(),
	}
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  cli.Format,
		Level:   cli.Level,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}

	// Apply config values if CLI flags weren't explicitly set
	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	return g
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		io.WriteString(globals.Stdout, `{"type":"version","version":"`+Version+`","commit":"`+Commit+`"}`+"\n")
	} else {
		io.WriteString(globals.Stdout, "logsift version "+Version+" ("+Commit+")\n")
	}
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
