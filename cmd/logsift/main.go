package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mzorec/logsift/internal/cli"
	"github.com/mzorec/logsift/internal/config"
)

const quickStart = `logsift - multi-format log normalization and triage

START HERE (this is the command you want):
  logsift normalize app.log > app.jsonl

Other useful commands:
  logsift detect app.log                Report the detected format
  logsift analyze app.log               Find known issues and recurring patterns
  logsift batch ./logs -o ./out         Normalize and analyze a directory
  logsift demo                          Run against built-in samples
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	ctx := kong.Parse(&c,
		kong.Name("logsift"),
		kong.Description("logsift: normalize heterogeneous log files into canonical JSON Lines\n\nSTART HERE: logsift normalize <file>"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
