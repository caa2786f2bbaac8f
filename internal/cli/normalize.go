package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/filter"
	"github.com/mzorec/logsift/internal/output"
	"github.com/mzorec/logsift/internal/pipeline"
)

// NormalizeCmd converts a log file into canonical JSON Lines on stdout.
type NormalizeCmd struct {
	File     string `arg:"" required:"" help:"Log file to normalize"`
	MaxLines int    `help:"Stop after N input lines (0 = unlimited)"`
	Sample   int    `help:"Detection sample size (default 100)"`
	Pattern  string `short:"p" help:"Only emit records whose message matches this regex"`
	Exclude  string `short:"x" help:"Drop records whose message matches this regex"`
	Service  string `help:"Only emit records from this service (trailing * for prefix match)"`
}

// Run executes the normalize command
func (c *NormalizeCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	chain, err := buildFilterChain(globals, c.Pattern, c.Exclude, c.Service)
	if err != nil {
		return c.outputError(globals, "BAD_FILTER", err.Error())
	}

	writer := output.NewNDJSONWriter(globals.Stdout)
	textWriter := output.NewTextWriter(globals.Stdout)

	opts := pipeline.Options{
		MaxLines:   c.MaxLines,
		SampleSize: c.Sample,
		OnRecord: func(r *domain.Record) {
			if !chain.Match(r) {
				return
			}
			if globals.Format == "ndjson" {
				writer.WriteRecord(r)
			} else {
				textWriter.WriteRecord(r)
			}
		},
		OnError: func(err error, lineNumber int, rawLine string) {
			if globals.Quiet {
				return
			}
			if globals.Format == "ndjson" {
				writer.WriteLineError(lineNumber, rawLine, err.Error())
			} else {
				fmt.Fprintf(globals.Stderr, "line %d: %v\n", lineNumber, err)
			}
		},
	}

	coord := pipeline.New(newPipelineLogger(globals), nil)
	result, err := coord.ParseFile(ctx, c.File, opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.outputError(globals, "FILE_NOT_FOUND", fmt.Sprintf("cannot open file: %s", err))
		}
		return c.outputError(globals, "PARSE_FAILED", err.Error())
	}

	if !globals.Quiet {
		summary := &output.SummaryOutput{
			File:       c.File,
			Format:     result.Detection.Format,
			Confidence: result.Detection.Confidence,
			TotalLines: result.TotalLines,
			Successful: result.Successful,
			Failed:     result.Failed,
		}
		if globals.Format == "ndjson" {
			writer.WriteSummary(summary)
		} else {
			textWriter.WriteSummary(summary)
		}
	}

	return nil
}

func (c *NormalizeCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}

// buildFilterChain assembles the record filters shared by normalize and ui.
func buildFilterChain(globals *Globals, pattern, exclude, service string) (*filter.Chain, error) {
	chain := filter.NewChain()

	if globals.Level != "" && globals.Level != string(domain.LevelTrace) {
		chain.Add(filter.NewLevelFilter(domain.Level(globals.Level)))
	}
	if pattern != "" {
		f, err := filter.NewRegexFilter(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		chain.Add(f)
	}
	if exclude != "" {
		f, err := filter.NewExcludeFilter(exclude)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
		chain.Add(f)
	}
	if service != "" {
		chain.Add(filter.NewServiceFilter([]string{service}))
	}

	return chain, nil
}
