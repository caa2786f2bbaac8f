package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mzorec/logsift/internal/analyze"
	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/output"
	"github.com/mzorec/logsift/internal/pipeline"
)

// BatchCmd normalizes and analyzes every log file in a directory. Files whose
// format cannot be detected are skipped and reported; other files still
// complete.
type BatchCmd struct {
	Dir      string `arg:"" required:"" help:"Directory of log files"`
	Glob     string `default:"*.log" help:"Filename pattern to include"`
	Out      string `short:"o" help:"Write normalized JSON Lines per file into this directory"`
	Workers  int    `help:"Concurrent files (default from config)"`
	Patterns string `help:"YAML file with detection patterns (defaults to built-in set)"`
	MaxLines int    `help:"Stop after N input lines per file (0 = unlimited)"`
}

type batchResult struct {
	file     string
	analysis *domain.FileAnalysis
	summary  *output.SummaryOutput
	err      error
}

// Run executes the batch command
func (c *BatchCmd) Run(globals *Globals) error {
	files, err := c.listFiles()
	if err != nil {
		return c.outputError(globals, "DIR_NOT_FOUND", err.Error())
	}
	if len(files) == 0 {
		return c.outputError(globals, "NO_FILES", fmt.Sprintf("no files matching %q in %s", c.Glob, c.Dir))
	}

	patterns := analyze.DefaultPatterns()
	if c.Patterns != "" {
		patterns, err = analyze.LoadPatterns(c.Patterns)
		if err != nil {
			return c.outputError(globals, "BAD_PATTERNS", err.Error())
		}
	}

	if c.Out != "" {
		if err := os.MkdirAll(c.Out, 0o755); err != nil {
			return c.outputError(globals, "OUT_DIR", err.Error())
		}
	}

	workers := c.Workers
	if workers <= 0 && globals.Config != nil {
		workers = globals.Config.Defaults.Workers
	}
	if workers <= 0 {
		workers = 4
	}

	logger := newPipelineLogger(globals)
	coord := pipeline.New(logger, nil)
	analyzer := analyze.NewAnalyzer(logger)

	var mu sync.Mutex
	results := make([]batchResult, 0, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for _, file := range files {
		g.Go(func() error {
			res := c.processFile(ctx, coord, analyzer, patterns, file)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.outputError(globals, "BATCH_FAILED", err.Error())
	}

	// Workers finish out of order; restore input order for stable output.
	sort.Slice(results, func(i, j int) bool { return results[i].file < results[j].file })

	writer := output.NewNDJSONWriter(globals.Stdout)
	var analyses []*domain.FileAnalysis
	for _, res := range results {
		if res.err != nil {
			if globals.Format == "ndjson" {
				writer.WriteError("FILE_SKIPPED", res.err.Error(), res.file)
			} else {
				fmt.Fprintf(globals.Stderr, "Skipped %s: %v\n", res.file, res.err)
			}
			continue
		}
		if !globals.Quiet && globals.Format == "ndjson" {
			writer.WriteSummary(res.summary)
		}
		analyses = append(analyses, res.analysis)
	}

	if len(analyses) == 0 {
		return c.outputError(globals, "ALL_FILES_SKIPPED", "no file produced a usable analysis")
	}

	merged := analyzer.Merge(analyses)
	if globals.Format == "ndjson" {
		return writer.WriteArchive(merged)
	}
	return output.NewReporter(globals.Stdout).WriteArchiveReport(merged)
}

func (c *BatchCmd) processFile(ctx context.Context, coord *pipeline.Coordinator, analyzer *analyze.Analyzer, patterns []domain.DetectionPattern, file string) batchResult {
	res := batchResult{file: file}

	var out *output.NDJSONWriter
	if c.Out != "" {
		name := filepath.Base(file) + ".jsonl"
		f, err := os.Create(filepath.Join(c.Out, name))
		if err != nil {
			res.err = err
			return res
		}
		defer f.Close()
		out = output.NewNDJSONWriter(f)
	}

	opts := pipeline.Options{MaxLines: c.MaxLines}
	if out != nil {
		opts.OnRecord = func(r *domain.Record) { out.WriteRecord(r) }
	}

	result, err := coord.ParseFile(ctx, file, opts)
	if err != nil {
		res.err = err
		return res
	}

	content, err := os.ReadFile(file)
	if err != nil {
		res.err = err
		return res
	}

	res.analysis = analyzer.Analyze(file, string(content), result.Records, patterns)
	res.summary = &output.SummaryOutput{
		File:       file,
		Format:     result.Detection.Format,
		Confidence: result.Detection.Confidence,
		TotalLines: result.TotalLines,
		Successful: result.Successful,
		Failed:     result.Failed,
	}
	return res
}

func (c *BatchCmd) listFiles() ([]string, error) {
	info, err := os.Stat(c.Dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", c.Dir)
	}

	matches, err := filepath.Glob(filepath.Join(c.Dir, c.Glob))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (c *BatchCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}
