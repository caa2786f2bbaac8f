package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mzorec/logsift/internal/analyze"
	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/output"
	"github.com/mzorec/logsift/internal/pipeline"
)

// AnalyzeCmd scans a log file for known issues and recurring patterns.
type AnalyzeCmd struct {
	File             string `arg:"" required:"" help:"Log file to analyze"`
	Patterns         string `help:"YAML file with detection patterns (defaults to built-in set)"`
	ClusterThreshold int    `help:"Minimum repeats for a line template to surface (default 5)"`
	MaxClusters      int    `help:"Maximum clusters to report (default 20)"`
	PersistPatterns  bool   `help:"Save line templates for future runs (marks new vs known)"`
	PatternStore     string `help:"Custom template store path (default: ~/.logsift/patterns.json)"`
	MaxLines         int    `help:"Stop after N input lines (0 = unlimited)"`
}

// Run executes the analyze command
func (c *AnalyzeCmd) Run(globals *Globals) error {
	content, err := os.ReadFile(c.File)
	if err != nil {
		return c.outputError(globals, "FILE_NOT_FOUND", fmt.Sprintf("cannot open file: %s", err))
	}

	patterns, err := c.loadPatterns(globals)
	if err != nil {
		return c.outputError(globals, "BAD_PATTERNS", err.Error())
	}

	coord := pipeline.New(newPipelineLogger(globals), nil)
	result, err := coord.ParseFile(context.Background(), c.File, pipeline.Options{MaxLines: c.MaxLines})
	if err != nil {
		return c.outputError(globals, "PARSE_FAILED", err.Error())
	}

	analyzer := analyze.NewAnalyzer(newPipelineLogger(globals), c.analyzerOptions(globals)...)
	analysis := analyzer.Analyze(c.File, string(content), result.Records, patterns)

	var annotated []analyze.AnnotatedCluster
	if c.PersistPatterns {
		store := analyze.NewTemplateStore(c.storePath(globals))
		if err := store.Load(); err != nil {
			globals.Debug("Failed to load template store: %v", err)
		}
		annotated = store.RecordClusters(analysis.Clusters)
		if err := store.Save(); err != nil {
			globals.Debug("Failed to save template store: %v", err)
		}
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteAnalysis(analysis, annotated)
	}

	reporter := output.NewReporter(globals.Stdout)
	if err := reporter.WriteFileReport(analysis); err != nil {
		return err
	}
	if c.PersistPatterns {
		for _, ac := range annotated {
			status := "[NEW]"
			if !ac.IsNew {
				status = "[KNOWN]"
			}
			fmt.Fprintf(globals.Stdout, "  %s (%dx) %s\n", status, ac.Count, ac.Pattern)
		}
	}
	return nil
}

func (c *AnalyzeCmd) loadPatterns(globals *Globals) ([]domain.DetectionPattern, error) {
	path := c.Patterns
	if path == "" && globals.Config != nil {
		path = globals.Config.Defaults.PatternsFile
	}
	if path == "" {
		return analyze.DefaultPatterns(), nil
	}
	return analyze.LoadPatterns(path)
}

func (c *AnalyzeCmd) analyzerOptions(globals *Globals) []analyze.Option {
	threshold := c.ClusterThreshold
	maxClusters := c.MaxClusters
	if globals.Config != nil {
		if threshold == 0 {
			threshold = globals.Config.Defaults.ClusterThreshold
		}
		if maxClusters == 0 {
			maxClusters = globals.Config.Defaults.MaxClusters
		}
	}

	var opts []analyze.Option
	if threshold > 0 {
		opts = append(opts, analyze.WithClusterThreshold(threshold))
	}
	if maxClusters > 0 {
		opts = append(opts, analyze.WithMaxClusters(maxClusters))
	}
	return opts
}

func (c *AnalyzeCmd) storePath(globals *Globals) string {
	if c.PatternStore != "" {
		return c.PatternStore
	}
	if globals.Config != nil {
		return globals.Config.Defaults.PatternStore
	}
	return ""
}

func (c *AnalyzeCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}
