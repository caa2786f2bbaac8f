package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	embedfiles "github.com/mzorec/logsift"
	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/output"
	"github.com/mzorec/logsift/internal/pipeline"
)

// DemoCmd runs the full pipeline against one embedded sample per format.
type DemoCmd struct {
	Only string `help:"Run a single sample (renderer, http, syncapp, performance, mountapp)"`
}

// Run executes the demo command
func (c *DemoCmd) Run(globals *Globals) error {
	entries, err := embedfiles.Samples.ReadDir("samples")
	if err != nil {
		return c.outputError(globals, "SAMPLES_MISSING", err.Error())
	}

	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".log")
		if c.Only != "" && name != c.Only {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return c.outputError(globals, "UNKNOWN_SAMPLE", fmt.Sprintf("no sample named %q", c.Only))
	}
	sort.Strings(names)

	coord := pipeline.New(newPipelineLogger(globals), nil)
	writer := output.NewNDJSONWriter(globals.Stdout)
	textWriter := output.NewTextWriter(globals.Stdout)

	for _, name := range names {
		data, err := embedfiles.Samples.ReadFile("samples/" + name)
		if err != nil {
			return c.outputError(globals, "SAMPLES_MISSING", err.Error())
		}

		if globals.Format == "text" {
			fmt.Fprintf(globals.Stdout, "\n== %s ==\n", name)
		}

		service := strings.TrimSuffix(name, ".log")
		opts := pipeline.Options{
			OnRecord: func(r *domain.Record) {
				if globals.Format == "ndjson" {
					writer.WriteRecord(r)
				} else {
					textWriter.WriteRecord(r)
				}
			},
		}
		result, err := coord.ParseStream(context.Background(), strings.NewReader(string(data)), service, opts)
		if err != nil {
			return c.outputError(globals, "DEMO_FAILED", fmt.Sprintf("%s: %v", name, err))
		}

		if !globals.Quiet {
			summary := &output.SummaryOutput{
				File:       name,
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
	}

	return nil
}

func (c *DemoCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}
