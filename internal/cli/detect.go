package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mzorec/logsift/internal/detect"
	"github.com/mzorec/logsift/internal/output"
)

// DetectCmd reports the detected format of a log file without parsing it.
type DetectCmd struct {
	File   string `arg:"" required:"" help:"Log file to inspect"`
	Sample int    `default:"100" help:"Number of head lines to sample"`
}

// Run executes the detect command
func (c *DetectCmd) Run(globals *Globals) error {
	file, err := os.Open(c.File)
	if err != nil {
		return c.outputError(globals, "FILE_NOT_FOUND", fmt.Sprintf("cannot open file: %s", err))
	}
	defer func() {
		if err := file.Close(); err != nil {
			globals.Debug("Failed to close file: %v", err)
		}
	}()

	limit := c.Sample
	if limit <= 0 || limit > detect.MaxSampleLines {
		limit = detect.MaxSampleLines
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sample []string
	for len(sample) < limit && scanner.Scan() {
		sample = append(sample, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return c.outputError(globals, "READ_ERROR", fmt.Sprintf("error reading file: %s", err))
	}

	detector := detect.New(newPipelineLogger(globals))
	result := detector.Detect(sample)

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteDetection(c.File, result)
	}

	fmt.Fprintf(globals.Stdout, "File:       %s\n", c.File)
	fmt.Fprintf(globals.Stdout, "Format:     %s\n", result.Format)
	fmt.Fprintf(globals.Stdout, "Confidence: %.2f\n", result.Confidence)
	if len(result.Reasons) > 0 {
		fmt.Fprintln(globals.Stdout, "Signals:")
		for _, reason := range result.Reasons {
			fmt.Fprintf(globals.Stdout, "  - %s\n", reason)
		}
	}
	return nil
}

func (c *DetectCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}
