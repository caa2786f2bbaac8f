// Package pipeline drives the single-pass normalization of one log file:
// sample, detect, select a parser, stream the lines, reassemble multi-line
// stack traces, and emit normalized records in line order.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/mzorec/logsift/internal/detect"
	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/parse"
)

// ErrUnknownFormat is returned when no format scorer produced a positive
// signal. Fatal per file; the caller decides skip-vs-abort.
var ErrUnknownFormat = errors.New("unable to detect log format")

// Options tunes one ParseFile/ParseStream call.
type Options struct {
	// MaxLines stops consuming input once exceeded (0 = unlimited). It is the
	// only cooperative cancellation point besides the context.
	MaxLines int
	// SampleSize bounds the detection sample (default detect.MaxSampleLines).
	SampleSize int
	// OnRecord is invoked per emitted record, in strictly increasing
	// line-number order. Optional.
	OnRecord func(*domain.Record)
	// OnError is invoked per recoverable line failure. Optional.
	OnError func(err error, lineNumber int, rawLine string)
}

// Result summarizes one file pass.
type Result struct {
	File       string                 `json:"file"`
	Detection  domain.DetectionResult `json:"detection"`
	TotalLines int                    `json:"totalLines"`
	Successful int                    `json:"successfulLogs"`
	Failed     int                    `json:"failedLines"`
	Records    []*domain.Record       `json:"-"`
}

// Coordinator owns no per-file state; each Parse call is self-contained, so
// independent files may be processed from concurrent goroutines.
type Coordinator struct {
	detector *detect.Detector
	clock    clock.Clock
	logger   *zap.Logger
}

// New creates a Coordinator. Nil logger and clock fall back to no-op and
// wall-clock respectively.
func New(logger *zap.Logger, clk clock.Clock) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Coordinator{
		detector: detect.New(logger),
		clock:    clk,
		logger:   logger,
	}
}

// ParseFile streams one file through detection and parsing. The file's base
// name becomes the default service identifier.
func (c *Coordinator) ParseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	result, err := c.ParseStream(ctx, f, serviceName(path), opts)
	if result != nil {
		result.File = path
	}
	return result, err
}

// ParseStream runs the pipeline over a line-oriented reader. The stream is
// consumed exactly once: the detection sample is buffered and replayed into
// the parsing pass, so memory stays bounded by the sample plus one in-flight
// record.
func (c *Coordinator) ParseStream(ctx context.Context, r io.Reader, service string, opts Options) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sampleLimit := opts.SampleSize
	if sampleLimit <= 0 || sampleLimit > detect.MaxSampleLines {
		sampleLimit = detect.MaxSampleLines
	}
	if opts.MaxLines > 0 && opts.MaxLines < sampleLimit {
		sampleLimit = opts.MaxLines
	}

	var sample []string
	for len(sample) < sampleLimit && scanner.Scan() {
		sample = append(sample, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}

	detection := c.detector.Detect(sample)
	result := &Result{Detection: detection}
	if detection.Format == domain.FormatUnknown {
		err := fmt.Errorf("%w: %s", ErrUnknownFormat, firstReason(detection))
		if opts.OnError != nil {
			opts.OnError(err, 0, "")
		}
		return result, err
	}

	parser, err := parse.ForFormat(detection.Format)
	if err != nil {
		return result, err
	}

	c.logger.Debug("format selected",
		zap.String("service", service),
		zap.String("format", string(detection.Format)),
		zap.Float64("confidence", detection.Confidence))

	run := &fileRun{
		coordinator: c,
		parser:      parser,
		parseCtx:    &parse.Context{Service: service},
		opts:        opts,
		result:      result,
		// Only the renderer format needs one-record lookahead; other
		// formats handle their continuation semantics inside the parser.
		lookahead: detection.Format == domain.FormatRenderer,
	}

	for _, line := range sample {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		run.line(line)
	}
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.MaxLines > 0 && result.TotalLines >= opts.MaxLines {
			break
		}
		run.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read stream: %w", err)
	}

	run.finish()
	return result, nil
}

// fileRun holds the per-file streaming state, including the explicit
// two-state lookahead machine (pending record vs. ready to emit) used for
// stack trace reassembly.
type fileRun struct {
	coordinator *Coordinator
	parser      parse.Parser
	parseCtx    *parse.Context
	opts        Options
	result      *Result

	lookahead bool
	pending   *domain.Record
}

func (f *fileRun) line(raw string) {
	f.result.TotalLines++
	lineNumber := f.result.TotalLines

	record, err := f.parser.ParseLine(raw, f.parseCtx)
	if err != nil {
		f.result.Failed++
		f.coordinator.logger.Debug("line parse failed",
			zap.Int("line", lineNumber), zap.Error(err))
		if f.opts.OnError != nil {
			f.opts.OnError(err, lineNumber, raw)
		}
		return
	}
	if record == nil {
		// Continuation line, consumed into the context.
		return
	}
	record.LineNumber = lineNumber

	if !f.lookahead {
		f.emit(record)
		return
	}

	// A new primary line finalizes the pending record: any continuation
	// lines seen since it arrived belong to it, not to the new record.
	if f.pending != nil {
		f.attachStack(f.pending)
		f.emit(f.pending)
	} else {
		// Orphan continuations before the first primary line have no record
		// to belong to.
		f.parseCtx.Reset()
	}
	f.pending = record
}

// finish flushes the lookahead state at end of stream. A record mid-assembly
// either completes here or was never started; it is never left half-built.
func (f *fileRun) finish() {
	if f.pending != nil {
		f.attachStack(f.pending)
		f.emit(f.pending)
		f.pending = nil
	}
}

func (f *fileRun) emit(record *domain.Record) {
	record.ParseTime = f.coordinator.clock.Now()
	f.result.Successful++
	f.result.Records = append(f.result.Records, record)
	if f.opts.OnRecord != nil {
		f.opts.OnRecord(record)
	}
}

// attachStack moves accumulated continuation lines onto the record being
// finalized. This is the one sanctioned post-creation mutation of a record.
func (f *fileRun) attachStack(record *domain.Record) {
	if len(f.parseCtx.StackLines) == 0 {
		return
	}
	if record.Error == nil {
		record.Error = &domain.ErrorInfo{}
	}
	if record.Error.Stack == "" {
		record.Error.Stack = parse.JoinStack(f.parseCtx.StackLines)
	}
	record.Error.Frames = parse.ParseFrames(f.parseCtx.StackLines)
	f.parseCtx.Reset()
}

func serviceName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}

func firstReason(d domain.DetectionResult) string {
	if len(d.Reasons) > 0 {
		return d.Reasons[0]
	}
	return "no structural signals"
}
