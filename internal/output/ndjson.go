package output

import (
	"io"

	"encoding/json"

	"github.com/mzorec/logsift/internal/analyze"
	"github.com/mzorec/logsift/internal/domain"
)

// NDJSONWriter writes pipeline output as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep log text unescaped and avoid extra allocations
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// WriteRecord outputs a single normalized record as NDJSON. The object is
// exactly the canonical record shape; consumers rely on field order and
// omitted optionals staying stable.
func (w *NDJSONWriter) WriteRecord(r *domain.Record) error {
	return w.encoder.Encode(r)
}

// DetectionOutput wraps a format detection result
type DetectionOutput struct {
	Type          string                 `json:"type"` // Always "detection"
	SchemaVersion int                    `json:"schemaVersion"`
	File          string                 `json:"file"`
	Detection     domain.DetectionResult `json:"detection"`
}

// SummaryOutput reports per-file streaming counters
type SummaryOutput struct {
	Type          string        `json:"type"` // Always "summary"
	SchemaVersion int           `json:"schemaVersion"`
	File          string        `json:"file"`
	Format        domain.Format `json:"format"`
	Confidence    float64       `json:"confidence"`
	TotalLines    int           `json:"total_lines"`
	Successful    int           `json:"successful_logs"`
	Failed        int           `json:"failed_lines"`
}

// AnalysisOutput wraps a per-file analysis
type AnalysisOutput struct {
	Type          string                     `json:"type"` // Always "analysis"
	SchemaVersion int                        `json:"schemaVersion"`
	Analysis      *domain.FileAnalysis       `json:"analysis"`
	Annotated     []analyze.AnnotatedCluster `json:"annotated_clusters,omitempty"`
}

// ArchiveOutput wraps a merged multi-file analysis
type ArchiveOutput struct {
	Type          string                  `json:"type"` // Always "archive_analysis"
	SchemaVersion int                     `json:"schemaVersion"`
	Analysis      *domain.ArchiveAnalysis `json:"analysis"`
}

// ErrorOutput represents a fatal failure
type ErrorOutput struct {
	Type          string `json:"type"` // Always "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	File          string `json:"file,omitempty"`
}

// LineErrorOutput represents a recoverable per-line parse failure
type LineErrorOutput struct {
	Type          string `json:"type"` // Always "line_error"
	SchemaVersion int    `json:"schemaVersion"`
	Line          int    `json:"line"`
	RawLine       string `json:"rawLine"`
	Message       string `json:"message"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// MetadataOutput describes runtime/tool metadata
type MetadataOutput struct {
	Type          string `json:"type"` // Always "metadata"
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date,omitempty"`
}

// WriteDetection outputs a detection result
func (w *NDJSONWriter) WriteDetection(file string, d domain.DetectionResult) error {
	return w.encoder.Encode(&DetectionOutput{
		Type:          "detection",
		SchemaVersion: SchemaVersion,
		File:          file,
		Detection:     d,
	})
}

// WriteSummary outputs a run summary
func (w *NDJSONWriter) WriteSummary(s *SummaryOutput) error {
	s.Type = "summary"
	s.SchemaVersion = SchemaVersion
	return w.encoder.Encode(s)
}

// WriteAnalysis outputs a per-file analysis, optionally with store-annotated clusters
func (w *NDJSONWriter) WriteAnalysis(a *domain.FileAnalysis, annotated []analyze.AnnotatedCluster) error {
	return w.encoder.Encode(&AnalysisOutput{
		Type:          "analysis",
		SchemaVersion: SchemaVersion,
		Analysis:      a,
		Annotated:     annotated,
	})
}

// WriteArchive outputs an archive-level merged analysis
func (w *NDJSONWriter) WriteArchive(a *domain.ArchiveAnalysis) error {
	return w.encoder.Encode(&ArchiveOutput{
		Type:          "archive_analysis",
		SchemaVersion: SchemaVersion,
		Analysis:      a,
	})
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, file ...string) error {
	out := &ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(file) > 0 {
		out.File = file[0]
	}
	return w.encoder.Encode(out)
}

// WriteLineError outputs a recoverable per-line failure
func (w *NDJSONWriter) WriteLineError(line int, rawLine, message string) error {
	return w.encoder.Encode(&LineErrorOutput{
		Type:          "line_error",
		SchemaVersion: SchemaVersion,
		Line:          line,
		RawLine:       rawLine,
		Message:       message,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// WriteMetadata outputs runtime metadata
func (w *NDJSONWriter) WriteMetadata(version, commit, buildDate string) error {
	return w.encoder.Encode(&MetadataOutput{
		Type:          "metadata",
		SchemaVersion: SchemaVersion,
		Version:       version,
		Commit:        commit,
		BuildDate:     buildDate,
	})
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}

// TextWriter writes normalized records as formatted text
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteRecord outputs a single record as styled text
func (w *TextWriter) WriteRecord(r *domain.Record) error {
	levelIndicator := LevelIndicator(string(r.Level))
	timestamp := Styles.Timestamp.Render(r.Timestamp)
	service := Styles.Service.Render("[" + r.Service + "]")

	line := timestamp + " " + levelIndicator + " " + service + " "

	msgStyle := LevelStyle(string(r.Level))
	line += msgStyle.Render(r.Message)

	if r.Error != nil && r.Error.Name != "" {
		line += " " + Styles.Danger.Render(r.Error.Name)
	}
	line += "\n"

	_, err := io.WriteString(w.w, line)
	return err
}

// WriteSummary outputs styled streaming counters
func (w *TextWriter) WriteSummary(s *SummaryOutput) error {
	header := Styles.Header.Render("Summary")
	line := "\n" + header + "\n"
	line += Styles.Label.Render("Format: ") + Styles.Value.Render(string(s.Format)) + " | "
	line += Styles.Label.Render("Lines: ") + Styles.Value.Render(itoa(s.TotalLines)) + " | "
	line += Styles.Label.Render("Parsed: ") + Styles.Value.Render(itoa(s.Successful)) + " | "

	if s.Failed > 0 {
		line += Styles.Warning.Render("Failed: " + itoa(s.Failed))
	} else {
		line += Styles.Label.Render("Failed: ") + Styles.Value.Render(itoa(s.Failed))
	}
	line += "\n"

	_, err := io.WriteString(w.w, line)
	return err
}

// WriteError outputs a styled error
func (w *TextWriter) WriteError(code, message string) error {
	errorLabel := Styles.Danger.Render("Error")
	codeStr := Styles.Warning.Render("[" + code + "]")
	line := errorLabel + " " + codeStr + ": " + message + "\n"
	_, err := io.WriteString(w.w, line)
	return err
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	negative := i < 0
	if negative {
		i = -i
	}

	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
