package domain

// PatternType distinguishes literal keyword rules from regular expressions.
type PatternType string

const (
	PatternKeyword PatternType = "keyword"
	PatternRegex   PatternType = "regex"
)

// Severity ranks a detection pattern.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank returns the sort rank of a severity (lower = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// DetectionPattern is a named keyword/regex rule supplied by the caller and
// consumed read-only for the duration of one analysis run.
type DetectionPattern struct {
	ID       string      `json:"id" yaml:"id" mapstructure:"id"`
	Name     string      `json:"name" yaml:"name" mapstructure:"name"`
	Type     PatternType `json:"pattern_type" yaml:"pattern_type" mapstructure:"pattern_type"`
	Value    string      `json:"pattern_value" yaml:"pattern_value" mapstructure:"pattern_value"`
	Severity Severity    `json:"severity" yaml:"severity" mapstructure:"severity"`
	Category string      `json:"category,omitempty" yaml:"category" mapstructure:"category"`
}

// MatchLine is one line of evidence for a detected issue.
type MatchLine struct {
	LineNumber int    `json:"lineNumber"`
	RawLine    string `json:"rawLine"`
	Timestamp  string `json:"timestamp"`
	Level      Level  `json:"level"`
}

// DetectedIssue aggregates all matches of one pattern within one file.
type DetectedIssue struct {
	PatternID           string      `json:"pattern_id"`
	Name                string      `json:"name,omitempty"`
	Severity            Severity    `json:"severity"`
	Category            string      `json:"category,omitempty"`
	OccurrenceCount     int         `json:"occurrence_count"`
	FirstOccurrenceLine int         `json:"first_occurrence_line"`
	SampleLines         []int       `json:"sample_lines"`
	Matches             []MatchLine `json:"matches"`
}

// Cluster groups lines that share a masked template, surfacing frequent
// problems that have no registered detection pattern.
type Cluster struct {
	Pattern     string `json:"pattern"`
	Sample      string `json:"sample"`
	Count       int    `json:"count"`
	LineNumbers []int  `json:"lineNumbers"`
}

// FileMetadata holds best-effort hints scraped from the head of a file.
// Every field is optional.
type FileMetadata struct {
	AppVersion  string `json:"appVersion,omitempty"`
	DeviceModel string `json:"deviceModel,omitempty"`
	OSName      string `json:"osName,omitempty"`
	BuildNumber string `json:"buildNumber,omitempty"`
}

// FileAnalysis is the per-file analysis result.
type FileAnalysis struct {
	File        string          `json:"file"`
	Metadata    FileMetadata    `json:"metadata"`
	Issues      []DetectedIssue `json:"detectedIssues"`
	LevelCounts map[Level]int   `json:"levelCounts"`
	Clusters    []Cluster       `json:"clusters"`
}

// FileEvidence is one file's contribution to a merged issue.
type FileEvidence struct {
	File            string `json:"file"`
	OccurrenceCount int    `json:"occurrence_count"`
	SampleLines     []int  `json:"sample_lines"`
}

// MergedIssue is an archive-level issue summed across files.
type MergedIssue struct {
	PatternID       string         `json:"pattern_id"`
	Name            string         `json:"name,omitempty"`
	Severity        Severity       `json:"severity"`
	Category        string         `json:"category,omitempty"`
	OccurrenceCount int            `json:"occurrence_count"`
	Files           []FileEvidence `json:"files"`
}

// ArchiveAnalysis is the merged result for a multi-file archive.
type ArchiveAnalysis struct {
	Files       []string      `json:"files"`
	Issues      []MergedIssue `json:"detectedIssues"`
	LevelCounts map[Level]int `json:"levelCounts"`
	Clusters    []Cluster     `json:"clusters"`
}
