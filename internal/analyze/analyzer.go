// Package analyze matches normalized log content against named detection
// rules and clusters structurally-similar lines to surface unknown problems.
package analyze

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

const (
	// sampleLineLimit caps the sample_lines carried per issue.
	sampleLineLimit = 10

	defaultMinClusterCount = 5
	defaultMaxClusters     = 20
	metadataScanLines      = 100
)

// Analyzer runs pattern detection and clustering over one file's content.
type Analyzer struct {
	logger          *zap.Logger
	minClusterCount int
	maxClusters     int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClusterThreshold sets the minimum line frequency for a cluster.
func WithClusterThreshold(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minClusterCount = n
		}
	}
}

// WithMaxClusters bounds the number of clusters returned.
func WithMaxClusters(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxClusters = n
		}
	}
}

// NewAnalyzer creates an Analyzer. A nil logger disables diagnostics.
func NewAnalyzer(logger *zap.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		logger:          logger,
		minClusterCount: defaultMinClusterCount,
		maxClusters:     defaultMaxClusters,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// matcher is one compiled detection rule.
type matcher struct {
	pattern domain.DetectionPattern
	test    func(line string) bool
}

// Analyze scans raw file content line by line against the supplied detection
// patterns and clusters masked line templates. Normalized records supply the
// level histogram and per-line evidence; lines without a record (stack
// continuations) fall back to best-effort evidence from the raw text.
// The pattern list is treated as a read-only snapshot.
func (a *Analyzer) Analyze(file, content string, records []*domain.Record, patterns []domain.DetectionPattern) *domain.FileAnalysis {
	lines := splitLines(content)

	analysis := &domain.FileAnalysis{
		File:        file,
		Metadata:    extractMetadata(lines),
		LevelCounts: levelCounts(records),
	}

	byLine := recordsByLine(records)
	matchers := a.compile(patterns)

	hits := make(map[string][]domain.MatchLine)
	for i, line := range lines {
		lineNumber := i + 1
		for _, m := range matchers {
			if !m.test(line) {
				continue
			}
			hits[m.pattern.ID] = append(hits[m.pattern.ID], evidence(lineNumber, line, byLine))
		}
	}

	for _, m := range matchers {
		matches := hits[m.pattern.ID]
		if len(matches) == 0 {
			continue
		}
		analysis.Issues = append(analysis.Issues, buildIssue(m.pattern, matches))
	}
	sortIssues(analysis.Issues)

	analysis.Clusters = a.cluster(lines)
	return analysis
}

// compile builds one matcher per pattern. An invalid regex skips that
// pattern for the whole run; all others proceed.
func (a *Analyzer) compile(patterns []domain.DetectionPattern) []matcher {
	matchers := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		switch p.Type {
		case domain.PatternKeyword:
			value := p.Value
			matchers = append(matchers, matcher{pattern: p, test: func(line string) bool {
				return strings.Contains(line, value)
			}})
		case domain.PatternRegex:
			re, err := regexp.Compile("(?i)" + p.Value)
			if err != nil {
				a.logger.Warn("skipping pattern with invalid regex",
					zap.String("pattern_id", p.ID),
					zap.String("pattern_value", p.Value),
					zap.Error(err))
				continue
			}
			matchers = append(matchers, matcher{pattern: p, test: re.MatchString})
		default:
			a.logger.Warn("skipping pattern with unknown type",
				zap.String("pattern_id", p.ID),
				zap.String("pattern_type", string(p.Type)))
		}
	}
	return matchers
}

func buildIssue(p domain.DetectionPattern, matches []domain.MatchLine) domain.DetectedIssue {
	sampleLines := make([]int, 0, sampleLineLimit)
	for _, m := range matches {
		if len(sampleLines) == sampleLineLimit {
			break
		}
		sampleLines = append(sampleLines, m.LineNumber)
	}
	return domain.DetectedIssue{
		PatternID:           p.ID,
		Name:                p.Name,
		Severity:            p.Severity,
		Category:            p.Category,
		OccurrenceCount:     len(matches),
		FirstOccurrenceLine: matches[0].LineNumber,
		SampleLines:         sampleLines,
		Matches:             matches,
	}
}

// sortIssues orders issues worst-first: severity rank ascending, then
// occurrence count descending.
func sortIssues(issues []domain.DetectedIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := issues[i].Severity.Rank(), issues[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return issues[i].OccurrenceCount > issues[j].OccurrenceCount
	})
}

func evidence(lineNumber int, line string, byLine map[int]*domain.Record) domain.MatchLine {
	if r, ok := byLine[lineNumber]; ok {
		return domain.MatchLine{
			LineNumber: lineNumber,
			RawLine:    line,
			Timestamp:  r.Timestamp,
			Level:      r.Level,
		}
	}
	return domain.MatchLine{
		LineNumber: lineNumber,
		RawLine:    line,
		Timestamp:  timestamp.Find(line),
		Level:      domain.LevelInfo,
	}
}

func recordsByLine(records []*domain.Record) map[int]*domain.Record {
	byLine := make(map[int]*domain.Record, len(records))
	for _, r := range records {
		if r.LineNumber > 0 {
			byLine[r.LineNumber] = r
		}
	}
	return byLine
}

func levelCounts(records []*domain.Record) map[domain.Level]int {
	counts := make(map[domain.Level]int)
	for _, r := range records {
		counts[r.Level]++
	}
	return counts
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
