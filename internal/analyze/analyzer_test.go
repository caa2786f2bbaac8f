package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/domain"
)

func keywordPattern(id, value string, sev domain.Severity) domain.DetectionPattern {
	return domain.DetectionPattern{
		ID: id, Name: id, Type: domain.PatternKeyword, Value: value,
		Severity: sev, Category: "test",
	}
}

func regexPattern(id, value string, sev domain.Severity) domain.DetectionPattern {
	return domain.DetectionPattern{
		ID: id, Name: id, Type: domain.PatternRegex, Value: value,
		Severity: sev, Category: "test",
	}
}

func TestAnalyzeKeywordIsCaseSensitive(t *testing.T) {
	a := NewAnalyzer(nil)
	content := "java.lang.OutOfMemoryError: heap\nouch outofmemoryerror lowercase\n"

	analysis := a.Analyze("app.log", content, nil, []domain.DetectionPattern{
		keywordPattern("oom", "OutOfMemoryError", domain.SeverityCritical),
	})

	require.Len(t, analysis.Issues, 1)
	issue := analysis.Issues[0]
	assert.Equal(t, "oom", issue.PatternID)
	assert.Equal(t, 1, issue.OccurrenceCount)
	assert.Equal(t, 1, issue.FirstOccurrenceLine)
}

func TestAnalyzeRegexIsCaseInsensitive(t *testing.T) {
	a := NewAnalyzer(nil)
	content := "rpc: Deadline Exceeded while calling billing\n"

	analysis := a.Analyze("app.log", content, nil, []domain.DetectionPattern{
		regexPattern("timeout", `deadline exceeded`, domain.SeverityMedium),
	})

	require.Len(t, analysis.Issues, 1)
	assert.Equal(t, "timeout", analysis.Issues[0].PatternID)
}

func TestAnalyzeSkipsInvalidRegex(t *testing.T) {
	a := NewAnalyzer(nil)
	content := "connection refused by upstream\n"

	analysis := a.Analyze("app.log", content, nil, []domain.DetectionPattern{
		regexPattern("broken", `[unclosed`, domain.SeverityCritical),
		keywordPattern("conn-refused", "connection refused", domain.SeverityHigh),
	})

	require.Len(t, analysis.Issues, 1)
	assert.Equal(t, "conn-refused", analysis.Issues[0].PatternID)
}

func TestAnalyzeSkipsUnknownPatternType(t *testing.T) {
	a := NewAnalyzer(nil)
	analysis := a.Analyze("app.log", "anything\n", nil, []domain.DetectionPattern{
		{ID: "odd", Type: domain.PatternType("glob"), Value: "*"},
	})
	assert.Empty(t, analysis.Issues)
}

func TestAnalyzeOrdersIssuesBySeverityThenCount(t *testing.T) {
	a := NewAnalyzer(nil)
	content := strings.Join([]string{
		"permission denied on /etc/shadow",
		"connection refused",
		"connection refused",
		"disk full",
		"request timed out",
		"request timed out",
		"request timed out",
	}, "\n") + "\n"

	analysis := a.Analyze("app.log", content, nil, []domain.DetectionPattern{
		keywordPattern("perm", "permission denied", domain.SeverityMedium),
		keywordPattern("conn", "connection refused", domain.SeverityHigh),
		keywordPattern("disk", "disk full", domain.SeverityCritical),
		keywordPattern("timeout", "timed out", domain.SeverityMedium),
	})

	require.Len(t, analysis.Issues, 4)
	ids := []string{
		analysis.Issues[0].PatternID,
		analysis.Issues[1].PatternID,
		analysis.Issues[2].PatternID,
		analysis.Issues[3].PatternID,
	}
	// CRITICAL first, then HIGH, then the two MEDIUMs by descending count.
	assert.Equal(t, []string{"disk", "conn", "timeout", "perm"}, ids)
}

func TestAnalyzeCapsSampleLines(t *testing.T) {
	a := NewAnalyzer(nil)
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("connection refused again\n")
	}

	analysis := a.Analyze("app.log", b.String(), nil, []domain.DetectionPattern{
		keywordPattern("conn", "connection refused", domain.SeverityHigh),
	})

	require.Len(t, analysis.Issues, 1)
	issue := analysis.Issues[0]
	assert.Equal(t, 12, issue.OccurrenceCount)
	assert.Len(t, issue.Matches, 12)
	assert.Len(t, issue.SampleLines, 10)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, issue.SampleLines)
}

func TestAnalyzeEvidencePrefersRecords(t *testing.T) {
	a := NewAnalyzer(nil)
	content := "2024-01-15T10:30:00Z connection refused\nconnection refused with no record\n"
	records := []*domain.Record{
		{LineNumber: 1, Timestamp: "2024-01-15T10:30:00.000Z", Level: domain.LevelError},
	}

	analysis := a.Analyze("app.log", content, records, []domain.DetectionPattern{
		keywordPattern("conn", "connection refused", domain.SeverityHigh),
	})

	require.Len(t, analysis.Issues, 1)
	matches := analysis.Issues[0].Matches
	require.Len(t, matches, 2)

	assert.Equal(t, "2024-01-15T10:30:00.000Z", matches[0].Timestamp)
	assert.Equal(t, domain.LevelError, matches[0].Level)

	// No record for line 2: timestamp is scraped from the raw text and the
	// level defaults to INFO.
	assert.Equal(t, "unknown", matches[1].Timestamp)
	assert.Equal(t, domain.LevelInfo, matches[1].Level)
}

func TestAnalyzeLevelCounts(t *testing.T) {
	a := NewAnalyzer(nil)
	records := []*domain.Record{
		{LineNumber: 1, Level: domain.LevelInfo},
		{LineNumber: 2, Level: domain.LevelError},
		{LineNumber: 3, Level: domain.LevelError},
	}

	analysis := a.Analyze("app.log", "a\nb\nc\n", records, nil)

	assert.Equal(t, map[domain.Level]int{
		domain.LevelInfo:  1,
		domain.LevelError: 2,
	}, analysis.LevelCounts)
}

func TestDefaultPatternsAreWellFormed(t *testing.T) {
	patterns := DefaultPatterns()
	require.NotEmpty(t, patterns)

	a := NewAnalyzer(nil)
	matchers := a.compile(patterns)
	assert.Len(t, matchers, len(patterns))

	seen := make(map[string]bool)
	for _, p := range patterns {
		assert.False(t, seen[p.ID], "duplicate pattern id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestExtractMetadata(t *testing.T) {
	lines := []string{
		"Session started",
		"App Version: 2.1.3",
		"Device Model: Pixel 8",
		"running on macOS 14.2 host",
		"build_number = 4512",
	}

	meta := extractMetadata(lines)

	assert.Equal(t, "2.1.3", meta.AppVersion)
	assert.Equal(t, "Pixel 8", meta.DeviceModel)
	assert.Equal(t, "macOS 14.2", meta.OSName)
	assert.Equal(t, "4512", meta.BuildNumber)
}

func TestExtractMetadataFirstMatchWins(t *testing.T) {
	meta := extractMetadata([]string{
		"app version 1.0.0",
		"app version 2.0.0",
	})
	assert.Equal(t, "1.0.0", meta.AppVersion)
}

func TestExtractMetadataScanWindow(t *testing.T) {
	lines := make([]string, 0, metadataScanLines+1)
	for i := 0; i < metadataScanLines; i++ {
		lines = append(lines, "noise")
	}
	lines = append(lines, "App Version: 9.9.9")

	meta := extractMetadata(lines)
	assert.Empty(t, meta.AppVersion)
}
