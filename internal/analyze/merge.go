package analyze

import (
	"sort"

	"github.com/mzorec/logsift/internal/domain"
)

// Merge combines per-file analyses into one archive-level result. Issues
// sharing a pattern id are summed with per-file evidence; clusters are
// pooled, globally re-sorted by count, and re-truncated; level counts are
// summed. The operation is order-independent, so partial results from a
// subset of files merge cleanly.
func (a *Analyzer) Merge(analyses []*domain.FileAnalysis) *domain.ArchiveAnalysis {
	merged := &domain.ArchiveAnalysis{
		LevelCounts: make(map[domain.Level]int),
	}

	byPattern := make(map[string]*domain.MergedIssue)
	var patternOrder []string

	for _, fa := range analyses {
		if fa == nil {
			continue
		}
		merged.Files = append(merged.Files, fa.File)

		for _, issue := range fa.Issues {
			mi, ok := byPattern[issue.PatternID]
			if !ok {
				mi = &domain.MergedIssue{
					PatternID: issue.PatternID,
					Name:      issue.Name,
					Severity:  issue.Severity,
					Category:  issue.Category,
				}
				byPattern[issue.PatternID] = mi
				patternOrder = append(patternOrder, issue.PatternID)
			}
			mi.OccurrenceCount += issue.OccurrenceCount
			mi.Files = append(mi.Files, domain.FileEvidence{
				File:            fa.File,
				OccurrenceCount: issue.OccurrenceCount,
				SampleLines:     issue.SampleLines,
			})
		}

		merged.Clusters = append(merged.Clusters, fa.Clusters...)

		for level, count := range fa.LevelCounts {
			merged.LevelCounts[level] += count
		}
	}

	for _, id := range patternOrder {
		merged.Issues = append(merged.Issues, *byPattern[id])
	}
	sort.SliceStable(merged.Issues, func(i, j int) bool {
		ri, rj := merged.Issues[i].Severity.Rank(), merged.Issues[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return merged.Issues[i].OccurrenceCount > merged.Issues[j].OccurrenceCount
	})

	SortClusters(merged.Clusters)
	if len(merged.Clusters) > a.maxClusters {
		merged.Clusters = merged.Clusters[:a.maxClusters]
	}
	return merged
}
