package analyze

import (
	"regexp"
	"sort"

	"github.com/mzorec/logsift/internal/domain"
)

// volatile substrings are replaced with fixed placeholders before grouping.
// Order matters: broad numeric masks must run after the structured ones or
// they would eat timestamps and UUIDs first.
var masks = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?(?:Z|[+-]\d{2}:?\d{2})?`), "<TIMESTAMP>"},
	{regexp.MustCompile(`\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?`), "<TIMESTAMP>"},
	{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "<UUID>"},
	{regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`), "<EMAIL>"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "<IP>"},
	// Digit runs go first so a long decimal counter is <NUM>, not <HEX>;
	// what the hex mask then sees always carries at least one letter.
	{regexp.MustCompile(`\b\d+\b`), "<NUM>"},
	{regexp.MustCompile(`0x[0-9a-fA-F]+|\b[0-9a-fA-F]{8,}\b`), "<HEX>"},
}

// Mask replaces volatile tokens in a line with fixed placeholders so that
// structurally identical lines compare equal.
func Mask(line string) string {
	for _, m := range masks {
		line = m.re.ReplaceAllString(line, m.placeholder)
	}
	return line
}

// cluster groups lines sharing a masked template. Groups below the minimum
// frequency are discarded; survivors are sorted by descending count (template
// text breaks ties for determinism) and truncated to the configured top-N.
func (a *Analyzer) cluster(lines []string) []domain.Cluster {
	type group struct {
		sample      string
		lineNumbers []int
	}

	groups := make(map[string]*group)
	for i, line := range lines {
		if line == "" {
			continue
		}
		template := Mask(line)
		g, ok := groups[template]
		if !ok {
			g = &group{sample: line}
			groups[template] = g
		}
		g.lineNumbers = append(g.lineNumbers, i+1)
	}

	clusters := make([]domain.Cluster, 0, len(groups))
	for template, g := range groups {
		if len(g.lineNumbers) < a.minClusterCount {
			continue
		}
		clusters = append(clusters, domain.Cluster{
			Pattern:     template,
			Sample:      g.sample,
			Count:       len(g.lineNumbers),
			LineNumbers: g.lineNumbers,
		})
	}

	SortClusters(clusters)
	if len(clusters) > a.maxClusters {
		clusters = clusters[:a.maxClusters]
	}
	return clusters
}

// SortClusters orders clusters by descending count, then template text.
func SortClusters(clusters []domain.Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Pattern < clusters[j].Pattern
	})
}
