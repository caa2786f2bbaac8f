// Package detect infers the source format of a log file from a bounded
// sample of its lines.
package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mzorec/logsift/internal/domain"
)

// MaxSampleLines bounds how many lines callers should feed into Detect.
const MaxSampleLines = 100

// saturation is the number of independent positive signals that drives a
// scorer's confidence to 1.0.
const saturation = 5.0

var (
	tripleBracketRe = regexp.MustCompile(`^\[[^\]]+\]\s*\[[^\]]+\]\s*\[[^\]]+\]`)
	pipeTailRe      = regexp.MustCompile(`\|\s*\w+=`)
	stackLineRe     = regexp.MustCompile(`^\s+at\s+(?:async\s+)?\S`)

	httpVerbRe   = regexp.MustCompile(`^\[[^\]]+\]\s*\[[^\]]+\]\s*(?:GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\b`)
	httpActionRe = regexp.MustCompile(`\baction=HTTP_(?:REQUESTED|RESPONDED|FAILED)\b`)

	perfTracesRe = regexp.MustCompile(`\btraces=\[`)
	perfSystemRe = regexp.MustCompile(`\bsystem=\{`)
	perfHeaderRe = regexp.MustCompile(`^\[[^\]]+\]\s*\[[^\]]+\]\s*[^\[|]+\|`)

	mountHeaderRe = regexp.MustCompile(`^(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*\s+\d{4}/\d{2}\s+\d{2}:\d{2}:\d{2}\b`)
	drivePathRe   = regexp.MustCompile(`\b[A-Za-z]:\\\S+`)
)

// scorer evaluates one candidate format over the head of the sample. Budgets
// differ because some structural signals are rarer than others.
type scorer struct {
	format domain.Format
	budget int
	score  func(lines []string) (int, []string)
}

// scorers are evaluated in decreasing a-priori informativeness of their
// structural signals. The order doubles as the confidence tie-break and must
// stay fixed for reproducible detection.
var scorers = []scorer{
	{format: domain.FormatRenderer, budget: 20, score: scoreRenderer},
	{format: domain.FormatHTTP, budget: 20, score: scoreHTTP},
	{format: domain.FormatSyncApp, budget: 10, score: scoreSyncApp},
	{format: domain.FormatPerformance, budget: 30, score: scorePerformance},
	{format: domain.FormatMountApp, budget: 30, score: scoreMountApp},
}

// Detector scores a line sample against every known format.
type Detector struct {
	logger *zap.Logger
}

// New creates a Detector. A nil logger disables diagnostics.
func New(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// Detect runs every format scorer over the sample and returns the best
// match. A sample with no structural signals yields FormatUnknown with
// confidence 0; callers must treat that as fatal for the file rather than
// guessing a default parser.
func (d *Detector) Detect(sample []string) domain.DetectionResult {
	if len(sample) > MaxSampleLines {
		sample = sample[:MaxSampleLines]
	}

	results := make([]domain.DetectionResult, 0, len(scorers))
	for _, s := range scorers {
		lines := sample
		if len(lines) > s.budget {
			lines = lines[:s.budget]
		}
		matches, reasons := s.score(lines)
		confidence := float64(matches) / saturation
		if confidence > 1.0 {
			confidence = 1.0
		}
		d.logger.Debug("format scored",
			zap.String("format", string(s.format)),
			zap.Int("matches", matches),
			zap.Float64("confidence", confidence))
		results = append(results, domain.DetectionResult{
			Format:     s.format,
			Confidence: confidence,
			Reasons:    reasons,
		})
	}

	// Stable sort preserves scorer order as the tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	best := results[0]
	if best.Confidence == 0 {
		return domain.DetectionResult{
			Format:     domain.FormatUnknown,
			Confidence: 0,
			Reasons:    []string{"no format scorer produced a structural signal"},
		}
	}
	return best
}

func scoreRenderer(lines []string) (int, []string) {
	var headers, tails, stacks int
	for _, line := range lines {
		if tripleBracketRe.MatchString(line) {
			headers++
			if pipeTailRe.MatchString(line) {
				tails++
			}
		} else if stackLineRe.MatchString(line) {
			stacks++
		}
	}
	// The verb-first HTTP shape also carries brackets; a renderer header must
	// have three groups, which httpVerbRe lines never do, so no discount here.
	var reasons []string
	matches := 0
	if headers > 0 {
		matches += headers
		reasons = append(reasons, fmt.Sprintf("%d lines match the [time] [level] [module] header", headers))
	}
	if tails > 0 {
		matches += tails
		reasons = append(reasons, fmt.Sprintf("%d lines carry a pipe-separated key=value tail", tails))
	}
	if stacks > 0 {
		matches += stacks
		reasons = append(reasons, fmt.Sprintf("%d stack trace continuation lines", stacks))
	}
	return matches, reasons
}

func scoreHTTP(lines []string) (int, []string) {
	var verbs, actions int
	for _, line := range lines {
		if httpVerbRe.MatchString(line) {
			verbs++
		}
		if httpActionRe.MatchString(line) {
			actions++
		}
	}
	var reasons []string
	matches := 0
	if verbs > 0 {
		matches += verbs
		reasons = append(reasons, fmt.Sprintf("%d lines start with a bracketed HTTP verb", verbs))
	}
	if actions > 0 {
		matches += actions
		reasons = append(reasons, fmt.Sprintf("%d lines carry an HTTP_* action parameter", actions))
	}
	return matches, reasons
}

func scoreSyncApp(lines []string) (int, []string) {
	var objects, levels, callers int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
			continue
		}
		objects++
		if gjson.Get(trimmed, "level").Exists() || gjson.Get(trimmed, "Level").Exists() {
			levels++
		}
		if gjson.Get(trimmed, "caller").Exists() || gjson.Get(trimmed, "Caller").Exists() {
			callers++
		}
	}
	var reasons []string
	matches := 0
	if objects > 0 {
		matches += objects
		reasons = append(reasons, fmt.Sprintf("%d lines are JSON objects", objects))
	}
	if levels > 0 {
		matches += levels
		reasons = append(reasons, fmt.Sprintf("%d JSON lines carry a level field", levels))
	}
	if callers > 0 {
		matches += callers
		reasons = append(reasons, fmt.Sprintf("%d JSON lines carry a caller field", callers))
	}
	return matches, reasons
}

func scorePerformance(lines []string) (int, []string) {
	var traces, systems, headers int
	for _, line := range lines {
		if perfTracesRe.MatchString(line) {
			traces++
		}
		if perfSystemRe.MatchString(line) {
			systems++
		}
		if perfHeaderRe.MatchString(line) && !tripleBracketRe.MatchString(line) {
			headers++
		}
	}
	var reasons []string
	matches := 0
	if traces > 0 {
		matches += traces
		reasons = append(reasons, fmt.Sprintf("%d lines embed a traces=[...] fragment", traces))
	}
	if systems > 0 {
		matches += systems
		reasons = append(reasons, fmt.Sprintf("%d lines embed a system={...} fragment", systems))
	}
	if headers > 0 {
		matches += headers
		reasons = append(reasons, fmt.Sprintf("%d lines match the [time] [level] message | data shape", headers))
	}
	return matches, reasons
}

func scoreMountApp(lines []string) (int, []string) {
	var headers, paths int
	for _, line := range lines {
		if mountHeaderRe.MatchString(line) {
			headers++
		}
		if drivePathRe.MatchString(line) {
			paths++
		}
	}
	var reasons []string
	matches := 0
	if headers > 0 {
		matches += headers
		reasons = append(reasons, fmt.Sprintf("%d lines start with a weekday year/month timestamp", headers))
	}
	if paths > 0 {
		matches += paths
		reasons = append(reasons, fmt.Sprintf("%d lines embed drive-letter filesystem paths", paths))
	}
	return matches, reasons
}
