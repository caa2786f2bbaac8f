package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/mzorec/logsift/internal/domain"
)

// Reporter renders analyses as human-readable text.
type Reporter struct {
	w     io.Writer
	color bool
}

// NewReporter creates a reporter. Color is enabled only when the writer is a
// terminal.
func NewReporter(w io.Writer) *Reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{w: w, color: color}
}

func (r *Reporter) styled(s string, render func(...string) string) string {
	if !r.color {
		return s
	}
	return render(s)
}

// WriteFileReport renders a single-file analysis.
func (r *Reporter) WriteFileReport(a *domain.FileAnalysis) error {
	fmt.Fprintf(r.w, "%s\n", r.styled("Analysis: "+a.File, Styles.Header.Render))
	r.writeMetadata(a.Metadata)
	r.writeLevelCounts(a.LevelCounts)

	critical := 0
	for _, issue := range a.Issues {
		if issue.Severity == domain.SeverityCritical {
			critical++
		}
	}
	fmt.Fprintf(r.w, "\n%s\n\n", StatusText(len(a.Issues), critical))

	if err := r.writeIssues(a.Issues); err != nil {
		return err
	}
	r.writeClusters(a.Clusters)
	return nil
}

// WriteArchiveReport renders a merged multi-file analysis.
func (r *Reporter) WriteArchiveReport(a *domain.ArchiveAnalysis) error {
	fmt.Fprintf(r.w, "%s\n", r.styled("Archive analysis", Styles.Header.Render))
	fmt.Fprintf(r.w, "%s %s\n",
		r.styled("Files:", Styles.Label.Render),
		r.styled(strconv.Itoa(len(a.Files)), Styles.Value.Render))
	r.writeLevelCounts(a.LevelCounts)
	fmt.Fprintln(r.w)

	if len(a.Issues) == 0 {
		fmt.Fprintf(r.w, "%s\n", r.styled("No known issues detected", Styles.Success.Render))
	} else {
		table := tablewriter.NewTable(r.w)
		table.Header("Severity", "Issue", "Count", "Files")
		for _, issue := range a.Issues {
			if err := table.Append(
				string(issue.Severity),
				issue.Name,
				strconv.Itoa(issue.OccurrenceCount),
				strconv.Itoa(len(issue.Files)),
			); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	r.writeClusters(a.Clusters)
	return nil
}

func (r *Reporter) writeIssues(issues []domain.DetectedIssue) error {
	if len(issues) == 0 {
		return nil
	}
	table := tablewriter.NewTable(r.w)
	table.Header("Severity", "Issue", "Category", "Count", "First Line")
	for _, issue := range issues {
		if err := table.Append(
			string(issue.Severity),
			issue.Name,
			issue.Category,
			strconv.Itoa(issue.OccurrenceCount),
			strconv.Itoa(issue.FirstOccurrenceLine),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func (r *Reporter) writeClusters(clusters []domain.Cluster) {
	if len(clusters) == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n", r.styled("Recurring patterns", Styles.Header.Render))
	for _, c := range clusters {
		count := r.styled(fmt.Sprintf("%5dx", c.Count), Styles.Value.Render)
		fmt.Fprintf(r.w, "%s  %s\n", count, c.Pattern)
	}
}

func (r *Reporter) writeMetadata(m domain.FileMetadata) {
	pairs := []struct{ label, value string }{
		{"App version", m.AppVersion},
		{"Device", m.DeviceModel},
		{"OS", m.OSName},
		{"Build", m.BuildNumber},
	}
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		fmt.Fprintf(r.w, "%s %s\n",
			r.styled(p.label+":", Styles.Label.Render),
			r.styled(p.value, Styles.Value.Render))
	}
}

func (r *Reporter) writeLevelCounts(counts map[domain.Level]int) {
	if len(counts) == 0 {
		return
	}
	line := r.styled("Levels:", Styles.Label.Render)
	for _, lvl := range []domain.Level{
		domain.LevelTrace, domain.LevelDebug, domain.LevelInfo,
		domain.LevelWarn, domain.LevelError, domain.LevelFatal, domain.LevelCritical,
	} {
		n, ok := counts[lvl]
		if !ok {
			continue
		}
		line += " " + LevelIndicatorPlain(string(lvl), r.color) + "=" + strconv.Itoa(n)
	}
	fmt.Fprintln(r.w, line)
}

// LevelIndicatorPlain is LevelIndicator with optional styling.
func LevelIndicatorPlain(level string, color bool) string {
	if color {
		return LevelIndicator(level)
	}
	switch domain.Level(level) {
	case domain.LevelTrace:
		return "TRC"
	case domain.LevelDebug:
		return "DBG"
	case domain.LevelInfo:
		return "INF"
	case domain.LevelWarn:
		return "WRN"
	case domain.LevelError:
		return "ERR"
	case domain.LevelFatal:
		return "FTL"
	case domain.LevelCritical:
		return "CRT"
	default:
		return "???"
	}
}
