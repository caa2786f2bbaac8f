package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

// mountLineRe matches the localized fixed-width format: a named weekday, a
// year/month pair, and a time of day. The day-of-month is absent from the
// source format.
var mountLineRe = regexp.MustCompile(`^((?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*)\s+(\d{4})/(\d{2})\s+(\d{2}):(\d{2}):(\d{2})\s+(.*)$`)

var mountPathRe = regexp.MustCompile(`\b[A-Za-z]:\\\S+`)

var mountErrTokenRe = regexp.MustCompile(`\bERR\b`)

// MountApp parses the localized mount-app text format. The format carries no
// day-of-month, so the current date's day is substituted. That heuristic is
// inherited from the upstream emitter and is wrong for historical analysis;
// it is kept for output parity. The format also carries no level field, so
// the level is inferred from message keywords.
type MountApp struct {
	now func() time.Time
}

// NewMountApp creates a mount-app format parser.
func NewMountApp() *MountApp {
	return &MountApp{now: time.Now}
}

func (p *MountApp) Format() domain.Format {
	return domain.FormatMountApp
}

func (p *MountApp) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	m := mountLineRe.FindStringSubmatch(line)
	if m == nil {
		return fallbackRecord(line, ctx), nil
	}

	message := m[7]
	r := &domain.Record{
		Timestamp: p.buildTimestamp(m),
		Level:     mountLevel(message),
		Service:   ctx.Service,
		Message:   message,
		RawLine:   line,
	}

	if paths := mountPathRe.FindAllString(message, -1); len(paths) > 0 {
		r.SetMeta("paths", paths)
	}
	return r, nil
}

func (p *MountApp) buildTimestamp(m []string) string {
	year, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])
	if month < 1 || month > 12 {
		return timestamp.Unknown
	}
	// Day-of-month substituted from the current date; see type comment.
	day := p.now().Day()
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	return t.Format(timestamp.ISO)
}

// mountLevel infers a level from message keywords since the format has no
// explicit level field. FATAL and CRITICAL map to ERROR in this source.
func mountLevel(message string) domain.Level {
	upper := strings.ToUpper(message)
	switch {
	case strings.Contains(upper, "FATAL"), strings.Contains(upper, "CRITICAL"):
		return domain.LevelError
	case strings.Contains(upper, "ERROR"), mountErrTokenRe.MatchString(upper):
		return domain.LevelError
	case strings.Contains(upper, "WARN"):
		return domain.LevelWarn
	case strings.Contains(upper, "DEBUG"):
		return domain.LevelDebug
	default:
		return domain.LevelInfo
	}
}
