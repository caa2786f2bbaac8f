package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

// perfLineRe matches "[timestamp] [level] message | data" where data embeds
// traces=[...] and system={...} JSON fragments.
var perfLineRe = regexp.MustCompile(`^\[([^\]]+)\]\s*\[([^\]]+)\]\s*(.*?)(?:\s*\|\s*(.*))?$`)

// Performance parses the performance sampling format. The two embedded JSON
// fragments are extracted and parsed independently so a malformed system
// object does not prevent recovering traces.
type Performance struct{}

// NewPerformance creates a performance format parser.
func NewPerformance() *Performance {
	return &Performance{}
}

func (p *Performance) Format() domain.Format {
	return domain.FormatPerformance
}

func (p *Performance) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	m := perfLineRe.FindStringSubmatch(line)
	if m == nil {
		return fallbackRecord(line, ctx), nil
	}

	r := &domain.Record{
		Timestamp: timestamp.Normalize(m[1]),
		Level:     domain.ParseLevel(m[2]),
		Service:   ctx.Service,
		Message:   strings.TrimSpace(m[3]),
		RawLine:   line,
	}

	if m[4] != "" {
		if traces, ok := extractFragment(m[4], "traces=", '[', ']'); ok {
			r.SetMeta("traces", traces)
		}
		if system, ok := extractFragment(m[4], "system=", '{', '}'); ok {
			r.SetMeta("system", system)
		}
	}
	return r, nil
}

// extractFragment pulls a balanced JSON fragment that follows a key prefix
// out of the data tail. Failure to find or parse the fragment degrades that
// sub-field only.
func extractFragment(data, prefix string, open, end byte) (any, bool) {
	start := strings.Index(data, prefix)
	if start < 0 {
		return nil, false
	}
	raw := balancedSpan(data[start+len(prefix):], open, end)
	if raw == "" || !gjson.Valid(raw) {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedSpan returns the shortest prefix of s that forms a balanced
// open/close span, respecting JSON string literals.
func balancedSpan(s string, open, end byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case end:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
