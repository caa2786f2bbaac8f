package parse

import (
	"regexp"
	"strings"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

// httpLineRe matches "[timestamp] [level] VERB /path ... | params". The verb
// segment is optional; some emitters only carry the action parameter.
var httpLineRe = regexp.MustCompile(`^\[([^\]]+)\]\s*\[([^\]]+)\]\s*(.*?)(?:\s*\|\s*(.*))?$`)

var httpVerbPrefixRe = regexp.MustCompile(`^(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\b\s*(\S*)`)

// HTTP parses the verb-first bracketed HTTP action format. Raw HTTP action
// logs are not human-scannable, so a readable message is synthesized from
// the action parameter.
type HTTP struct{}

// NewHTTP creates an HTTP format parser.
func NewHTTP() *HTTP {
	return &HTTP{}
}

func (p *HTTP) Format() domain.Format {
	return domain.FormatHTTP
}

func (p *HTTP) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	m := httpLineRe.FindStringSubmatch(line)
	if m == nil {
		return fallbackRecord(line, ctx), nil
	}

	r := &domain.Record{
		Timestamp: timestamp.Normalize(m[1]),
		Level:     domain.ParseLevel(m[2]),
		Service:   ctx.Service,
		RawLine:   line,
	}

	head := strings.TrimSpace(m[3])
	if vm := httpVerbPrefixRe.FindStringSubmatch(head); vm != nil {
		r.SetMeta("method", vm[1])
		if vm[2] != "" {
			r.SetMeta("url", vm[2])
		}
	}

	params := make(map[string]string)
	if m[4] != "" {
		for _, pair := range parseKVTail(m[4]) {
			params[pair[0]] = pair[1]
			if !assignPair(r, pair[0], pair[1]) {
				r.SetMeta(pair[0], pair[1])
			}
		}
	}

	r.Message = httpMessage(params, head)
	return r, nil
}

// httpMessage derives a human-readable message from the action parameter.
func httpMessage(params map[string]string, head string) string {
	switch params["action"] {
	case "HTTP_REQUESTED":
		return "Request"
	case "HTTP_RESPONDED":
		if code := firstOf(params, "status", "code", "statusCode"); code != "" {
			return "Response " + code
		}
		return "Response"
	case "HTTP_FAILED":
		return "Failed"
	}
	return head
}

func firstOf(params map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := params[k]; ok && v != "" {
			return v
		}
	}
	return ""
}
