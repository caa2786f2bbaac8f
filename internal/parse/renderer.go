package parse

import (
	"regexp"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

// rendererLineRe matches "[timestamp] [level] [module] message | k=v, ...".
// The pipe tail is optional.
var rendererLineRe = regexp.MustCompile(`^\[([^\]]+)\]\s*\[([^\]]+)\]\s*\[([^\]]+)\]\s*(.*?)(?:\s+\|\s+(.*))?$`)

// Renderer parses the bracket-delimited renderer format. Stack trace
// continuations are consumed into the stream context; the coordinator owns
// the one-record lookahead that attaches them to the preceding record.
type Renderer struct{}

// NewRenderer creates a renderer format parser.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (p *Renderer) Format() domain.Format {
	return domain.FormatRenderer
}

// ParseLine parses one renderer line. Continuation lines return (nil, nil)
// after being buffered into ctx. Unmatched lines degrade to an INFO record
// carrying the raw text; dirty archives are the normal case, so a
// non-conforming line is not an error.
func (p *Renderer) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	if IsContinuation(line) {
		ctx.StackLines = append(ctx.StackLines, line)
		return nil, nil
	}

	m := rendererLineRe.FindStringSubmatch(line)
	if m == nil {
		return fallbackRecord(line, ctx), nil
	}

	r := &domain.Record{
		Timestamp: timestamp.Normalize(m[1]),
		Level:     domain.ParseLevel(m[2]),
		Service:   ctx.Service,
		Message:   m[4],
		RawLine:   line,
	}
	r.SetMeta("module", m[3])

	if m[5] != "" {
		for _, pair := range parseKVTail(m[5]) {
			if !assignPair(r, pair[0], pair[1]) {
				r.SetMeta(pair[0], pair[1])
			}
		}
	}
	return r, nil
}

// fallbackRecord wraps a non-conforming line into a minimal record so the
// line-number-indexed evidence downstream stays complete.
func fallbackRecord(line string, ctx *Context) *domain.Record {
	return &domain.Record{
		Timestamp: timestamp.Find(line),
		Level:     domain.LevelInfo,
		Service:   ctx.Service,
		Message:   line,
		RawLine:   line,
	}
}
