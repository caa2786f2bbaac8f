package parse

import (
	"github.com/mzorec/logsift/internal/domain"
)

// Generic wraps lines of an unattributable shape into minimal records so the
// line-indexed evidence downstream stays complete. It is never selected by
// detection; callers use it explicitly when they want a lossless pass over
// arbitrary text.
type Generic struct{}

// NewGeneric creates the fallback parser.
func NewGeneric() *Generic {
	return &Generic{}
}

func (p *Generic) Format() domain.Format {
	return domain.FormatUnknown
}

func (p *Generic) ParseLine(line string, ctx *Context) (*domain.Record, error) {
	return fallbackRecord(line, ctx), nil
}
