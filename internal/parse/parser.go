// Package parse contains one line parser per recognized source format. Each
// parser converts a physical line plus mutable per-stream context into zero
// or one normalized record.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mzorec/logsift/internal/domain"
)

// Context is the mutable per-stream state shared between the coordinator and
// the active parser. Created once per file, discarded at stream end.
type Context struct {
	// Service is the default origin identifier (source display name).
	Service string
	// StackLines accumulates continuation lines for the in-flight record.
	StackLines []string
}

// Reset clears accumulated continuation state.
func (c *Context) Reset() {
	c.StackLines = c.StackLines[:0]
}

// Parser consumes one physical line. A nil record with a nil error means the
// line was a continuation consumed into the context, not an error.
type Parser interface {
	Format() domain.Format
	ParseLine(line string, ctx *Context) (*domain.Record, error)
}

// ForFormat returns the parser for a detected format. FormatUnknown has no
// parser; detection failure is fatal per file and must not fall back to a
// guess.
func ForFormat(f domain.Format) (Parser, error) {
	switch f {
	case domain.FormatRenderer:
		return NewRenderer(), nil
	case domain.FormatHTTP:
		return NewHTTP(), nil
	case domain.FormatSyncApp:
		return NewSyncApp(), nil
	case domain.FormatPerformance:
		return NewPerformance(), nil
	case domain.FormatMountApp:
		return NewMountApp(), nil
	default:
		return nil, fmt.Errorf("no parser for format %q", f)
	}
}

var (
	continuationRe = regexp.MustCompile(`^\s+at\s+(?:async\s+)?\S`)
	frameRe        = regexp.MustCompile(`^\s+at\s+(async\s+)?(.+?)(?:\s+\((.+?):(\d+):(\d+)\))?\s*$`)
)

// IsContinuation reports whether a physical line is a stack trace
// continuation belonging to the previous logical record.
func IsContinuation(line string) bool {
	return continuationRe.MatchString(line)
}

// ParseFrames converts raw stack continuation lines into structured frames.
// Lines that do not match the frame shape are kept as function-only frames so
// no evidence is dropped.
func ParseFrames(lines []string) []domain.StackFrame {
	frames := make([]domain.StackFrame, 0, len(lines))
	for _, line := range lines {
		m := frameRe.FindStringSubmatch(line)
		if m == nil {
			frames = append(frames, domain.StackFrame{Function: strings.TrimSpace(line)})
			continue
		}
		frame := domain.StackFrame{
			Function: strings.TrimSpace(m[2]),
			File:     m[3],
			Async:    m[1] != "",
		}
		if m[4] != "" {
			frame.Line, _ = strconv.Atoi(m[4])
		}
		if m[5] != "" {
			frame.Column, _ = strconv.Atoi(m[5])
		}
		frames = append(frames, frame)
	}
	return frames
}

// JoinStack renders continuation lines back into a single stack string,
// preserving the original indentation.
func JoinStack(lines []string) string {
	return strings.Join(lines, "\n")
}

// parseKVTail splits a pipe tail of the shape "k=v, k2=v2" into ordered
// key/value pairs. Values keep embedded '=' characters.
func parseKVTail(tail string) [][2]string {
	parts := strings.Split(tail, ",")
	pairs := make([][2]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(key), strings.TrimSpace(value)})
	}
	return pairs
}

// assignPair routes one recognized key/value pair into the record's context,
// error, or metadata section. Returns true if the key was recognized as a
// correlation or error field.
func assignPair(r *domain.Record, key, value string) bool {
	switch key {
	case "user_id", "userId":
		ensureContext(r).UserID = value
	case "domain_id", "domainId":
		ensureContext(r).DomainID = value
	case "request_id", "requestId":
		ensureContext(r).RequestID = value
	case "errMsg", "errorMessage":
		ensureError(r).Message = value
	case "errName", "errorName":
		ensureError(r).Name = value
	case "errStack":
		ensureError(r).Stack = value
	default:
		return false
	}
	return true
}

func ensureContext(r *domain.Record) *domain.Context {
	if r.Context == nil {
		r.Context = &domain.Context{}
	}
	return r.Context
}

func ensureError(r *domain.Record) *domain.ErrorInfo {
	if r.Error == nil {
		r.Error = &domain.ErrorInfo{}
	}
	return r.Error
}
