package domain

import "time"

// Record is the canonical cross-format log event. One record is produced per
// logical source record (one or more physical lines) and is immutable after
// the stream coordinator finishes with it.
type Record struct {
	// Timestamp is an ISO 8601 UTC instant, or the "unknown" sentinel when
	// no timestamp could be recovered. Never empty.
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	// Service identifies the origin, derived from an embedded field or the
	// source display name. Never empty.
	Service string `json:"service"`
	Message string `json:"message"`

	Context  *Context       `json:"context,omitempty"`
	Error    *ErrorInfo     `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`

	// RawLine retains the original source text for audit and evidence.
	RawLine string `json:"rawLine"`
	// ParseTime is processing metadata, not semantic to the log.
	ParseTime time.Time `json:"parseTime"`

	// LineNumber is the 1-based physical line the record started on.
	// Processing metadata only, excluded from the persisted shape.
	LineNumber int `json:"-"`
}

// Context carries correlation identifiers. A record only gets a Context when
// at least one identifier is known.
type Context struct {
	UserID    string `json:"user_id,omitempty"`
	DomainID  string `json:"domain_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Empty reports whether no identifier is set.
func (c *Context) Empty() bool {
	return c == nil || (c.UserID == "" && c.DomainID == "" && c.RequestID == "")
}

// ErrorInfo describes error details carried by a source line, plus any stack
// trace reassembled from continuation lines.
type ErrorInfo struct {
	Name    string       `json:"name,omitempty"`
	Message string       `json:"message,omitempty"`
	Stack   string       `json:"stack,omitempty"`
	Frames  []StackFrame `json:"frames,omitempty"`
}

// StackFrame is one parsed stack trace line.
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Async    bool   `json:"async,omitempty"`
}

// SetMeta lazily initializes the metadata map and stores a key.
func (r *Record) SetMeta(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}
