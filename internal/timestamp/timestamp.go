// Package timestamp canonicalizes assorted textual timestamp representations
// into UTC ISO 8601 instants. All functions are stateless and safe for
// concurrent use.
package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unknown is the sentinel returned when no timestamp could be recovered.
// Callers must propagate it rather than defaulting to the current time.
const Unknown = "unknown"

// ISO is the canonical output layout (millisecond precision, UTC).
const ISO = "2006-01-02T15:04:05.000Z"

// candidate pairs a structural regex with the Go layouts that can parse the
// captured text. Ordered from most to least specific; first structural match
// that survives validation wins.
type candidate struct {
	pattern *regexp.Regexp
	layouts []string
	epoch   bool
}

var commaFracRe = regexp.MustCompile(`,(\d)`)

var candidates = []candidate{
	// ISO 8601, with or without fractional seconds and zone
	{
		pattern: regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?(?:Z|[+-]\d{2}:?\d{2})?)`),
		layouts: []string{
			time.RFC3339Nano,
			"2006-01-02T15:04:05.999999999-0700",
			"2006-01-02T15:04:05.999999999",
			"2006-01-02T15:04:05",
		},
	},
	// Space-delimited YYYY-MM-DD HH:MM:SS[.fff][±zzzz]
	{
		pattern: regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?(?: ?[+-]\d{4})?)`),
		layouts: []string{
			"2006-01-02 15:04:05.999999999 -0700",
			"2006-01-02 15:04:05.999999999-0700",
			"2006-01-02 15:04:05.999999999",
			"2006-01-02 15:04:05",
		},
	},
	// Slash-delimited YYYY/MM/DD
	{
		pattern: regexp.MustCompile(`(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})`),
		layouts: []string{"2006/01/02 15:04:05"},
	},
	// Slash-delimited MM/DD/YYYY
	{
		pattern: regexp.MustCompile(`(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2})`),
		layouts: []string{"01/02/2006 15:04:05"},
	},
	// Compact YYYYMMDD HHMMSS
	{
		pattern: regexp.MustCompile(`(\d{8} \d{6})`),
		layouts: []string{"20060102 150405"},
	},
	// Unix epoch seconds, optional fraction
	{
		pattern: regexp.MustCompile(`(?:^|[^\d.])(\d{10}(?:\.\d+)?)(?:[^\d.]|$)`),
		epoch:   true,
	},
	// Textual month-first: "Jan 2, 2006 15:04:05"
	{
		pattern: regexp.MustCompile(`((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{1,2},? \d{4} \d{2}:\d{2}:\d{2})`),
		layouts: []string{"Jan 2, 2006 15:04:05", "Jan 2 2006 15:04:05"},
	},
	// Textual day-first: "2 Jan 2006 15:04:05"
	{
		pattern: regexp.MustCompile(`(\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{4} \d{2}:\d{2}:\d{2})`),
		layouts: []string{"2 Jan 2006 15:04:05"},
	},
}

// Normalize parses text into a UTC ISO 8601 instant, or returns Unknown if
// no candidate format matches. It never returns an error.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown
	}
	return match(text)
}

// Find scans anywhere inside a line for the first recognizable timestamp.
// Used by the generic parser and for best-effort line evidence.
func Find(line string) string {
	return match(line)
}

func match(text string) string {
	for _, c := range candidates {
		m := c.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := c.parse(m[1]); ok {
			return t.UTC().Format(ISO)
		}
	}
	return Unknown
}

func (c candidate) parse(s string) (time.Time, bool) {
	if c.epoch {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		t := time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9))
		return t, valid(t)
	}

	// Python-style comma fractions parse once normalized to a period. The
	// digit lookahead keeps "Jan 2, 2006" style commas intact.
	s = commaFracRe.ReplaceAllString(s, ".$1")

	for _, layout := range c.layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if valid(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

// valid rejects structurally-matched text that parses to an implausible
// calendar date.
func valid(t time.Time) bool {
	return t.Year() > 1970
}
