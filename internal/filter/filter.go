// Package filter provides composable consumer-side filters over normalized
// records. The pipeline itself always emits everything; filtering is a
// convenience for interactive output.
package filter

import (
	"regexp"
	"strings"

	"github.com/mzorec/logsift/internal/domain"
)

// Filter decides whether a record should be included.
type Filter interface {
	Match(record *domain.Record) bool
}

// Chain combines filters; all must pass.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Match returns true only if every filter passes.
func (c *Chain) Match(record *domain.Record) bool {
	for _, f := range c.filters {
		if !f.Match(record) {
			return false
		}
	}
	return true
}

// LevelFilter keeps records at or above a minimum severity.
type LevelFilter struct {
	min domain.Level
}

// NewLevelFilter creates a minimum-level filter.
func NewLevelFilter(min domain.Level) *LevelFilter {
	return &LevelFilter{min: min}
}

func (f *LevelFilter) Match(record *domain.Record) bool {
	return record.Level.Priority() >= f.min.Priority()
}

// RegexFilter keeps records whose message matches a pattern.
type RegexFilter struct {
	pattern *regexp.Regexp
}

// NewRegexFilter compiles an inclusion filter from a pattern string.
func NewRegexFilter(pattern string) (*RegexFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexFilter{pattern: re}, nil
}

func (f *RegexFilter) Match(record *domain.Record) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(record.Message) || f.pattern.MatchString(record.RawLine)
}

// ExcludeFilter drops records whose message matches a pattern.
type ExcludeFilter struct {
	pattern *regexp.Regexp
}

// NewExcludeFilter compiles an exclusion filter from a pattern string.
func NewExcludeFilter(pattern string) (*ExcludeFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ExcludeFilter{pattern: re}, nil
}

func (f *ExcludeFilter) Match(record *domain.Record) bool {
	if f.pattern == nil {
		return true
	}
	return !f.pattern.MatchString(record.Message)
}

// ServiceFilter keeps records from the listed services. Entries ending in
// "*" match by prefix.
type ServiceFilter struct {
	services []string
}

// NewServiceFilter creates a service inclusion filter.
func NewServiceFilter(services []string) *ServiceFilter {
	return &ServiceFilter{services: services}
}

func (f *ServiceFilter) Match(record *domain.Record) bool {
	if len(f.services) == 0 {
		return true
	}
	for _, svc := range f.services {
		if strings.HasSuffix(svc, "*") {
			if strings.HasPrefix(record.Service, strings.TrimSuffix(svc, "*")) {
				return true
			}
		} else if record.Service == svc {
			return true
		}
	}
	return false
}
