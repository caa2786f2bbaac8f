package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/domain"
)

func record(level domain.Level, service, message string) *domain.Record {
	return &domain.Record{Level: level, Service: service, Message: message}
}

func TestChainAllMustPass(t *testing.T) {
	chain := NewChain(NewLevelFilter(domain.LevelWarn))
	chain.Add(NewServiceFilter([]string{"api"}))

	assert.True(t, chain.Match(record(domain.LevelError, "api", "boom")))
	assert.False(t, chain.Match(record(domain.LevelInfo, "api", "boom")))
	assert.False(t, chain.Match(record(domain.LevelError, "worker", "boom")))
}

func TestEmptyChainMatchesEverything(t *testing.T) {
	assert.True(t, NewChain().Match(record(domain.LevelTrace, "", "")))
}

func TestLevelFilter(t *testing.T) {
	f := NewLevelFilter(domain.LevelWarn)

	assert.False(t, f.Match(record(domain.LevelTrace, "", "")))
	assert.False(t, f.Match(record(domain.LevelDebug, "", "")))
	assert.False(t, f.Match(record(domain.LevelInfo, "", "")))
	assert.True(t, f.Match(record(domain.LevelWarn, "", "")))
	assert.True(t, f.Match(record(domain.LevelError, "", "")))
	assert.True(t, f.Match(record(domain.LevelFatal, "", "")))
	assert.True(t, f.Match(record(domain.LevelCritical, "", "")))
}

func TestRegexFilterMatchesMessageOrRawLine(t *testing.T) {
	f, err := NewRegexFilter(`timeout|refused`)
	require.NoError(t, err)

	assert.True(t, f.Match(record(domain.LevelInfo, "", "connection refused")))
	assert.False(t, f.Match(record(domain.LevelInfo, "", "all good")))

	r := record(domain.LevelInfo, "", "all good")
	r.RawLine = "raw contains timeout marker"
	assert.True(t, f.Match(r))
}

func TestRegexFilterRejectsBadPattern(t *testing.T) {
	_, err := NewRegexFilter(`[unclosed`)
	assert.Error(t, err)
}

func TestExcludeFilter(t *testing.T) {
	f, err := NewExcludeFilter(`healthcheck`)
	require.NoError(t, err)

	assert.False(t, f.Match(record(domain.LevelInfo, "", "GET /healthcheck 200")))
	assert.True(t, f.Match(record(domain.LevelInfo, "", "GET /orders 200")))
}

func TestServiceFilter(t *testing.T) {
	f := NewServiceFilter([]string{"api", "worker-*"})

	assert.True(t, f.Match(record(domain.LevelInfo, "api", "")))
	assert.True(t, f.Match(record(domain.LevelInfo, "worker-7", "")))
	assert.True(t, f.Match(record(domain.LevelInfo, "worker-billing", "")))
	assert.False(t, f.Match(record(domain.LevelInfo, "apiserver", "")))
	assert.False(t, f.Match(record(domain.LevelInfo, "cron", "")))
}

func TestServiceFilterEmptyListMatchesAll(t *testing.T) {
	f := NewServiceFilter(nil)
	assert.True(t, f.Match(record(domain.LevelInfo, "anything", "")))
}
