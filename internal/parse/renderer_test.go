package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/domain"
	"github.com/mzorec/logsift/internal/timestamp"
)

func TestRendererParseLine(t *testing.T) {
	p := NewRenderer()
	ctx := &Context{Service: "renderer"}

	r, err := p.ParseLine("[2024-01-15T10:30:00.000Z] [ERROR] [database] Connection failed | user_id=42, errName=ConnectionError, errMsg=timeout, attempt=3", ctx)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "2024-01-15T10:30:00.000Z", r.Timestamp)
	assert.Equal(t, domain.LevelError, r.Level)
	assert.Equal(t, "renderer", r.Service)
	assert.Equal(t, "Connection failed", r.Message)
	assert.Equal(t, "database", r.Metadata["module"])

	require.NotNil(t, r.Context)
	assert.Equal(t, "42", r.Context.UserID)

	require.NotNil(t, r.Error)
	assert.Equal(t, "ConnectionError", r.Error.Name)
	assert.Equal(t, "timeout", r.Error.Message)

	// Unrecognized tail keys land in metadata.
	assert.Equal(t, "3", r.Metadata["attempt"])
}

func TestRendererWarningMapsToWarn(t *testing.T) {
	p := NewRenderer()
	r, err := p.ParseLine("[2024-01-15T10:30:00Z] [WARNING] [ipc] slow handshake", &Context{Service: "s"})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelWarn, r.Level)
}

func TestRendererCompactBrackets(t *testing.T) {
	p := NewRenderer()
	r, err := p.ParseLine("[2024-01-15T10:30:00Z][INFO][mod] compact", &Context{Service: "s"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "compact", r.Message)
	assert.Equal(t, "mod", r.Metadata["module"])
}

func TestRendererContinuationBuffered(t *testing.T) {
	p := NewRenderer()
	ctx := &Context{Service: "s"}

	r, err := p.ParseLine("    at Pool.connect (src/db/pool.js:88:15)", ctx)
	require.NoError(t, err)
	assert.Nil(t, r)
	require.Len(t, ctx.StackLines, 1)
	assert.Contains(t, ctx.StackLines[0], "Pool.connect")
}

func TestRendererFallbackForDirtyLine(t *testing.T) {
	p := NewRenderer()
	ctx := &Context{Service: "s"}

	r, err := p.ParseLine("free text with no structure", ctx)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, domain.LevelInfo, r.Level)
	assert.Equal(t, "free text with no structure", r.Message)
	assert.Equal(t, "free text with no structure", r.RawLine)
	assert.Equal(t, timestamp.Unknown, r.Timestamp)
}

func TestRendererFallbackRecoversEmbeddedTimestamp(t *testing.T) {
	p := NewRenderer()
	r, err := p.ParseLine("restarted at 2024-01-15T10:30:00Z by supervisor", &Context{Service: "s"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T10:30:00.000Z", r.Timestamp)
}

func TestRendererUnparseableTimestampIsUnknown(t *testing.T) {
	p := NewRenderer()
	r, err := p.ParseLine("[yesterday-ish] [INFO] [mod] message", &Context{Service: "s"})
	require.NoError(t, err)
	assert.Equal(t, timestamp.Unknown, r.Timestamp)
	assert.Equal(t, domain.LevelInfo, r.Level)
}
