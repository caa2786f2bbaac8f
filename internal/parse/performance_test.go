package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/domain"
)

func TestPerformanceParseLine(t *testing.T) {
	p := NewPerformance()
	line := `[2024-01-15T15:10:00.000Z] [INFO] perf snapshot | traces=[{"name":"paint","ms":12.4}] system={"cpu":0.42,"mem_mb":512}`

	r, err := p.ParseLine(line, &Context{Service: "perf"})
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "2024-01-15T15:10:00.000Z", r.Timestamp)
	assert.Equal(t, domain.LevelInfo, r.Level)
	assert.Equal(t, "perf snapshot", r.Message)

	traces, ok := r.Metadata["traces"].([]any)
	require.True(t, ok)
	require.Len(t, traces, 1)
	first, ok := traces[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "paint", first["name"])

	system, ok := r.Metadata["system"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.42, system["cpu"])
}

func TestPerformanceMalformedSystemKeepsTraces(t *testing.T) {
	p := NewPerformance()
	line := `[2024-01-15T15:10:00Z] [INFO] perf snapshot | traces=[{"name":"gc"}] system={"cpu":`

	r, err := p.ParseLine(line, &Context{Service: "perf"})
	require.NoError(t, err)

	assert.Contains(t, r.Metadata, "traces")
	assert.NotContains(t, r.Metadata, "system")
}

func TestPerformanceBracketsInsideStrings(t *testing.T) {
	p := NewPerformance()
	line := `[2024-01-15T15:10:00Z] [INFO] perf | traces=[{"name":"odd ] bracket"}] system={"note":"brace } inside"}`

	r, err := p.ParseLine(line, &Context{Service: "perf"})
	require.NoError(t, err)

	traces, ok := r.Metadata["traces"].([]any)
	require.True(t, ok)
	first := traces[0].(map[string]any)
	assert.Equal(t, "odd ] bracket", first["name"])

	system := r.Metadata["system"].(map[string]any)
	assert.Equal(t, "brace } inside", system["note"])
}

func TestPerformanceNoTail(t *testing.T) {
	p := NewPerformance()
	r, err := p.ParseLine("[2024-01-15T15:10:00Z] [INFO] bare message", &Context{Service: "perf"})
	require.NoError(t, err)
	assert.Equal(t, "bare message", r.Message)
	assert.NotContains(t, r.Metadata, "traces")
	assert.NotContains(t, r.Metadata, "system")
}

func TestBalancedSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  byte
		end   byte
		want  string
	}{
		{name: "flat object", input: `{"a":1} rest`, open: '{', end: '}', want: `{"a":1}`},
		{name: "nested array", input: `[[1],[2]] tail`, open: '[', end: ']', want: `[[1],[2]]`},
		{name: "close inside string", input: `{"s":"}"}x`, open: '{', end: '}', want: `{"s":"}"}`},
		{name: "escaped quote", input: `{"s":"\"}"}`, open: '{', end: '}', want: `{"s":"\"}"}`},
		{name: "unbalanced", input: `{"a":1`, open: '{', end: '}', want: ""},
		{name: "wrong opener", input: `x{"a":1}`, open: '{', end: '}', want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, balancedSpan(tt.input, tt.open, tt.end))
		})
	}
}
