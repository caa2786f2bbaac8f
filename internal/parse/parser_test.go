package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/domain"
)

func TestForFormat(t *testing.T) {
	for _, f := range []domain.Format{
		domain.FormatRenderer,
		domain.FormatHTTP,
		domain.FormatSyncApp,
		domain.FormatPerformance,
		domain.FormatMountApp,
	} {
		t.Run(string(f), func(t *testing.T) {
			p, err := ForFormat(f)
			require.NoError(t, err)
			assert.Equal(t, f, p.Format())
		})
	}
}

func TestForFormatUnknown(t *testing.T) {
	_, err := ForFormat(domain.FormatUnknown)
	assert.Error(t, err)
}

func TestIsContinuation(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"    at Pool.connect (src/db/pool.js:88:15)", true},
		{"\tat async Repository.find (src/db/repository.js:41:9)", true},
		{"at top-level no indent", false},
		{"    attention: not a frame", false},
		{"regular message", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsContinuation(tt.line), tt.line)
	}
}

func TestParseFrames(t *testing.T) {
	lines := []string{
		"    at Pool.connect (src/db/pool.js:88:15)",
		"    at async Repository.find (src/db/repository.js:41:9)",
		"    at processTicksAndRejections",
	}

	frames := ParseFrames(lines)
	require.Len(t, frames, 3)

	assert.Equal(t, domain.StackFrame{
		Function: "Pool.connect",
		File:     "src/db/pool.js",
		Line:     88,
		Column:   15,
	}, frames[0])

	assert.True(t, frames[1].Async)
	assert.Equal(t, "Repository.find", frames[1].Function)
	assert.Equal(t, 41, frames[1].Line)

	// A frame without location info keeps the function name only.
	assert.Equal(t, "processTicksAndRejections", frames[2].Function)
	assert.Empty(t, frames[2].File)
}

func TestParseFramesKeepsUnparseableLines(t *testing.T) {
	frames := ParseFrames([]string{"  something that is not a frame"})
	require.Len(t, frames, 1)
	assert.Equal(t, "something that is not a frame", frames[0].Function)
}

func TestJoinStack(t *testing.T) {
	lines := []string{"    at a (f.js:1:1)", "    at b (g.js:2:2)"}
	assert.Equal(t, "    at a (f.js:1:1)\n    at b (g.js:2:2)", JoinStack(lines))
}

func TestParseKVTail(t *testing.T) {
	pairs := parseKVTail("user_id=42, url=/api?q=a=b, , empty, k= v ")
	require.Len(t, pairs, 3)
	assert.Equal(t, [2]string{"user_id", "42"}, pairs[0])
	// Values keep embedded '=' characters.
	assert.Equal(t, [2]string{"url", "/api?q=a=b"}, pairs[1])
	assert.Equal(t, [2]string{"k", "v"}, pairs[2])
}

func TestContextReset(t *testing.T) {
	ctx := &Context{Service: "svc", StackLines: []string{"    at a"}}
	ctx.Reset()
	assert.Empty(t, ctx.StackLines)
	assert.Equal(t, "svc", ctx.Service)
}

// Parsing the same raw line twice must yield byte-identical record JSON;
// parsers hold no per-line state beyond the explicit context.
func TestParseLineIsIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		line   string
	}{
		{
			name:   "renderer",
			parser: NewRenderer(),
			line:   "[2024-01-15 10:30:00] [ERROR] [db] query failed | errMsg=timeout, attempt=2, user_id=u-9",
		},
		{
			name:   "http",
			parser: NewHTTP(),
			line:   "[2024-03-14T11:02:10.214Z] [INFO] GET /api/users | action=HTTP_RESPONDED, method=GET, url=/api/users, status=200, request_id=req-5501",
		},
		{
			name:   "syncapp",
			parser: NewSyncApp(),
			line:   `{"Timestamp":"2024-03-14T13:45:01.220Z","Level":"info","Message":"sync cycle started","Caller":"sync/engine.go:88","cycle":311}`,
		},
		{
			name:   "performance",
			parser: NewPerformance(),
			line:   `[2024-03-14T15:10:00.000Z] [INFO] perf snapshot | traces=[{"name":"paint","ms":12.4}] system={"cpu":0.42,"mem_mb":512}`,
		},
		{
			name:   "mountapp",
			parser: fixedMountApp(14),
			line:   "Thursday 2024/03 09:15:23 Mounted D:\\shares\\projects as /mnt/projects",
		},
		{
			name:   "generic",
			parser: NewGeneric(),
			line:   "completely unstructured line at 2024-01-15T10:30:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.parser.ParseLine(tt.line, &Context{Service: "app"})
			require.NoError(t, err)
			require.NotNil(t, first)

			second, err := tt.parser.ParseLine(tt.line, &Context{Service: "app"})
			require.NoError(t, err)
			require.NotNil(t, second)

			a, err := json.Marshal(first)
			require.NoError(t, err)
			b, err := json.Marshal(second)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))
		})
	}
}
