package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzorec/logsift/internal/config"
	"github.com/mzorec/logsift/internal/domain"
)

const rendererFixture = `[2024-01-15 10:30:00] [INFO] [engine] started | attempt=1
[2024-01-15 10:30:01] [ERROR] [db] query failed | errMsg=connection refused
`

func testGlobals() (*Globals, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Globals{
		Format: "ndjson",
		Level:  "TRACE",
		Stdout: stdout,
		Stderr: stderr,
		Config: config.Default(),
	}, stdout, stderr
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ndjsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line: %s", line)
		out = append(out, m)
	}
	return out
}

func TestVersionCmd(t *testing.T) {
	globals, stdout, _ := testGlobals()
	require.NoError(t, (&VersionCmd{}).Run(globals))
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "version", lines[0]["type"])
	assert.Equal(t, Version, lines[0]["version"])

	globals, stdout, _ = testGlobals()
	globals.Format = "text"
	require.NoError(t, (&VersionCmd{}).Run(globals))
	assert.Contains(t, stdout.String(), "logsift version")
}

func TestGlobalsDebugGatedByVerbose(t *testing.T) {
	globals, _, stderr := testGlobals()
	globals.Debug("hidden %d", 1)
	assert.Empty(t, stderr.String())

	globals.Verbose = true
	globals.Debug("shown %d", 2)
	assert.Contains(t, stderr.String(), "[DEBUG] shown 2")
}

func TestNewGlobalsWithConfigFallbacks(t *testing.T) {
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Verbose = true

	g := NewGlobalsWithConfig(&CLI{Format: "ndjson", Level: "TRACE"}, cfg)
	assert.True(t, g.Quiet)
	assert.True(t, g.Verbose)

	g = NewGlobalsWithConfig(&CLI{Format: "ndjson", Level: "TRACE", Quiet: true}, config.Default())
	assert.True(t, g.Quiet)
	assert.False(t, g.Verbose)
}

func TestOutputErrorCommon(t *testing.T) {
	globals, stdout, _ := testGlobals()
	err := outputErrorCommon(globals, "FILE_NOT_FOUND", "nope")
	require.Error(t, err)
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["type"])
	assert.Equal(t, "FILE_NOT_FOUND", lines[0]["code"])

	globals, stdout, stderr := testGlobals()
	globals.Format = "text"
	err = outputErrorCommon(globals, "BAD_FILTER", "invalid")
	require.Error(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error [BAD_FILTER]: invalid")
}

func TestNormalizeCmd(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()

	cmd := &NormalizeCmd{File: path}
	require.NoError(t, cmd.Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 3)

	assert.Equal(t, "started", lines[0]["message"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "query failed", lines[1]["message"])
	assert.Equal(t, "ERROR", lines[1]["level"])

	summary := lines[2]
	assert.Equal(t, "summary", summary["type"])
	assert.Equal(t, string(domain.FormatRenderer), summary["format"])
	assert.Equal(t, float64(2), summary["total_lines"])
	assert.Equal(t, float64(2), summary["successful_logs"])
}

func TestNormalizeCmdLevelFilter(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()
	globals.Level = "ERROR"

	require.NoError(t, (&NormalizeCmd{File: path}).Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 2)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "summary", lines[1]["type"])
}

func TestNormalizeCmdQuietSuppressesSummary(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()
	globals.Quiet = true

	require.NoError(t, (&NormalizeCmd{File: path}).Run(globals))
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 2)
	for _, line := range lines {
		_, wrapped := line["type"]
		assert.False(t, wrapped)
	}
}

func TestNormalizeCmdMissingFile(t *testing.T) {
	globals, stdout, _ := testGlobals()
	err := (&NormalizeCmd{File: filepath.Join(t.TempDir(), "gone.log")}).Run(globals)
	require.Error(t, err)
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "FILE_NOT_FOUND", lines[0]["code"])
}

func TestNormalizeCmdBadFilter(t *testing.T) {
	globals, stdout, _ := testGlobals()
	err := (&NormalizeCmd{File: "whatever.log", Pattern: "[unclosed"}).Run(globals)
	require.Error(t, err)
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "BAD_FILTER", lines[0]["code"])
}

func TestDetectCmd(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()

	require.NoError(t, (&DetectCmd{File: path, Sample: 100}).Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "detection", lines[0]["type"])
	det := lines[0]["detection"].(map[string]any)
	assert.Equal(t, string(domain.FormatRenderer), det["format"])
	assert.Greater(t, det["confidence"].(float64), 0.0)
}

func TestDetectCmdText(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()
	globals.Format = "text"

	require.NoError(t, (&DetectCmd{File: path, Sample: 100}).Run(globals))
	out := stdout.String()
	assert.Contains(t, out, "Format:     RENDERER")
	assert.Contains(t, out, "Signals:")
}

func TestAnalyzeCmd(t *testing.T) {
	path := writeFixture(t, "app.log", rendererFixture)
	globals, stdout, _ := testGlobals()

	require.NoError(t, (&AnalyzeCmd{File: path}).Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "analysis", lines[0]["type"])

	analysis := lines[0]["analysis"].(map[string]any)
	issues := analysis["detectedIssues"].([]any)
	require.Len(t, issues, 1)
	issue := issues[0].(map[string]any)
	assert.Equal(t, "conn-refused", issue["pattern_id"])
	assert.Equal(t, float64(1), issue["occurrence_count"])

	counts := analysis["levelCounts"].(map[string]any)
	assert.Equal(t, float64(1), counts["INFO"])
	assert.Equal(t, float64(1), counts["ERROR"])
}

func TestAnalyzeCmdPersistPatterns(t *testing.T) {
	path := writeFixture(t, "app.log", strings.Repeat("[2024-01-15 10:30:00] [INFO] [engine] tick 1 | attempt=1\n", 6))
	store := filepath.Join(t.TempDir(), "store.json")
	globals, stdout, _ := testGlobals()

	cmd := &AnalyzeCmd{File: path, PersistPatterns: true, PatternStore: store}
	require.NoError(t, cmd.Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	annotated := lines[0]["annotated_clusters"].([]any)
	require.NotEmpty(t, annotated)
	assert.Equal(t, true, annotated[0].(map[string]any)["is_new"])

	// Second run against the same store marks the template as known.
	globals2, stdout2, _ := testGlobals()
	require.NoError(t, cmd.Run(globals2))
	annotated = ndjsonLines(t, stdout2)[0]["annotated_clusters"].([]any)
	assert.Equal(t, false, annotated[0].(map[string]any)["is_new"])
}

func TestBatchCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte(rendererFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte(rendererFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	globals, stdout, _ := testGlobals()
	require.NoError(t, (&BatchCmd{Dir: dir, Glob: "*.log"}).Run(globals))

	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 3)
	assert.Equal(t, "summary", lines[0]["type"])
	assert.Equal(t, "summary", lines[1]["type"])

	archive := lines[2]
	assert.Equal(t, "archive_analysis", archive["type"])
	analysis := archive["analysis"].(map[string]any)
	files := analysis["files"].([]any)
	assert.Len(t, files, 2)

	issues := analysis["detectedIssues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, float64(2), issues[0].(map[string]any)["occurrence_count"])
}

func TestBatchCmdSkipsUndetectableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte(rendererFixture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.log"), []byte("free text\nwith no structure\n"), 0o644))

	globals, stdout, _ := testGlobals()
	require.NoError(t, (&BatchCmd{Dir: dir, Glob: "*.log"}).Run(globals))

	lines := ndjsonLines(t, stdout)
	var skipped, archives int
	for _, line := range lines {
		switch line["type"] {
		case "error":
			skipped++
			assert.Equal(t, "FILE_SKIPPED", line["code"])
		case "archive_analysis":
			archives++
		}
	}
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, archives)
}

func TestBatchCmdEmptyDir(t *testing.T) {
	globals, stdout, _ := testGlobals()
	err := (&BatchCmd{Dir: t.TempDir(), Glob: "*.log"}).Run(globals)
	require.Error(t, err)
	lines := ndjsonLines(t, stdout)
	require.Len(t, lines, 1)
	assert.Equal(t, "NO_FILES", lines[0]["code"])
}

func TestBatchCmdWritesPerFileOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte(rendererFixture), 0o644))
	out := filepath.Join(t.TempDir(), "out")

	globals, _, _ := testGlobals()
	require.NoError(t, (&BatchCmd{Dir: dir, Glob: "*.log", Out: out}).Run(globals))

	data, err := os.ReadFile(filepath.Join(out, "a.log.jsonl"))
	require.NoError(t, err)
	records := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, records, 2)
}

func TestDemoCmdDetectsEverySample(t *testing.T) {
	globals, stdout, _ := testGlobals()
	require.NoError(t, (&DemoCmd{}).Run(globals))

	formats := map[string]string{}
	for _, line := range ndjsonLines(t, stdout) {
		if line["type"] == "summary" {
			formats[line["file"].(string)] = line["format"].(string)
		}
	}

	assert.Equal(t, map[string]string{
		"renderer.log":    string(domain.FormatRenderer),
		"http.log":        string(domain.FormatHTTP),
		"syncapp.log":     string(domain.FormatSyncApp),
		"performance.log": string(domain.FormatPerformance),
		"mountapp.log":    string(domain.FormatMountApp),
	}, formats)
}

func TestDemoCmdUnknownSample(t *testing.T) {
	globals, stdout, _ := testGlobals()
	err := (&DemoCmd{Only: "nope"}).Run(globals)
	require.Error(t, err)
	assert.Equal(t, "UNKNOWN_SAMPLE", ndjsonLines(t, stdout)[0]["code"])
}

func TestBuildFilterChain(t *testing.T) {
	globals, _, _ := testGlobals()

	chain, err := buildFilterChain(globals, "", "", "")
	require.NoError(t, err)
	assert.True(t, chain.Match(&domain.Record{Level: domain.LevelTrace}))

	globals.Level = "WARN"
	chain, err = buildFilterChain(globals, "fail", "noise", "api")
	require.NoError(t, err)
	assert.True(t, chain.Match(&domain.Record{Level: domain.LevelError, Service: "api", Message: "failure"}))
	assert.False(t, chain.Match(&domain.Record{Level: domain.LevelError, Service: "api", Message: "noise failure"}))
	assert.False(t, chain.Match(&domain.Record{Level: domain.LevelInfo, Service: "api", Message: "failure"}))
	assert.False(t, chain.Match(&domain.Record{Level: domain.LevelError, Service: "cron", Message: "failure"}))

	_, err = buildFilterChain(globals, "[bad", "", "")
	assert.Error(t, err)
}
