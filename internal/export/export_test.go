package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVaultSession(t *testing.T, vault, project, session string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(vault, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, session+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func sampleSession(t *testing.T, vault string) string {
	t.Helper()
	return writeVaultSession(t, vault, "proj", "sess-1",
		`{"type":"user","uuid":"u1","sessionId":"sess-1","timestamp":"2024-06-01T10:00:00Z","message":{"content":"please fix the bug"}}`,
		`{"type":"assistant","uuid":"a1","sessionId":"sess-1","timestamp":"2024-06-01T10:00:05Z","message":{"model":"claude-sonnet-4","content":[{"type":"thinking","thinking":"finding it"},{"type":"text","text":"Fixed in main.go"},{"type":"tool_use"}],"usage":{"input_tokens":10,"output_tokens":25}}}`,
		`{"type":"tool_result","uuid":"t1","timestamp":"2024-06-01T10:00:06Z","result":{"output":"3 tests passed"}}`,
	)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"md": Markdown, "markdown": Markdown,
		"HTML": HTML,
		"json": Data, "data": Data,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestConvertAllWritesEveryFormat(t *testing.T) {
	vault := t.TempDir()
	sampleSession(t, vault)

	stats, err := ConvertAll(vault, []Format{Markdown, HTML, Data})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Converted[Markdown])
	assert.Equal(t, 1, stats.Converted[HTML])
	assert.Equal(t, 1, stats.Converted[Data])
	assert.Equal(t, 0, stats.Errors)

	md, err := os.ReadFile(filepath.Join(vault, "proj", "markdown", "sess-1.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## User")
	assert.Contains(t, string(md), "please fix the bug")
	assert.Contains(t, string(md), "## Claude")
	assert.Contains(t, string(md), "<summary>Thinking</summary>")
	assert.Contains(t, string(md), "3 tests passed")

	htmlOut, err := os.ReadFile(filepath.Join(vault, "proj", "html", "sess-1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(htmlOut), "<html")
	assert.Contains(t, string(htmlOut), "Fixed in main.go")

	var data sessionData
	raw, err := os.ReadFile(filepath.Join(vault, "proj", "data", "sess-1.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "sess-1", data.Metadata.SessionID)
	assert.Equal(t, 3, data.Statistics.TotalMessages)
	assert.Equal(t, 35, data.Statistics.TotalTokens)
	require.Len(t, data.Messages, 3)
	assert.Equal(t, "finding it", data.Messages[1].Thinking)
}

func TestConvertAllIsIncremental(t *testing.T) {
	vault := t.TempDir()
	src := sampleSession(t, vault)

	_, err := ConvertAll(vault, []Format{Markdown})
	require.NoError(t, err)

	stats, err := ConvertAll(vault, []Format{Markdown})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Converted[Markdown])
	assert.Equal(t, 1, stats.Skipped)

	// touching the source forces a reconversion
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	stats, err = ConvertAll(vault, []Format{Markdown})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Converted[Markdown])
}

func TestConvertAllSkipsUnreadableSession(t *testing.T) {
	vault := t.TempDir()
	writeVaultSession(t, vault, "proj", "empty")

	stats, err := ConvertAll(vault, []Format{Markdown})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Converted[Markdown])
	assert.Equal(t, 1, stats.Skipped)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 3000)
	got := truncate(long, 2000)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 2000)))
	assert.Contains(t, got, fmt.Sprintf("truncated, %d chars total", 3000))
	assert.Equal(t, "short", truncate("short", 2000))
}
