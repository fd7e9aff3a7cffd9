package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSession(t *testing.T, vault, project, session string, lines ...string) {
	t.Helper()
	dir := filepath.Join(vault, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, session+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestGenerate(t *testing.T) {
	vault := t.TempDir()
	writeSession(t, vault, "proj-a", "s1",
		`{"type":"user","uuid":"u1","timestamp":"2024-06-01T10:00:00Z","message":{"content":"write a sort function"}}`,
		`{"type":"assistant","uuid":"a1","timestamp":"2024-06-01T10:00:05Z","message":{"model":"claude-sonnet-4","content":[{"type":"thinking","thinking":"hm"},{"type":"text","text":"Here:\n`+"```"+`go\nfunc Sort() {}\n`+"```"+`"},{"type":"tool_use"}],"usage":{"input_tokens":100,"output_tokens":50}}}`,
	)
	writeSession(t, vault, "proj-b", "s2",
		`{"type":"user","uuid":"u2","timestamp":"2024-06-03T08:00:00Z","message":{"content":"hello"}}`,
		`{"type":"tool_result","uuid":"t1","timestamp":"2024-06-03T08:00:01Z","result":{"output":"done"}}`,
	)

	report, err := Generate(vault)
	require.NoError(t, err)

	tot := report.Totals
	assert.Equal(t, 2, tot.Sessions)
	assert.Equal(t, 4, tot.Messages)
	assert.Equal(t, 2, tot.HumanMessages)
	assert.Equal(t, 1, tot.AssistantMessages)
	assert.Equal(t, 1, tot.ToolMessages)
	assert.Equal(t, 1, tot.ThinkingBlocks)
	assert.Equal(t, 1, tot.CodeBlocks)
	assert.Equal(t, 1, tot.ToolUses)
	assert.Equal(t, 100, tot.InputTokens)
	assert.Equal(t, 50, tot.OutputTokens)
	assert.Equal(t, 1, tot.ModelsUsed["claude-sonnet-4"])
	assert.Equal(t, 2, tot.DailyMessages["2024-06-01"])
	assert.Equal(t, 2, tot.DailyMessages["2024-06-03"])
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), tot.FirstActivity)
	assert.Equal(t, time.Date(2024, 6, 3, 8, 0, 1, 0, time.UTC), tot.LastActivity)

	// projects are sorted by message count descending
	require.Len(t, report.Projects, 2)
	assert.Equal(t, 2, report.Projects[0].Messages)
}

func TestSaveJSON(t *testing.T) {
	vault := t.TempDir()
	writeSession(t, vault, "proj", "s1",
		`{"type":"user","uuid":"u1","timestamp":"2024-06-01T10:00:00Z","message":{"content":"hi there"}}`,
	)

	report, err := Generate(vault)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.SaveJSON(out))

	var back Report
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, report.Totals.Messages, back.Totals.Messages)
}
