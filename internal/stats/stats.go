package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"ccvault/internal/scan"
	"ccvault/internal/transcript"
)

var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// Report aggregates usage across all backed-up sessions.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Totals      Totals         `json:"totals"`
	Projects    []ProjectStats `json:"projects"`
}

type Totals struct {
	Sessions          int            `json:"sessions"`
	Messages          int            `json:"messages"`
	HumanMessages     int            `json:"human_messages"`
	AssistantMessages int            `json:"assistant_messages"`
	ToolMessages      int            `json:"tool_messages"`
	ToolUses          int            `json:"tool_uses"`
	ThinkingBlocks    int            `json:"thinking_blocks"`
	CodeBlocks        int            `json:"code_blocks"`
	InputTokens       int            `json:"input_tokens"`
	OutputTokens      int            `json:"output_tokens"`
	ModelsUsed        map[string]int `json:"models_used"`
	DailyMessages     map[string]int `json:"daily_messages"`
	FirstActivity     time.Time      `json:"first_activity,omitempty"`
	LastActivity      time.Time      `json:"last_activity,omitempty"`
}

type ProjectStats struct {
	Name              string    `json:"name"`
	Sessions          int       `json:"sessions"`
	Messages          int       `json:"messages"`
	HumanMessages     int       `json:"human_messages"`
	AssistantMessages int       `json:"assistant_messages"`
	ToolUses          int       `json:"tool_uses"`
	InputTokens       int       `json:"input_tokens"`
	OutputTokens      int       `json:"output_tokens"`
	FirstActivity     time.Time `json:"first_activity,omitempty"`
	LastActivity      time.Time `json:"last_activity,omitempty"`
}

func (t Totals) String() string {
	return fmt.Sprintf("sessions=%d messages=%d (human=%d assistant=%d tool=%d) tokens=%d/%d",
		t.Sessions, t.Messages, t.HumanMessages, t.AssistantMessages, t.ToolMessages,
		t.InputTokens, t.OutputTokens)
}

// Generate walks every project under vaultDir and aggregates per-session
// statistics. Unreadable sessions are skipped, not fatal.
func Generate(vaultDir string) (*Report, error) {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Totals: Totals{
			ModelsUsed:    make(map[string]int),
			DailyMessages: make(map[string]int),
		},
	}

	projects, err := scan.Projects(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}

	for _, projectDir := range projects {
		ps := ProjectStats{Name: filepath.Base(projectDir)}

		matches, _ := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
		for _, srcFile := range matches {
			msgs, _, err := transcript.ReadAll(srcFile)
			if err != nil {
				log.Warn().Str("file", srcFile).Err(err).Msg("skipping session in stats")
				continue
			}
			if len(msgs) == 0 {
				continue
			}
			ps.Sessions++
			accumulate(&ps, report, msgs)
		}

		if ps.Sessions == 0 {
			continue
		}
		report.Totals.Sessions += ps.Sessions
		report.Projects = append(report.Projects, ps)
	}

	sort.Slice(report.Projects, func(i, j int) bool {
		return report.Projects[i].Messages > report.Projects[j].Messages
	})
	return report, nil
}

func accumulate(ps *ProjectStats, report *Report, msgs []transcript.Message) {
	t := &report.Totals
	for _, m := range msgs {
		ps.Messages++
		t.Messages++
		t.DailyMessages[m.Timestamp.UTC().Format("2006-01-02")]++

		switch m.Speaker {
		case transcript.SpeakerHuman:
			ps.HumanMessages++
			t.HumanMessages++
		case transcript.SpeakerAssistant:
			ps.AssistantMessages++
			t.AssistantMessages++
			if m.Thinking != "" {
				t.ThinkingBlocks++
			}
			t.CodeBlocks += len(codeBlockRe.FindAllString(m.Text, -1))
			if m.Model != "" {
				t.ModelsUsed[m.Model]++
			}
			if m.Usage != nil {
				ps.InputTokens += m.Usage.InputTokens
				ps.OutputTokens += m.Usage.OutputTokens
				t.InputTokens += m.Usage.InputTokens
				t.OutputTokens += m.Usage.OutputTokens
			}
		case transcript.SpeakerTool:
			t.ToolMessages++
		}
		ps.ToolUses += m.ToolUses
		t.ToolUses += m.ToolUses

		if ps.FirstActivity.IsZero() || m.Timestamp.Before(ps.FirstActivity) {
			ps.FirstActivity = m.Timestamp
		}
		if m.Timestamp.After(ps.LastActivity) {
			ps.LastActivity = m.Timestamp
		}
		if t.FirstActivity.IsZero() || m.Timestamp.Before(t.FirstActivity) {
			t.FirstActivity = m.Timestamp
		}
		if m.Timestamp.After(t.LastActivity) {
			t.LastActivity = m.Timestamp
		}
	}
}

// SaveJSON writes the report to path.
func (r *Report) SaveJSON(path string) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
