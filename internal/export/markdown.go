package export

import (
	"fmt"
	"os"
	"strings"

	"ccvault/internal/transcript"
)

const toolOutputLimit = 2000

func writeMarkdown(msgs []transcript.Message, outPath, sessionID string) error {
	var b strings.Builder

	b.WriteString("# Claude Conversation Log\n\n")
	fmt.Fprintf(&b, "**Session ID:** `%s`\n\n", sessionID)
	if !msgs[0].Timestamp.IsZero() {
		fmt.Fprintf(&b, "**Date:** %s\n\n", msgs[0].Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	b.WriteString("---\n\n")

	for _, m := range msgs {
		switch m.Speaker {
		case transcript.SpeakerHuman:
			b.WriteString("## User\n\n")
			b.WriteString(m.Text)
			b.WriteString("\n\n")

		case transcript.SpeakerAssistant:
			b.WriteString("## Claude\n\n")
			if m.Thinking != "" {
				b.WriteString("<details>\n<summary>Thinking</summary>\n\n")
				b.WriteString(m.Thinking)
				b.WriteString("\n\n</details>\n\n")
			}
			if m.Text != "" {
				b.WriteString(m.Text)
				b.WriteString("\n\n")
			}
			if m.ToolUses > 0 {
				fmt.Fprintf(&b, "*%d tool call(s)*\n\n", m.ToolUses)
			}

		case transcript.SpeakerTool:
			if m.ToolName != "" {
				fmt.Fprintf(&b, "### Tool: %s\n\n", m.ToolName)
			} else {
				b.WriteString("### Tool Result\n\n")
			}
			if m.Text != "" {
				b.WriteString("```\n")
				b.WriteString(truncate(m.Text, toolOutputLimit))
				b.WriteString("\n```\n\n")
			}
		}
		b.WriteString("---\n\n")
	}

	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s\n... (truncated, %d chars total)", s[:limit], len(s))
}
