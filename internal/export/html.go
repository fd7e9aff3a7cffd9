package export

import (
	"fmt"
	"html"
	"os"
	"strings"

	"ccvault/internal/transcript"
)

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Claude Session - %s</title>
<style>
:root {
  --user-color: #3498db;
  --assistant-color: #2ecc71;
  --tool-color: #f39c12;
  --bg-color: #f5f5f5;
  --card-bg: white;
  --text-color: #333;
}
body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  line-height: 1.6;
  color: var(--text-color);
  max-width: 900px;
  margin: 0 auto;
  padding: 20px;
  background: var(--bg-color);
}
.header {
  background: var(--card-bg);
  padding: 20px;
  border-radius: 8px;
  margin-bottom: 20px;
  box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
h1 { color: #2c3e50; margin: 0 0 10px 0; }
.metadata { color: #666; font-size: 0.9em; }
.message {
  background: var(--card-bg);
  padding: 15px 20px;
  margin-bottom: 15px;
  border-radius: 8px;
  box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
.user { border-left: 4px solid var(--user-color); }
.assistant { border-left: 4px solid var(--assistant-color); }
.tool { border-left: 4px solid var(--tool-color); background: #fffbf0; }
.role { font-weight: bold; margin-bottom: 10px; }
.role-user { color: var(--user-color); }
.role-assistant { color: var(--assistant-color); }
.role-tool { color: var(--tool-color); }
.content { white-space: pre-wrap; word-wrap: break-word; }
.thinking {
  background: #f8f9fa;
  border: 1px solid #e9ecef;
  border-radius: 4px;
  padding: 10px;
  margin-bottom: 10px;
  font-size: 0.9em;
  color: #666;
}
.thinking summary { cursor: pointer; font-weight: bold; }
pre {
  background: #f4f4f4;
  padding: 10px;
  border-radius: 4px;
  overflow-x: auto;
  font-family: 'Courier New', monospace;
  font-size: 0.9em;
}
</style>
</head>
<body>
<div class="header">
<h1>Claude Conversation Log</h1>
<div class="metadata">
<p><strong>Session:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Messages:</strong> %d</p>
</div>
</div>
`

func writeHTML(msgs []transcript.Message, outPath, sessionID string) error {
	var b strings.Builder

	dateStr := ""
	if !msgs[0].Timestamp.IsZero() {
		dateStr = msgs[0].Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	title := sessionID
	if len(title) > 16 {
		title = title[:16]
	}
	fmt.Fprintf(&b, htmlHeader, html.EscapeString(title), html.EscapeString(sessionID), html.EscapeString(dateStr), len(msgs))

	for _, m := range msgs {
		switch m.Speaker {
		case transcript.SpeakerHuman:
			b.WriteString("<div class=\"message user\">\n")
			b.WriteString("<div class=\"role role-user\">User</div>\n")
			fmt.Fprintf(&b, "<div class=\"content\">%s</div>\n", html.EscapeString(m.Text))
			b.WriteString("</div>\n")

		case transcript.SpeakerAssistant:
			b.WriteString("<div class=\"message assistant\">\n")
			b.WriteString("<div class=\"role role-assistant\">Claude</div>\n")
			if m.Thinking != "" {
				b.WriteString("<details class=\"thinking\">\n<summary>Thinking</summary>\n")
				fmt.Fprintf(&b, "<p>%s</p>\n</details>\n", html.EscapeString(m.Thinking))
			}
			fmt.Fprintf(&b, "<div class=\"content\">%s</div>\n", html.EscapeString(m.Text))
			b.WriteString("</div>\n")

		case transcript.SpeakerTool:
			b.WriteString("<div class=\"message tool\">\n")
			if m.ToolName != "" {
				fmt.Fprintf(&b, "<div class=\"role role-tool\">Tool: %s</div>\n", html.EscapeString(m.ToolName))
			} else {
				b.WriteString("<div class=\"role role-tool\">Tool Result</div>\n")
			}
			if m.Text != "" {
				fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(truncate(m.Text, toolOutputLimit)))
			}
			b.WriteString("</div>\n")
		}
	}

	b.WriteString("\n</body>\n</html>")
	return os.WriteFile(outPath, []byte(b.String()), 0o644)
}
