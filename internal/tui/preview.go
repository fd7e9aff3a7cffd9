package tui

import (
	"fmt"
	"strings"

	"ccvault/internal/search"
	"ccvault/internal/transcript"
)

// previewContext is the number of neighboring messages shown on each side
// of the hit.
const previewContext = 5

// renderPreview reads the hit's transcript and renders the hit message with
// its neighbors. Returns the content and the 0-based line of the hit header
// (-1 when the hit was not found).
func renderPreview(r search.Result, query string) (string, int) {
	msgs, _, err := transcript.ReadAll(r.Path)
	if err != nil {
		return "Preview error: " + err.Error(), -1
	}
	if len(msgs) == 0 {
		return "(empty session)", -1
	}

	hitIdx := -1
	for i, m := range msgs {
		if m.ID == r.MessageID {
			hitIdx = i
			break
		}
	}
	if hitIdx < 0 {
		hitIdx = 0
	}

	start := hitIdx - previewContext
	if start < 0 {
		start = 0
	}
	end := hitIdx + previewContext + 1
	if end > len(msgs) {
		end = len(msgs)
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
		lineCount += strings.Count(s, "\n") + 1
	}

	writeLine(stylePreviewMeta.Render(fmt.Sprintf("--- %s [%s] ---", r.SessionID, r.Project)))
	if start > 0 {
		writeLine(stylePreviewMeta.Render(fmt.Sprintf("... (%d messages before) ...", start)))
	}

	for i := start; i < end; i++ {
		m := msgs[i]
		isHit := i == hitIdx

		if i > start {
			writeLine(stylePreviewMeta.Render(strings.Repeat("-", 40)))
		}

		var label string
		switch m.Speaker {
		case transcript.SpeakerHuman:
			label = styleSpeakerHuman.Render("USER")
		case transcript.SpeakerAssistant:
			label = styleSpeakerAssistant.Render("ASST")
		default:
			label = stylePreviewMeta.Render("TOOL")
		}

		header := fmt.Sprintf("%s %s", label, stylePreviewMeta.Render(m.Timestamp.Format("2006-01-02 15:04")))
		if isHit {
			hitLine = lineCount
			header = styleHit.Render(">> ") + header
		}
		writeLine(header)

		text := m.Text
		if text == "" && m.ToolName != "" {
			text = "(tool: " + m.ToolName + ")"
		}
		for _, tl := range strings.Split(highlightQuery(text, query), "\n") {
			writeLine("  " + tl)
		}
		writeLine("")
	}

	if rest := len(msgs) - end; rest > 0 {
		writeLine(stylePreviewMeta.Render(fmt.Sprintf("... (%d messages after) ...", rest)))
	}

	return b.String(), hitLine
}

// highlightQuery wraps case-insensitive occurrences of the query terms in
// the highlight style.
func highlightQuery(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			replacement := styleHit.Render(text[pos : pos+len(term)])
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}
