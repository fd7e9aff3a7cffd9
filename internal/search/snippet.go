package search

// buildSnippet expands the match anchor by contextSize runes on each side,
// clipped to the message's own text. Clipped edges are marked with ellipses.
// An empty anchor (no literal occurrence) yields the head of the text.
func buildSnippet(text string, anchor span, contextSize int) (snippet, matched string) {
	runes := []rune(text)

	if anchor.start >= anchor.end {
		head := contextSize * 2
		if len(runes) > head {
			return string(runes[:head]) + "...", ""
		}
		return text, ""
	}

	matched = text[anchor.start:anchor.end]
	runePos := len([]rune(text[:anchor.start]))
	matchLen := len([]rune(matched))

	start := runePos - contextSize
	if start < 0 {
		start = 0
	}
	end := runePos + matchLen + contextSize
	if end > len(runes) {
		end = len(runes)
	}

	snippet = string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet, matched
}
