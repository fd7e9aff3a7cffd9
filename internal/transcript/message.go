package transcript

import (
	"encoding/json"
	"time"
)

// Speaker identifies who produced a message.
type Speaker string

const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
	SpeakerTool      Speaker = "tool"
)

// Message is one normalized conversation event from a session log.
// Text holds the flattened plain-text content; structured blocks that carry
// no text (images, tool invocations) are counted but not included.
type Message struct {
	ID        string
	SessionID string
	Speaker   Speaker
	Timestamp time.Time
	Text      string
	Thinking  string
	Model     string
	ToolName  string
	ToolUses  int
	Usage     *Usage
	Raw       json.RawMessage // original record, kept for lossless output
	Line      int             // line number in the source file
}

// Usage is the token accounting attached to assistant messages.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Stats counts what a Reader saw while walking one file. Skipped lines never
// abort the scan; they only show up here.
type Stats struct {
	Lines        int
	Messages     int
	Malformed    int
	MissingField int
	UnknownType  int
	Empty        int
	OutOfOrder   int
}

func (s Stats) Skipped() int {
	return s.Malformed + s.MissingField + s.UnknownType + s.Empty
}
