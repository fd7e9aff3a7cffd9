package export

import (
	"encoding/json"
	"os"
	"time"

	"ccvault/internal/transcript"
)

type sessionData struct {
	Metadata   sessionMetadata   `json:"metadata"`
	Statistics sessionStatistics `json:"statistics"`
	Messages   []messageData     `json:"messages"`
}

type sessionMetadata struct {
	SessionID  string `json:"session_id"`
	SourceFile string `json:"source_file"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

type sessionStatistics struct {
	TotalMessages     int `json:"total_messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	ToolMessages      int `json:"tool_messages"`
	TotalInputTokens  int `json:"total_input_tokens"`
	TotalOutputTokens int `json:"total_output_tokens"`
	TotalTokens       int `json:"total_tokens"`
}

type messageData struct {
	ID        string            `json:"id"`
	Speaker   string            `json:"speaker"`
	Timestamp string            `json:"timestamp,omitempty"`
	Text      string            `json:"text,omitempty"`
	Thinking  string            `json:"thinking,omitempty"`
	Model     string            `json:"model,omitempty"`
	ToolName  string            `json:"tool_name,omitempty"`
	ToolUses  int               `json:"tool_uses,omitempty"`
	Usage     *transcript.Usage `json:"usage,omitempty"`
}

func writeData(msgs []transcript.Message, outPath, sessionID, srcFile string) error {
	data := sessionData{
		Metadata: sessionMetadata{
			SessionID:  sessionID,
			SourceFile: srcFile,
		},
	}
	if msgs[0].SessionID != "" {
		data.Metadata.SessionID = msgs[0].SessionID
	}
	if !msgs[0].Timestamp.IsZero() {
		data.Metadata.StartTime = msgs[0].Timestamp.Format(time.RFC3339)
	}
	if last := msgs[len(msgs)-1]; !last.Timestamp.IsZero() {
		data.Metadata.EndTime = last.Timestamp.Format(time.RFC3339)
	}

	for _, m := range msgs {
		data.Statistics.TotalMessages++
		switch m.Speaker {
		case transcript.SpeakerHuman:
			data.Statistics.UserMessages++
		case transcript.SpeakerAssistant:
			data.Statistics.AssistantMessages++
			if m.Usage != nil {
				data.Statistics.TotalInputTokens += m.Usage.InputTokens
				data.Statistics.TotalOutputTokens += m.Usage.OutputTokens
			}
		case transcript.SpeakerTool:
			data.Statistics.ToolMessages++
		}

		md := messageData{
			ID:       m.ID,
			Speaker:  string(m.Speaker),
			Text:     m.Text,
			Thinking: m.Thinking,
			Model:    m.Model,
			ToolName: m.ToolName,
			ToolUses: m.ToolUses,
			Usage:    m.Usage,
		}
		if !m.Timestamp.IsZero() {
			md.Timestamp = m.Timestamp.Format(time.RFC3339)
		}
		data.Messages = append(data.Messages, md)
	}
	data.Statistics.TotalTokens = data.Statistics.TotalInputTokens + data.Statistics.TotalOutputTokens

	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, buf, 0o644)
}
