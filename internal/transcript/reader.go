package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// skip reasons returned by ParseLine; the Reader maps them onto Stats counters.
var (
	errMalformed    = errors.New("malformed json")
	errUnknownType  = errors.New("unknown entry type")
	errMissingField = errors.New("missing required field")
	errEmptyContent = errors.New("no content")
)

type record struct {
	Type      string          `json:"type"`
	IsMeta    bool            `json:"isMeta"`
	UUID      string          `json:"uuid"`
	SessionID string          `json:"sessionId"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
	Tool      *toolInfo       `json:"tool"`
	Result    *toolResult     `json:"result"`
}

type messageBody struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage"`
}

type contentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking"`
}

type toolInfo struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type toolResult struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// ParseLine converts one JSONL line into a Message. It returns a skip error
// for lines that are not conversation events; callers decide whether skips
// matter. The line is never modified.
func ParseLine(line []byte) (*Message, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, errMalformed
	}
	if rec.IsMeta {
		return nil, errUnknownType
	}

	var speaker Speaker
	switch rec.Type {
	case "user":
		speaker = SpeakerHuman
	case "assistant":
		speaker = SpeakerAssistant
	case "tool_use", "tool_result":
		speaker = SpeakerTool
	default:
		return nil, errUnknownType
	}

	if rec.UUID == "" || rec.Timestamp == "" {
		return nil, errMissingField
	}
	ts := parseTimestamp(rec.Timestamp)
	if ts.IsZero() {
		return nil, errMissingField
	}

	msg := &Message{
		ID:        rec.UUID,
		SessionID: rec.SessionID,
		Speaker:   speaker,
		Timestamp: ts,
		Raw:       append(json.RawMessage(nil), line...),
	}

	switch rec.Type {
	case "user":
		var body messageBody
		if err := json.Unmarshal(rec.Message, &body); err != nil {
			return nil, errMissingField
		}
		c := extractContent(body.Content)
		if c.text == "" {
			return nil, errEmptyContent
		}
		msg.Text = c.text

	case "assistant":
		var body messageBody
		if err := json.Unmarshal(rec.Message, &body); err != nil {
			return nil, errMissingField
		}
		c := extractContent(body.Content)
		if c.text == "" && c.thinking == "" && c.toolUses == 0 {
			return nil, errEmptyContent
		}
		msg.Text = c.text
		msg.Thinking = c.thinking
		msg.ToolUses = c.toolUses
		msg.Model = body.Model
		msg.Usage = body.Usage

	case "tool_use":
		if rec.Tool != nil {
			msg.ToolName = rec.Tool.Name
		}
		if msg.ToolName == "" {
			msg.ToolName = "unknown"
		}
		msg.ToolUses = 1

	case "tool_result":
		if rec.Result != nil {
			msg.Text = rec.Result.Output
		}
	}

	return msg, nil
}

type extracted struct {
	text     string
	thinking string
	toolUses int
}

func extractContent(raw json.RawMessage) extracted {
	// plain-string content is used verbatim
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return extracted{text: strings.TrimSpace(s)}
	}

	// block arrays: text blocks concatenated with newlines, thinking kept
	// aside, tool_use blocks only counted
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		var textParts, thinkParts []string
		toolUses := 0
		for _, b := range blocks {
			switch b.Type {
			case "text":
				if b.Text != "" {
					textParts = append(textParts, b.Text)
				}
			case "thinking":
				if b.Thinking != "" {
					thinkParts = append(thinkParts, b.Thinking)
				} else if b.Text != "" {
					thinkParts = append(thinkParts, b.Text)
				}
			case "tool_use":
				toolUses++
			}
		}
		return extracted{
			text:     strings.TrimSpace(strings.Join(textParts, "\n")),
			thinking: strings.TrimSpace(strings.Join(thinkParts, "\n")),
			toolUses: toolUses,
		}
	}

	return extracted{}
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// Reader streams Messages from one session file. It is restartable by
// reopening: no state survives Close. Unparseable lines are counted and
// skipped, never escalated.
type Reader struct {
	f       *os.File
	sc      *bufio.Scanner
	path    string
	session string // fallback session id derived from the file name
	stats   Stats
	lastTS  time.Time
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		f:       f,
		sc:      sc,
		path:    path,
		session: strings.TrimSuffix(filepath.Base(path), ".jsonl"),
	}, nil
}

// Next returns the next message, or io.EOF when the file is exhausted.
func (r *Reader) Next() (*Message, error) {
	for r.sc.Scan() {
		r.stats.Lines++
		line := r.sc.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, err := ParseLine(line)
		if err != nil {
			switch {
			case errors.Is(err, errMalformed):
				r.stats.Malformed++
				log.Debug().Str("file", r.path).Int("line", r.stats.Lines).Msg("skipping malformed line")
			case errors.Is(err, errMissingField):
				r.stats.MissingField++
			case errors.Is(err, errEmptyContent):
				r.stats.Empty++
			default:
				r.stats.UnknownType++
			}
			continue
		}

		if msg.SessionID == "" {
			msg.SessionID = r.session
		}
		msg.Line = r.stats.Lines

		// timestamps are trusted as stored; going backwards is observed,
		// never corrected
		if !r.lastTS.IsZero() && msg.Timestamp.Before(r.lastTS) {
			r.stats.OutOfOrder++
			log.Warn().Str("file", r.path).Int("line", msg.Line).
				Time("ts", msg.Timestamp).Time("prev", r.lastTS).
				Msg("out-of-order timestamp")
		}
		r.lastTS = msg.Timestamp

		r.stats.Messages++
		return msg, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Reader) Stats() Stats { return r.stats }

func (r *Reader) Close() error { return r.f.Close() }

// ReadAll parses a whole session file in one call. Converters and the stats
// aggregator use this; the search engine streams with Next instead.
func ReadAll(path string) ([]Message, Stats, error) {
	r, err := Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer r.Close()

	var msgs []Message
	for {
		m, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return msgs, r.Stats(), err
		}
		msgs = append(msgs, *m)
	}
	return msgs, r.Stats(), nil
}
