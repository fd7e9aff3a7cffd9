package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ccvault/internal/transcript"
)

// Mode selects the matching strategy. It is fixed once per search call.
type Mode int

const (
	ModeSmart Mode = iota
	ModeExact
	ModeRegex
	ModeSemantic
)

func (m Mode) String() string {
	switch m {
	case ModeSmart:
		return "smart"
	case ModeExact:
		return "exact"
	case ModeRegex:
		return "regex"
	case ModeSemantic:
		return "semantic"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smart":
		return ModeSmart, nil
	case "exact":
		return ModeExact, nil
	case "regex":
		return ModeRegex, nil
	case "semantic":
		return ModeSemantic, nil
	}
	return ModeSmart, fmt.Errorf("%w: unknown mode %q", ErrInvalidQuery, s)
}

// Invalid-query conditions abort the search before any scanning begins.
// Everything else degrades to skip-and-continue.
var (
	ErrInvalidQuery = errors.New("invalid query")
	ErrEmptyQuery   = fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	ErrBadLimit     = fmt.Errorf("%w: max results must be >= 1", ErrInvalidQuery)
	ErrBadPattern   = fmt.Errorf("%w: pattern does not compile", ErrInvalidQuery)
	ErrBadSpeaker   = fmt.Errorf("%w: speaker filter must be human or assistant", ErrInvalidQuery)
)

const (
	DefaultContextSize = 150
	DefaultMaxResults  = 20
)

// Query describes one search request. Zero values for ContextSize and
// MaxResults take the documented defaults.
type Query struct {
	Text          string
	Mode          Mode
	CaseSensitive bool
	Speaker       transcript.Speaker // "" means both human and assistant
	Since         time.Time
	Until         time.Time
	ContextSize   int
	MaxResults    int
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}
	if q.MaxResults != 0 && q.MaxResults < 1 {
		return ErrBadLimit
	}
	if q.ContextSize < 0 {
		return fmt.Errorf("%w: negative context size", ErrInvalidQuery)
	}
	switch q.Speaker {
	case "", transcript.SpeakerHuman, transcript.SpeakerAssistant:
	default:
		return ErrBadSpeaker
	}
	return nil
}

func (q Query) withDefaults() Query {
	if q.ContextSize == 0 {
		q.ContextSize = DefaultContextSize
	}
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	return q
}

// Result is one ranked hit. Scores order results within a single query; they
// are not comparable across queries or modes.
type Result struct {
	SessionID   string
	MessageID   string
	Project     string
	Path        string
	Speaker     transcript.Speaker
	Timestamp   time.Time
	Score       float64
	MatchedText string
	Snippet     string
	Line        int
}

// Outcome is the corpus-level answer to one search call. Skip counts record
// data-quality degradation that never aborts the scan; Downgraded flags that
// semantic mode fell back to smart matching.
type Outcome struct {
	Results        []Result
	Downgraded     bool
	FilesScanned   int
	FilesSkipped   int
	EntriesSkipped int
}
