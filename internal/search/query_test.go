package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ccvault/internal/transcript"
)

func TestParseModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeSmart, ModeExact, ModeRegex, ModeSemantic} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSmart, got)

	_, err = ParseMode("fuzzy")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestQueryValidate(t *testing.T) {
	assert.ErrorIs(t, Query{Text: "   "}.Validate(), ErrEmptyQuery)
	assert.ErrorIs(t, Query{Text: "q", MaxResults: -1}.Validate(), ErrBadLimit)
	assert.ErrorIs(t, Query{Text: "q", Speaker: "tool"}.Validate(), ErrBadSpeaker)
	assert.ErrorIs(t, Query{Text: "q", ContextSize: -5}.Validate(), ErrInvalidQuery)

	assert.NoError(t, Query{Text: "q"}.Validate())
	assert.NoError(t, Query{Text: "q", Speaker: transcript.SpeakerHuman}.Validate())
}

func TestQueryDefaults(t *testing.T) {
	q := Query{Text: "q"}.withDefaults()
	assert.Equal(t, DefaultContextSize, q.ContextSize)
	assert.Equal(t, DefaultMaxResults, q.MaxResults)

	q = Query{Text: "q", ContextSize: 30, MaxResults: 5}.withDefaults()
	assert.Equal(t, 30, q.ContextSize)
	assert.Equal(t, 5, q.MaxResults)
}
