package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	toks := tokenize("Fix the DB-pool, v2!", true)
	var words []string
	for _, tok := range toks {
		words = append(words, tok.text)
	}
	assert.Equal(t, []string{"fix", "the", "db", "pool", "v2"}, words)

	// offsets index back into the original string
	assert.Equal(t, "Fix", "Fix the DB-pool, v2!"[toks[0].start:toks[0].end])
	assert.Equal(t, "DB", "Fix the DB-pool, v2!"[toks[2].start:toks[2].end])
}

func TestSmartPhraseBeatsPartialOverlap(t *testing.T) {
	cfg := DefaultConfig()
	s := newSmartStrategy(cfg, Query{Text: "database connection"})

	phrase, ok := s.match("the database connection dropped again")
	require.True(t, ok)

	partial, ok := s.match("a database issue, but no link problems")
	require.True(t, ok)

	assert.Greater(t, phrase.score, partial.score)
	assert.LessOrEqual(t, phrase.score, 1.0)
}

func TestSmartBelowThresholdRejected(t *testing.T) {
	s := newSmartStrategy(DefaultConfig(), Query{Text: "kubernetes ingress controller"})

	_, ok := s.match("completely unrelated message about lunch plans")
	assert.False(t, ok)
}

func TestSmartStopWordsIgnoredForOverlap(t *testing.T) {
	s := newSmartStrategy(DefaultConfig(), Query{Text: "how to configure logging"})

	// "configure" and "logging" carry the query; "how" and "to" do not
	h, ok := s.match("configure logging output levels")
	require.True(t, ok)
	assert.Greater(t, h.score, DefaultConfig().RelevanceThreshold)
}

func TestSmartProximityBonus(t *testing.T) {
	cfg := DefaultConfig()
	s := newSmartStrategy(cfg, Query{Text: "parser timeout"})

	near, ok := s.match("the parser timeout happened")
	require.True(t, ok)

	far, ok := s.match("the parser started fine but twelve unrelated words of filler separate it widely apart from any timeout")
	require.True(t, ok)

	assert.Greater(t, near.score, far.score)
}

func TestSmartCaseSensitive(t *testing.T) {
	s := newSmartStrategy(DefaultConfig(), Query{Text: "ERROR", CaseSensitive: true})

	_, ok := s.match("an error occurred")
	assert.False(t, ok)

	h, ok := s.match("an ERROR occurred")
	require.True(t, ok)
	assert.Greater(t, h.score, 0.0)
}

func TestMinWindow(t *testing.T) {
	occ := []occurrence{
		{pos: 0, tok: "a"},
		{pos: 5, tok: "b"},
		{pos: 6, tok: "a"},
		{pos: 7, tok: "b"},
	}
	assert.Equal(t, 2, minWindow(occ, 2))
}

func TestExactMatch(t *testing.T) {
	s := newExactStrategy(DefaultConfig(), Query{Text: "Nil Pointer"})

	h, ok := s.match("got a nil pointer dereference, nil pointer again")
	require.True(t, ok)
	assert.InDelta(t, 0.4, h.score, 1e-9) // two occurrences at MatchWeight 0.2
	assert.Equal(t, span{6, 17}, h.span)

	_, ok = s.match("no such text here")
	assert.False(t, ok)
}

func TestExactMatchFoldChangesByteLength(t *testing.T) {
	s := newExactStrategy(DefaultConfig(), Query{Text: "needle"})

	// U+023A's lowercase form is one byte longer, U+0130's one byte shorter;
	// the returned span must still land on the original bytes
	for _, text := range []string{"Ⱥ needle", "İİ needle here", "needle then Ⱥ"} {
		h, ok := s.match(text)
		require.True(t, ok, text)
		assert.Equal(t, "needle", text[h.span.start:h.span.end], text)
	}
}

func TestSmartAnchorFoldChangesByteLength(t *testing.T) {
	s := newSmartStrategy(DefaultConfig(), Query{Text: "needle"})

	text := "İİ needle here"
	h, ok := s.match(text)
	require.True(t, ok)
	assert.Equal(t, "needle", text[h.span.start:h.span.end])
}

func TestExactCaseSensitive(t *testing.T) {
	s := newExactStrategy(DefaultConfig(), Query{Text: "Panic", CaseSensitive: true})

	_, ok := s.match("kernel panic")
	assert.False(t, ok)

	_, ok = s.match("a Panic in main")
	assert.True(t, ok)
}

func TestRegexMatch(t *testing.T) {
	s, err := newRegexStrategy(DefaultConfig(), Query{Text: `err(or)?\d+`})
	require.NoError(t, err)

	h, ok := s.match("saw ERROR42 and err7 in the log")
	require.True(t, ok)
	assert.InDelta(t, 0.4, h.score, 1e-9)
	assert.Equal(t, "ERROR42", "saw ERROR42 and err7 in the log"[h.span.start:h.span.end])
}

func TestRegexBadPattern(t *testing.T) {
	_, err := newRegexStrategy(DefaultConfig(), Query{Text: "([unclosed"})
	assert.ErrorIs(t, err, ErrBadPattern)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

// axisVectorizer maps a few known words onto orthogonal axes so similarity
// is predictable in tests.
type axisVectorizer struct{ axes map[string]int }

func (v axisVectorizer) Vector(text string) []float32 {
	out := make([]float32, len(v.axes))
	for _, tok := range tokenize(text, true) {
		if i, ok := v.axes[tok.text]; ok {
			out[i]++
		}
	}
	return out
}

func TestSemanticSimilarityAndBoost(t *testing.T) {
	vec := axisVectorizer{axes: map[string]int{"cache": 0, "eviction": 1, "dinner": 2}}
	s := newSemanticStrategy(DefaultConfig(), vec, Query{Text: "cache eviction"})

	related, ok := s.match("the cache eviction policy")
	require.True(t, ok)
	// literal phrase present: boosted above plain cosine
	assert.Greater(t, related.score, 0.9)

	_, ok = s.match("dinner plans for tonight")
	assert.False(t, ok)
}

func TestSemanticAnchorFoldChangesByteLength(t *testing.T) {
	vec := axisVectorizer{axes: map[string]int{"cache": 0}}
	s := newSemanticStrategy(DefaultConfig(), vec, Query{Text: "cache"})

	text := "Ⱥ CACHE fills"
	h, ok := s.match(text)
	require.True(t, ok)
	assert.Equal(t, "CACHE", text[h.span.start:h.span.end])
}

func TestSemanticAnchorFallsBackToFirstToken(t *testing.T) {
	vec := axisVectorizer{axes: map[string]int{"cache": 0, "eviction": 1}}
	s := newSemanticStrategy(DefaultConfig(), vec, Query{Text: "eviction cache"})

	h, ok := s.match("eviction happens when the cache fills")
	require.True(t, ok)
	assert.Equal(t, span{0, len("eviction")}, h.span)
}
