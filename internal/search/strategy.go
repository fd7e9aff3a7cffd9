package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a byte range into the message text that anchors the match. The
// zero span means the message matched without a literal occurrence (smart
// overlap or semantic similarity); the snippet then shows the text head.
type span struct{ start, end int }

type hit struct {
	score float64
	span  span
}

// mapSpan translates a byte span found in the folded copy of text back to
// the original. ToLower maps runes 1:1, so rune indexes line up even when a
// rune's lowercase form has a different byte length (U+023A grows, U+0130
// shrinks); slicing the original with folded offsets would split runes or
// run past the end.
func mapSpan(text, fold string, s span) span {
	if s.start >= s.end || text == fold {
		return s
	}
	runeStart := utf8.RuneCountInString(fold[:s.start])
	runeEnd := runeStart + utf8.RuneCountInString(fold[s.start:s.end])

	out := span{start: -1, end: -1}
	n := 0
	for i := range text {
		if n == runeStart {
			out.start = i
		}
		if n == runeEnd {
			out.end = i
			break
		}
		n++
	}
	if out.start < 0 {
		out.start = len(text)
	}
	if out.end < 0 {
		out.end = len(text)
	}
	return out
}

// strategy scores one message text against the query. Selected once at
// search start from the query mode.
type strategy interface {
	match(text string) (hit, bool)
}

// token is a contiguous run of letters and digits; everything else
// separates tokens.
type token struct {
	text  string
	start int // byte offset
	end   int
}

func tokenize(s string, fold bool) []token {
	var toks []token
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			toks = append(toks, newToken(s, start, i, fold))
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, newToken(s, start, len(s), fold))
	}
	return toks
}

func newToken(s string, start, end int, fold bool) token {
	t := s[start:end]
	if fold {
		t = strings.ToLower(t)
	}
	return token{text: t, start: start, end: end}
}

func foldedText(text string, caseSensitive bool) string {
	if caseSensitive {
		return text
	}
	return strings.ToLower(text)
}

// smart mode: token overlap plus phrase and proximity bonuses, cut off at a
// relevance threshold. The only mode that can match without any contiguous
// occurrence of the query.
type smartStrategy struct {
	cfg           Config
	caseSensitive bool
	foldQuery     string
	tokens        []string // distinct query tokens, stop words removed
}

func newSmartStrategy(cfg Config, q Query) *smartStrategy {
	raw := tokenize(q.Text, !q.CaseSensitive)
	seen := make(map[string]bool, len(raw))
	var all, kept []string
	for _, t := range raw {
		if seen[t.text] {
			continue
		}
		seen[t.text] = true
		all = append(all, t.text)
		if !stopWords[strings.ToLower(t.text)] {
			kept = append(kept, t.text)
		}
	}
	if len(kept) == 0 {
		kept = all
	}
	return &smartStrategy{
		cfg:           cfg,
		caseSensitive: q.CaseSensitive,
		foldQuery:     foldedText(q.Text, q.CaseSensitive),
		tokens:        kept,
	}
}

func (s *smartStrategy) match(text string) (hit, bool) {
	fold := foldedText(text, s.caseSensitive)

	var score float64
	var anchor span

	if idx := strings.Index(fold, s.foldQuery); idx >= 0 {
		score += s.cfg.PhraseBonus
		extra := float64(strings.Count(fold, s.foldQuery)) * s.cfg.OccurrenceBonus
		if extra > s.cfg.OccurrenceBonusCap {
			extra = s.cfg.OccurrenceBonusCap
		}
		score += extra
		anchor = span{idx, idx + len(s.foldQuery)}
	}

	inQuery := make(map[string]bool, len(s.tokens))
	for _, qt := range s.tokens {
		inQuery[qt] = true
	}

	toks := tokenize(fold, false)
	matched := make(map[string]bool)
	firstTok := span{-1, -1}
	var occ []occurrence
	for pos, t := range toks {
		if !inQuery[t.text] {
			continue
		}
		if !matched[t.text] {
			matched[t.text] = true
		}
		if firstTok.start < 0 {
			firstTok = span{t.start, t.end}
		}
		occ = append(occ, occurrence{pos: pos, tok: t.text})
	}

	if len(s.tokens) > 0 {
		score += s.cfg.OverlapWeight * float64(len(matched)) / float64(len(s.tokens))
	}

	if len(matched) >= 2 {
		window := len(s.tokens) * s.cfg.ProximityWindow
		if minWindow(occ, len(matched)) <= window {
			score += s.cfg.ProximityBonus
		}
	}

	if score > 1 {
		score = 1
	}
	if score <= s.cfg.RelevanceThreshold {
		return hit{}, false
	}
	if anchor.start == anchor.end && firstTok.start >= 0 {
		anchor = firstTok
	}
	return hit{score: score, span: mapSpan(text, fold, anchor)}, true
}

type occurrence struct {
	pos int
	tok string
}

// minWindow is the smallest token-count window containing at least one
// occurrence of each of the distinct matched tokens.
func minWindow(occ []occurrence, distinct int) int {
	counts := make(map[string]int)
	best := int(^uint(0) >> 1)
	have := 0
	l := 0
	for r := 0; r < len(occ); r++ {
		counts[occ[r].tok]++
		if counts[occ[r].tok] == 1 {
			have++
		}
		for have == distinct {
			if w := occ[r].pos - occ[l].pos + 1; w < best {
				best = w
			}
			counts[occ[l].tok]--
			if counts[occ[l].tok] == 0 {
				have--
			}
			l++
		}
	}
	return best
}

// exact mode: case-fold substring containment. Occurrence count only breaks
// ties among exact matches.
type exactStrategy struct {
	cfg           Config
	caseSensitive bool
	foldQuery     string
}

func newExactStrategy(cfg Config, q Query) *exactStrategy {
	return &exactStrategy{
		cfg:           cfg,
		caseSensitive: q.CaseSensitive,
		foldQuery:     foldedText(q.Text, q.CaseSensitive),
	}
}

func (s *exactStrategy) match(text string) (hit, bool) {
	fold := foldedText(text, s.caseSensitive)
	idx := strings.Index(fold, s.foldQuery)
	if idx < 0 {
		return hit{}, false
	}
	score := float64(strings.Count(fold, s.foldQuery)) * s.cfg.MatchWeight
	if score > 1 {
		score = 1
	}
	anchor := mapSpan(text, fold, span{idx, idx + len(s.foldQuery)})
	return hit{score: score, span: anchor}, true
}

// regex mode: the pattern is compiled once per search; an uncompilable
// pattern fails the whole call, it never degrades to another mode.
type regexStrategy struct {
	cfg Config
	re  *regexp.Regexp
}

func newRegexStrategy(cfg Config, q Query) (*regexStrategy, error) {
	pattern := q.Text
	if !q.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	return &regexStrategy{cfg: cfg, re: re}, nil
}

func (s *regexStrategy) match(text string) (hit, bool) {
	locs := s.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return hit{}, false
	}
	score := float64(len(locs)) * s.cfg.MatchWeight
	if score > 1 {
		score = 1
	}
	return hit{score: score, span: span{locs[0][0], locs[0][1]}}, true
}

// semantic mode: cosine similarity over an injected vector capability, with
// the same score-cutoff shape as smart mode.
type semanticStrategy struct {
	cfg       Config
	vec       Vectorizer
	foldQuery string
	queryVec  []float32
	firstTok  string
}

func newSemanticStrategy(cfg Config, vec Vectorizer, q Query) *semanticStrategy {
	foldQ := strings.ToLower(q.Text)
	s := &semanticStrategy{
		cfg:       cfg,
		vec:       vec,
		foldQuery: foldQ,
		queryVec:  vec.Vector(foldQ),
	}
	if toks := tokenize(foldQ, false); len(toks) > 0 {
		s.firstTok = toks[0].text
	}
	return s
}

func (s *semanticStrategy) match(text string) (hit, bool) {
	fold := strings.ToLower(text)
	sim := cosine(s.queryVec, s.vec.Vector(fold))

	var anchor span
	if idx := strings.Index(fold, s.foldQuery); idx >= 0 {
		sim += s.cfg.SemanticPhraseBoost
		anchor = span{idx, idx + len(s.foldQuery)}
	} else if s.firstTok != "" {
		if idx := strings.Index(fold, s.firstTok); idx >= 0 {
			anchor = span{idx, idx + len(s.firstTok)}
		}
	}
	if sim > 1 {
		sim = 1
	}
	if sim <= s.cfg.SemanticThreshold {
		return hit{}, false
	}
	return hit{score: sim, span: mapSpan(text, fold, anchor)}, true
}
