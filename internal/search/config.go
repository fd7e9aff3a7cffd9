package search

// Config holds the scoring calibration constants. It is threaded into the
// engine at construction and never mutated, so tests can vary thresholds
// without ambient state.
type Config struct {
	// smart mode
	RelevanceThreshold float64 // scores at or below this are non-matches
	PhraseBonus        float64 // the whole query occurs as a contiguous substring
	OccurrenceBonus    float64 // per extra phrase occurrence
	OccurrenceBonusCap float64
	OverlapWeight      float64 // weight of matched-token ratio
	ProximityBonus     float64
	ProximityWindow    int // window multiplier, in query-token counts

	// exact and regex modes
	MatchWeight float64 // per-occurrence score, capped at 1.0

	// semantic mode
	SemanticThreshold   float64
	SemanticPhraseBoost float64
}

func DefaultConfig() Config {
	return Config{
		RelevanceThreshold:  0.1,
		PhraseBonus:         0.5,
		OccurrenceBonus:     0.1,
		OccurrenceBonusCap:  0.3,
		OverlapWeight:       0.4,
		ProximityBonus:      0.1,
		ProximityWindow:     2,
		MatchWeight:         0.2,
		SemanticThreshold:   0.3,
		SemanticPhraseBoost: 0.3,
	}
}
