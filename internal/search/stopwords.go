package search

// stopWords are ignored when computing token overlap. A query made entirely
// of stop words falls back to its raw tokens.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true,
	"i": true, "you": true, "we": true, "they": true, "it": true,
	"this": true, "that": true, "these": true, "those": true,
}
