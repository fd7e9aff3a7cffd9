package search

import "math"

// Vectorizer turns text into a document vector for similarity matching.
// It is an optional capability: the engine is constructed with or without
// one, and semantic queries downgrade to smart matching when it is absent.
type Vectorizer interface {
	Vector(text string) []float32
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
