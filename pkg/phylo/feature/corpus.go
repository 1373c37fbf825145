package feature

import "math"

// Corpus holds the document-frequency statistics of one classification
// batch. It is built once per batch, after all records are tokenized,
// and stays immutable while the batch is scored; recomputing it
// mid-batch would make results depend on classification order.
type Corpus struct {
	docs int
	df   map[string]int
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{df: make(map[string]int)}
}

// Add registers one record's tokens. Each distinct term counts once
// per record.
func (c *Corpus) Add(tokens []string) {
	c.docs++
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		c.df[t]++
	}
}

// Docs returns the number of records added.
func (c *Corpus) Docs() int {
	return c.docs
}

// DF returns the document frequency of a term.
func (c *Corpus) DF(term string) int {
	return c.df[term]
}

// IDF is a smoothed inverse document frequency: terms present in every
// record bottom out near ln 2, rare terms approach ln(1+N). Terms the
// corpus never saw get the maximum, which keeps exemplar-only
// vocabulary weighted.
func (c *Corpus) IDF(term string) float64 {
	return math.Log(1 + float64(c.docs)/float64(1+c.df[term]))
}

// Vector builds a record's feature vector from its tokens: term
// frequency times IDF, scaled so the heaviest term weighs exactly 1.
// Empty token lists yield an empty vector.
func (c *Corpus) Vector(tokens []string) Vector {
	if len(tokens) == 0 {
		return Vector{}
	}

	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}

	v := make(Vector, len(tf))
	max := 0.0
	for term, n := range tf {
		w := float64(n) * c.IDF(term)
		v[term] = w
		if w > max {
			max = w
		}
	}
	if max > 0 {
		for term := range v {
			v[term] /= max
		}
	}
	return v
}
