package feature

import (
	"math"
	"sort"
)

// Vector is a sparse bag of weighted terms describing one record
// within a batch. Weights are term frequency balanced by inverse
// document frequency, normalized so the heaviest term weighs 1.
// Vectors are transient; they never outlive their batch.
type Vector map[string]float64

// Weight returns the weight of a term, 0 when absent.
func (v Vector) Weight(term string) float64 {
	return v[term]
}

// Terms returns the vector's terms in sorted order.
func (v Vector) Terms() []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Empty reports whether the vector carries no terms.
func (v Vector) Empty() bool {
	return len(v) == 0
}

// Norm is the Euclidean length of the vector. Accumulation runs in
// sorted term order: float addition is not associative, and batch
// results must be byte-identical across runs.
func (v Vector) Norm() float64 {
	var sum float64
	for _, t := range v.Terms() {
		w := v[t]
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine computes cosine similarity between two vectors. Either side
// being empty yields 0. Iteration is in sorted term order to keep the
// result reproducible run to run.
func (v Vector) Cosine(o Vector) float64 {
	if len(v) == 0 || len(o) == 0 {
		return 0
	}
	var dot float64
	for _, t := range v.Terms() {
		if ow, ok := o[t]; ok {
			dot += v[t] * ow
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (v.Norm() * o.Norm())
}

// Add accumulates another vector into this one, term by term.
func (v Vector) Add(o Vector) {
	for _, t := range o.Terms() {
		v[t] += o[t]
	}
}

// Scale multiplies every weight by f.
func (v Vector) Scale(f float64) {
	for t := range v {
		v[t] *= f
	}
}
