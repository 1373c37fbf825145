package similarity

import (
	"math"

	"github.com/phylobot/phylo/pkg/phylo/feature"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// simEpsilon bounds float comparison when checking for tied
// similarities.
const simEpsilon = 1e-9

// Index holds the tokenized exemplar texts of every category that
// declares them. Tokens are extracted once per engine; vectors are
// rebuilt per batch so exemplars and records share one weighting
// space.
type Index struct {
	levels map[registry.Level][]categoryTokens
}

type categoryTokens struct {
	name   string
	tokens [][]string
}

// NewIndex extracts exemplar tokens for a validated registry.
// Categories without exemplars are absent from the index.
func NewIndex(reg *registry.Registry, ext *feature.Extractor) *Index {
	ix := &Index{levels: make(map[registry.Level][]categoryTokens, registry.LevelCount)}
	for _, level := range registry.Levels() {
		for _, c := range reg.CategoriesFor(level) {
			ct := categoryTokens{name: c.Name}
			for _, text := range c.Exemplars {
				if tokens := ext.Extract(text).Tokens; len(tokens) > 0 {
					ct.tokens = append(ct.tokens, tokens)
				}
			}
			if len(ct.tokens) > 0 {
				ix.levels[level] = append(ix.levels[level], ct)
			}
		}
	}
	return ix
}

// Vectorize builds the per-batch matcher, weighting every exemplar
// with the batch corpus statistics.
func (ix *Index) Vectorize(c *feature.Corpus) *Matcher {
	m := &Matcher{levels: make(map[registry.Level][]categoryVectors, len(ix.levels))}
	for level, cats := range ix.levels {
		vectored := make([]categoryVectors, 0, len(cats))
		for _, ct := range cats {
			cv := categoryVectors{name: ct.name}
			for _, tokens := range ct.tokens {
				cv.vectors = append(cv.vectors, c.Vector(tokens))
			}
			vectored = append(vectored, cv)
		}
		m.levels[level] = vectored
	}
	return m
}

// Matcher scores record vectors against exemplar vectors for one
// batch. Read-only after Vectorize; safe for concurrent use.
type Matcher struct {
	levels map[registry.Level][]categoryVectors
}

type categoryVectors struct {
	name    string
	vectors []feature.Vector
}

// Outcome is the exemplar decision for one level. Category is Unknown
// when no similarity clears the acceptance threshold or the best is
// tied between categories.
type Outcome struct {
	Level      registry.Level
	Category   string
	Similarity float64
}

// Best returns the category with the highest exemplar similarity and
// that similarity, with no threshold applied. A category's similarity
// is the maximum over its exemplars. An exact tie between categories
// or an all-zero row comes back empty.
func (m *Matcher) Best(level registry.Level, vec feature.Vector) (string, float64) {
	best := ""
	bestSim := 0.0
	tied := false
	for _, cv := range m.levels[level] {
		sim := 0.0
		for _, ev := range cv.vectors {
			if s := vec.Cosine(ev); s > sim {
				sim = s
			}
		}
		if sim <= 0 {
			continue
		}
		switch {
		case sim > bestSim+simEpsilon:
			best = cv.name
			bestSim = sim
			tied = false
		case math.Abs(sim-bestSim) <= simEpsilon:
			tied = true
		}
	}
	if tied || best == "" {
		return "", 0
	}
	return best, bestSim
}

// SimilarityTo returns the record's similarity to one category, the
// maximum over that category's exemplars.
func (m *Matcher) SimilarityTo(level registry.Level, category string, vec feature.Vector) float64 {
	for _, cv := range m.levels[level] {
		if cv.name != category {
			continue
		}
		sim := 0.0
		for _, ev := range cv.vectors {
			if s := vec.Cosine(ev); s > sim {
				sim = s
			}
		}
		return sim
	}
	return 0
}

// Match applies the acceptance threshold: the best category wins with
// its similarity as confidence, anything below minSim is Unknown.
func (m *Matcher) Match(level registry.Level, vec feature.Vector, minSim float64) Outcome {
	out := Outcome{Level: level, Category: registry.Unknown}
	best, sim := m.Best(level, vec)
	if best == "" || sim < minSim {
		return out
	}
	out.Category = best
	out.Similarity = sim
	return out
}

// HasExemplars reports whether any category at the level declares
// exemplars.
func (m *Matcher) HasExemplars(level registry.Level) bool {
	return len(m.levels[level]) > 0
}
