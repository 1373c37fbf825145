package rules

import (
	"math"

	"github.com/phylobot/phylo/pkg/phylo/feature"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// scoreEpsilon bounds float comparison when checking for tied scores.
const scoreEpsilon = 1e-9

// Scorer evaluates lexical evidence level by level. At construction it
// normalizes every registry signal through the extractor's pipeline and
// freezes the result, so scoring reads only immutable state and is safe
// to call from many goroutines.
type Scorer struct {
	levels map[registry.Level][]categorySignals
	maxima map[registry.Level]int
}

type categorySignals struct {
	name    string
	signals []signalTerm
}

// signalTerm carries the two forms of one signal: the normalized text
// used for word-boundary matching and the folded term used for weight
// lookup in the feature vector.
type signalTerm struct {
	text string
	term string
}

// CategoryScore is one row of the per-level evidence table.
type CategoryScore struct {
	Category string
	Score    float64
	Matched  []string
}

// Outcome is the rule decision for one level. Category is Unknown when
// no signal matched or the top score was tied between categories.
type Outcome struct {
	Level      registry.Level
	Category   string
	Confidence float64
	Tied       bool
	Evidence   []string
	Scores     []CategoryScore
}

// NewScorer builds the immutable signal index for a validated registry.
func NewScorer(reg *registry.Registry, ext *feature.Extractor) *Scorer {
	s := &Scorer{
		levels: make(map[registry.Level][]categorySignals, registry.LevelCount),
		maxima: make(map[registry.Level]int, registry.LevelCount),
	}
	for _, level := range registry.Levels() {
		cats := reg.CategoriesFor(level)
		indexed := make([]categorySignals, 0, len(cats))
		for _, c := range cats {
			seen := make(map[string]struct{}, len(c.Signals))
			cs := categorySignals{name: c.Name}
			for _, raw := range c.Signals {
				text := ext.NormalizeTerm(raw)
				if text == "" {
					continue
				}
				if _, dup := seen[text]; dup {
					continue
				}
				seen[text] = struct{}{}
				cs.signals = append(cs.signals, signalTerm{
					text: text,
					term: feature.FoldTerm(text),
				})
			}
			indexed = append(indexed, cs)
			if n := len(cs.signals); n > s.maxima[level] {
				s.maxima[level] = n
			}
		}
		s.levels[level] = indexed
	}
	return s
}

// LevelMax returns the largest effective signal-set size at a level,
// the denominator of rule confidence.
func (s *Scorer) LevelMax(level registry.Level) int {
	return s.maxima[level]
}

// ScoreLevel scores every category of one level against a record. Each
// matched signal contributes 1 plus its feature-vector weight, so a
// match on a distinguishing term counts for more than a match on a
// term the whole batch shares. The strictly highest score wins;
// an exact tie between categories yields Unknown rather than an
// arbitrary pick. Confidence is the winning score over the level
// maximum, capped at 1.
func (s *Scorer) ScoreLevel(level registry.Level, x feature.Extraction, vec feature.Vector) Outcome {
	indexed := s.levels[level]
	scores := make([]CategoryScore, 0, len(indexed))

	bestIdx := -1
	bestScore := 0.0
	tied := false
	for _, cs := range indexed {
		row := CategoryScore{Category: cs.name}
		for _, sig := range cs.signals {
			if feature.ContainsTerm(x.Text, sig.text) {
				row.Score += 1 + vec.Weight(sig.term)
				row.Matched = append(row.Matched, sig.text)
			}
		}
		scores = append(scores, row)

		if row.Score <= 0 {
			continue
		}
		switch {
		case row.Score > bestScore+scoreEpsilon:
			bestScore = row.Score
			bestIdx = len(scores) - 1
			tied = false
		case math.Abs(row.Score-bestScore) <= scoreEpsilon:
			tied = true
		}
	}

	out := Outcome{
		Level:    level,
		Category: registry.Unknown,
		Tied:     tied,
		Scores:   scores,
	}
	if bestIdx < 0 || tied {
		return out
	}

	out.Category = scores[bestIdx].Category
	out.Evidence = scores[bestIdx].Matched
	if max := s.maxima[level]; max > 0 {
		out.Confidence = math.Min(1, bestScore/float64(max))
	}
	return out
}

// ScoreAll evaluates all eight levels in rank order.
func (s *Scorer) ScoreAll(x feature.Extraction, vec feature.Vector) []Outcome {
	outcomes := make([]Outcome, 0, registry.LevelCount)
	for _, level := range registry.Levels() {
		outcomes = append(outcomes, s.ScoreLevel(level, x, vec))
	}
	return outcomes
}
