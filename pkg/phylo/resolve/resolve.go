package resolve

import (
	"fmt"

	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/rules"
	"github.com/phylobot/phylo/pkg/phylo/similarity"
)

// Candidate is a cluster-derived assignment for one level.
type Candidate struct {
	Category   string
	Confidence float64
}

// Inputs carries one record's evidence from every classification
// stage. Rules and Similarity hold outcomes in level order; Cluster
// is sparse and may be nil.
type Inputs struct {
	Rules      []rules.Outcome
	Similarity []similarity.Outcome
	Cluster    map[registry.Level]Candidate
}

// Resolver merges stage outcomes into final level assignments and
// enforces the registry's exclusion pairs.
type Resolver struct {
	reg           *registry.Registry
	ruleThreshold float64
}

// New builds a resolver for a validated registry. ruleThreshold is
// the confidence a rule outcome must reach to stand on its own.
func New(reg *registry.Registry, ruleThreshold float64) *Resolver {
	return &Resolver{reg: reg, ruleThreshold: ruleThreshold}
}

// Resolve assembles the classified record. Per level the rule outcome
// wins when its confidence clears the threshold; otherwise the
// exemplar match, then the cluster candidate, then Unknown.
// Sub-threshold rule outcomes are discarded, never kept as weak
// guesses. Assignments always cover all eight levels in order.
func (r *Resolver) Resolve(raw record.RawRecord, in Inputs) record.ClassifiedRecord {
	out := record.ClassifiedRecord{RawRecord: raw}

	byRule := make(map[registry.Level]rules.Outcome, len(in.Rules))
	for _, ro := range in.Rules {
		byRule[ro.Level] = ro
	}
	bySim := make(map[registry.Level]similarity.Outcome, len(in.Similarity))
	for _, so := range in.Similarity {
		bySim[so.Level] = so
	}

	out.Assignments = make([]record.LevelAssignment, 0, registry.LevelCount)
	for _, level := range registry.Levels() {
		out.Assignments = append(out.Assignments,
			r.resolveLevel(level, byRule[level], bySim[level], in.Cluster[level]))
	}

	out.Conflicts = r.enforceExclusions(out.Assignments)
	out.OverallConfidence = overall(out.Assignments)
	return out
}

func (r *Resolver) resolveLevel(level registry.Level, ro rules.Outcome, so similarity.Outcome, cand Candidate) record.LevelAssignment {
	if assigned(ro.Category) && ro.Confidence >= r.ruleThreshold {
		return record.LevelAssignment{
			Level:      level,
			Category:   ro.Category,
			Confidence: ro.Confidence,
			Source:     record.SourceRule,
			Evidence:   ro.Evidence,
		}
	}
	if assigned(so.Category) {
		return record.LevelAssignment{
			Level:      level,
			Category:   so.Category,
			Confidence: so.Similarity,
			Source:     record.SourceSimilarity,
		}
	}
	if assigned(cand.Category) && cand.Confidence > 0 {
		return record.LevelAssignment{
			Level:      level,
			Category:   cand.Category,
			Confidence: cand.Confidence,
			Source:     record.SourceCluster,
		}
	}
	return record.UnknownAssignment(level)
}

// enforceExclusions downgrades the weaker side of every violated
// exclusion pair to Unknown. On equal confidence the deeper level
// yields, coarser levels carrying the broader evidence. Exclusions
// fire in registry order, so an earlier downgrade can defuse a later
// pair.
func (r *Resolver) enforceExclusions(assigns []record.LevelAssignment) []record.Conflict {
	var conflicts []record.Conflict
	for _, ex := range r.reg.Exclusions() {
		a := assignmentAt(assigns, ex.LevelA)
		b := assignmentAt(assigns, ex.LevelB)
		if a == nil || b == nil {
			continue
		}
		if a.Category != ex.CategoryA || b.Category != ex.CategoryB {
			continue
		}

		drop := a
		switch {
		case a.Confidence > b.Confidence:
			drop = b
		case a.Confidence < b.Confidence:
			drop = a
		case b.Level.Position() > a.Level.Position():
			drop = b
		}
		*drop = record.UnknownAssignment(drop.Level)

		conflicts = append(conflicts, record.Conflict{
			LevelA: ex.LevelA,
			LevelB: ex.LevelB,
			Reason: conflictReason(ex),
		})
	}
	return conflicts
}

func conflictReason(ex registry.Exclusion) string {
	if ex.Reason != "" {
		return ex.Reason
	}
	return fmt.Sprintf("%s %s excludes %s %s", ex.LevelA, ex.CategoryA, ex.LevelB, ex.CategoryB)
}

func assignmentAt(assigns []record.LevelAssignment, level registry.Level) *record.LevelAssignment {
	for i := range assigns {
		if assigns[i].Level == level {
			return &assigns[i]
		}
	}
	return nil
}

func assigned(category string) bool {
	return category != "" && category != registry.Unknown
}

// overall averages confidence across all eight levels, Unknown levels
// pulling the mean down with their zero.
func overall(assigns []record.LevelAssignment) float64 {
	if len(assigns) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range assigns {
		sum += a.Confidence
	}
	return sum / float64(len(assigns))
}
