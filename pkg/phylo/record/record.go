package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// Source tells which classifier stage produced a level assignment.
type Source string

const (
	SourceRule       Source = "rule"
	SourceSimilarity Source = "similarity"
	SourceCluster    Source = "cluster"
	SourceDefault    Source = "default"
)

// RawRecord is one discovered robot as delivered by the acquisition
// collaborator: an identifier, free-text description and optional
// structured hints (manufacturer, declared category, and similar).
// The engine never mutates it.
type RawRecord struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Hints       map[string]string `json:"hints,omitempty"`
}

// Validate checks the fields the engine requires. An empty description
// is legal and classifies to all-Unknown.
func (r *RawRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: record id is required", internalerr.ErrInvalidRecord)
	}
	return nil
}

// AnalysisText merges the description with hint values in stable key
// order. Hints carry the same kind of lexical evidence as the
// description, so they feed the extractor as one text.
func (r *RawRecord) AnalysisText() string {
	if len(r.Hints) == 0 {
		return strings.TrimSpace(r.Description)
	}
	keys := make([]string, 0, len(r.Hints))
	for k := range r.Hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	if d := strings.TrimSpace(r.Description); d != "" {
		parts = append(parts, d)
	}
	for _, k := range keys {
		if v := strings.TrimSpace(r.Hints[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// LevelAssignment is the outcome for one taxonomy level: the chosen
// category, a confidence in [0,1], the stage that produced it and the
// matched signals or exemplar category behind the decision.
type LevelAssignment struct {
	Level      registry.Level `json:"level"`
	Category   string         `json:"category"`
	Confidence float64        `json:"confidence"`
	Source     Source         `json:"source"`
	Evidence   []string       `json:"evidence,omitempty"`
}

// Unknown reports whether the assignment fell back to the reserved
// category.
func (a LevelAssignment) Unknown() bool { return a.Category == registry.Unknown }

// UnknownAssignment is the terminal fallback for a level with no
// usable evidence.
func UnknownAssignment(level registry.Level) LevelAssignment {
	return LevelAssignment{
		Level:    level,
		Category: registry.Unknown,
		Source:   SourceDefault,
	}
}

// Conflict records one violated mutual-exclusion pair and which side
// was downgraded.
type Conflict struct {
	LevelA registry.Level `json:"level_a"`
	LevelB registry.Level `json:"level_b"`
	Reason string         `json:"reason"`
}

// ClassifiedRecord is the resolver output: the input record plus
// exactly one assignment per level in rank order, the mean level
// confidence and any resolution conflicts. Immutable once built.
type ClassifiedRecord struct {
	RawRecord
	Assignments       []LevelAssignment `json:"assignments"`
	OverallConfidence float64           `json:"overall_confidence"`
	Conflicts         []Conflict        `json:"conflicts,omitempty"`
}

// AssignmentFor returns the assignment at the given level.
func (c *ClassifiedRecord) AssignmentFor(level registry.Level) (LevelAssignment, bool) {
	for _, a := range c.Assignments {
		if a.Level == level {
			return a, true
		}
	}
	return LevelAssignment{}, false
}

// ClusterGroup is supplementary batch metadata: records grouped by
// mutual similarity at one level. Label is a registry category name
// when the group mapped cleanly, otherwise a synthesized Cluster-N
// label. Never persisted as taxonomy.
type ClusterGroup struct {
	Level    registry.Level `json:"level"`
	Label    string         `json:"label"`
	Members  []string       `json:"members"`
	Cohesion float64        `json:"cohesion"`
}

// Skipped reports a record rejected during batch validation. The batch
// continues without it.
type Skipped struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}
