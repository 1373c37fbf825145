package resolve

import (
	"math"
	"strings"
	"testing"

	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/rules"
	"github.com/phylobot/phylo/pkg/phylo/similarity"
)

func exclusionRegistry(reason string) *registry.Registry {
	reg := registry.New()
	reg.AddCategory(registry.Phylum, registry.Category{Name: "Soft", Signals: []string{"soft"}})
	reg.AddCategory(registry.Class, registry.Category{Name: "Wheeled", Signals: []string{"wheeled"}})
	reg.AddCategory(registry.Class, registry.Category{Name: "Swimming", Signals: []string{"swimming"}})
	reg.AddExclusion(registry.Exclusion{
		LevelA: registry.Phylum, CategoryA: "Soft",
		LevelB: registry.Class, CategoryB: "Wheeled",
		Reason: reason,
	})
	return reg
}

func resolveWith(t *testing.T, reg *registry.Registry, in Inputs) record.ClassifiedRecord {
	t.Helper()
	r := New(reg, 0.3)
	return r.Resolve(record.RawRecord{ID: "r1", Description: "x"}, in)
}

func mustAssignment(t *testing.T, c record.ClassifiedRecord, level registry.Level) record.LevelAssignment {
	t.Helper()
	a, ok := c.AssignmentFor(level)
	if !ok {
		t.Fatalf("no assignment for %s", level)
	}
	return a
}

func TestRuleBeatsStrongerSimilarity(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{{
			Level: registry.Class, Category: "Wheeled", Confidence: 0.4,
			Evidence: []string{"wheeled"},
		}},
		Similarity: []similarity.Outcome{{
			Level: registry.Class, Category: "Swimming", Similarity: 0.9,
		}},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	a := mustAssignment(t, c, registry.Class)
	if a.Category != "Wheeled" || a.Source != record.SourceRule {
		t.Errorf("expected rule-sourced Wheeled, got %s from %s", a.Category, a.Source)
	}
	if a.Confidence != 0.4 {
		t.Errorf("confidence = %f", a.Confidence)
	}
	if len(a.Evidence) != 1 || a.Evidence[0] != "wheeled" {
		t.Errorf("evidence = %v", a.Evidence)
	}
}

func TestSubThresholdRuleIsDiscarded(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{{Level: registry.Class, Category: "Wheeled", Confidence: 0.2}},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	a := mustAssignment(t, c, registry.Class)
	if !a.Unknown() {
		t.Errorf("weak rule guess should be discarded, got %s", a.Category)
	}
	if a.Confidence != 0 || a.Source != record.SourceDefault {
		t.Errorf("discarded level should reset to default, got %f from %s", a.Confidence, a.Source)
	}
}

func TestSimilarityFillsRuleGap(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{{Level: registry.Class, Category: registry.Unknown}},
		Similarity: []similarity.Outcome{{
			Level: registry.Class, Category: "Swimming", Similarity: 0.35,
		}},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	a := mustAssignment(t, c, registry.Class)
	if a.Category != "Swimming" || a.Source != record.SourceSimilarity {
		t.Errorf("expected similarity-sourced Swimming, got %s from %s", a.Category, a.Source)
	}
	if a.Confidence != 0.35 {
		t.Errorf("confidence = %f", a.Confidence)
	}
}

func TestClusterFillsRemainingGap(t *testing.T) {
	in := Inputs{
		Cluster: map[registry.Level]Candidate{
			registry.Class: {Category: "Swimming", Confidence: 0.5},
		},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	a := mustAssignment(t, c, registry.Class)
	if a.Category != "Swimming" || a.Source != record.SourceCluster {
		t.Errorf("expected cluster-sourced Swimming, got %s from %s", a.Category, a.Source)
	}
	if a.Confidence != 0.5 {
		t.Errorf("confidence = %f", a.Confidence)
	}
}

func TestEveryLevelAlwaysAssigned(t *testing.T) {
	c := resolveWith(t, exclusionRegistry(""), Inputs{})

	if len(c.Assignments) != registry.LevelCount {
		t.Fatalf("expected %d assignments, got %d", registry.LevelCount, len(c.Assignments))
	}
	for i, level := range registry.Levels() {
		a := c.Assignments[i]
		if a.Level != level {
			t.Errorf("assignment %d is %s, expected %s", i, a.Level, level)
		}
		if !a.Unknown() || a.Source != record.SourceDefault {
			t.Errorf("%s should default to Unknown, got %s from %s", level, a.Category, a.Source)
		}
	}
	if c.OverallConfidence != 0 {
		t.Errorf("overall = %f", c.OverallConfidence)
	}
}

func TestExclusionDropsWeakerSide(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{
			{Level: registry.Phylum, Category: "Soft", Confidence: 0.6, Evidence: []string{"soft"}},
			{Level: registry.Class, Category: "Wheeled", Confidence: 0.4, Evidence: []string{"wheeled"}},
		},
	}
	c := resolveWith(t, exclusionRegistry("soft bodies do not roll on rigid wheels"), in)

	if a := mustAssignment(t, c, registry.Phylum); a.Category != "Soft" {
		t.Errorf("stronger side should survive, got %s", a.Category)
	}
	if a := mustAssignment(t, c, registry.Class); !a.Unknown() || a.Confidence != 0 {
		t.Errorf("weaker side should drop to Unknown, got %s at %f", a.Category, a.Confidence)
	}
	if len(c.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(c.Conflicts))
	}
	cf := c.Conflicts[0]
	if cf.LevelA != registry.Phylum || cf.LevelB != registry.Class {
		t.Errorf("conflict levels = %s/%s", cf.LevelA, cf.LevelB)
	}
	if cf.Reason != "soft bodies do not roll on rigid wheels" {
		t.Errorf("reason = %q", cf.Reason)
	}
	// 0.6 across eight levels after the downgrade.
	if want := 0.6 / 8; math.Abs(c.OverallConfidence-want) > 1e-12 {
		t.Errorf("overall = %f, expected %f", c.OverallConfidence, want)
	}
}

func TestExclusionTieDropsDeeperLevel(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{
			{Level: registry.Phylum, Category: "Soft", Confidence: 0.4},
			{Level: registry.Class, Category: "Wheeled", Confidence: 0.4},
		},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	if a := mustAssignment(t, c, registry.Phylum); a.Category != "Soft" {
		t.Errorf("coarser level should survive a tie, got %s", a.Category)
	}
	if a := mustAssignment(t, c, registry.Class); !a.Unknown() {
		t.Errorf("deeper level should yield on a tie, got %s", a.Category)
	}
}

func TestConflictReasonGeneratedWhenAbsent(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{
			{Level: registry.Phylum, Category: "Soft", Confidence: 0.4},
			{Level: registry.Class, Category: "Wheeled", Confidence: 0.5},
		},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	if len(c.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(c.Conflicts))
	}
	reason := c.Conflicts[0].Reason
	for _, part := range []string{"Soft", "Wheeled", "Phylum", "Class"} {
		if !strings.Contains(reason, part) {
			t.Errorf("generated reason %q misses %q", reason, part)
		}
	}
}

func TestExclusionIgnoresUnknownSides(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{
			{Level: registry.Class, Category: "Wheeled", Confidence: 0.5},
		},
	}
	c := resolveWith(t, exclusionRegistry(""), in)

	if len(c.Conflicts) != 0 {
		t.Errorf("no conflict without both sides assigned, got %v", c.Conflicts)
	}
	if a := mustAssignment(t, c, registry.Class); a.Category != "Wheeled" {
		t.Errorf("Wheeled should survive, got %s", a.Category)
	}
}

func TestOverallConfidenceIsLevelMean(t *testing.T) {
	in := Inputs{
		Rules: []rules.Outcome{
			{Level: registry.Domain, Category: "Physical", Confidence: 0.8},
		},
		Similarity: []similarity.Outcome{
			{Level: registry.Kingdom, Category: "Marine", Similarity: 0.4},
		},
	}
	reg := exclusionRegistry("")
	reg.AddCategory(registry.Domain, registry.Category{Name: "Physical", Signals: []string{"physical"}})
	reg.AddCategory(registry.Kingdom, registry.Category{Name: "Marine", Signals: []string{"marine"}})
	c := resolveWith(t, reg, in)

	if want := (0.8 + 0.4) / 8; math.Abs(c.OverallConfidence-want) > 1e-12 {
		t.Errorf("overall = %f, expected %f", c.OverallConfidence, want)
	}
}
