package feature

import (
	"math"
	"testing"
)

func TestCorpusCountsDistinctTermsOnce(t *testing.T) {
	c := NewCorpus()
	c.Add([]string{"hydraulic", "hydraulic", "arm"})
	c.Add([]string{"pneumatic"})

	if c.Docs() != 2 {
		t.Errorf("expected 2 docs, got %d", c.Docs())
	}
	if c.DF("hydraulic") != 1 {
		t.Errorf("repeated term should count once per doc, got %d", c.DF("hydraulic"))
	}
}

func TestIDFOrdersRareAboveCommon(t *testing.T) {
	c := NewCorpus()
	c.Add([]string{"gripper", "hydraulic"})
	c.Add([]string{"gripper", "pneumatic"})
	c.Add([]string{"gripper", "magnetic"})

	if c.IDF("hydraulic") <= c.IDF("gripper") {
		t.Errorf("rare term should outweigh common term: hydraulic=%f gripper=%f",
			c.IDF("hydraulic"), c.IDF("gripper"))
	}
	// Unseen vocabulary gets the maximum.
	if c.IDF("unseen") < c.IDF("hydraulic") {
		t.Errorf("unseen term should weigh at least as much as any seen term")
	}
}

func TestVectorNormalizedToUnitMax(t *testing.T) {
	c := NewCorpus()
	c.Add([]string{"hydraulic", "arm"})
	c.Add([]string{"hydraulic", "gripper"})
	c.Add([]string{"pneumatic", "gripper"})

	v := c.Vector([]string{"hydraulic", "arm"})

	if w := v.Weight("arm"); math.Abs(w-1.0) > 1e-9 {
		t.Errorf("rarest term should normalize to 1, got %f", w)
	}
	if w := v.Weight("hydraulic"); w <= 0 || w >= 1 {
		t.Errorf("common term should land strictly between 0 and 1, got %f", w)
	}
	if w := v.Weight("absent"); w != 0 {
		t.Errorf("absent term should weigh 0, got %f", w)
	}
}

func TestVectorEmptyTokens(t *testing.T) {
	c := NewCorpus()
	c.Add([]string{"something"})

	v := c.Vector(nil)
	if !v.Empty() {
		t.Errorf("no tokens should yield an empty vector, got %v", v)
	}
}

func TestVectorSingleRecordBatchWeighsAllTermsEqually(t *testing.T) {
	c := NewCorpus()
	tokens := []string{"underwater", "exploration", "pneumatic"}
	c.Add(tokens)

	v := c.Vector(tokens)
	for _, term := range tokens {
		if w := v.Weight(term); math.Abs(w-1.0) > 1e-9 {
			t.Errorf("term %q: expected weight 1 in a single-record batch, got %f", term, w)
		}
	}
}
