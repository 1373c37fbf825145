package registry

import (
	"encoding/json"
	"testing"
)

func TestLevelOrder(t *testing.T) {
	levels := Levels()
	if len(levels) != LevelCount {
		t.Fatalf("expected %d levels, got %d", LevelCount, len(levels))
	}
	for i, level := range levels {
		if level.Position() != i+1 {
			t.Errorf("level %s: expected position %d, got %d", level, i+1, level.Position())
		}
	}
	if levels[0] != Domain || levels[7] != Species {
		t.Error("levels should run Domain through Species")
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range Levels() {
		parsed, err := ParseLevel(level.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", level.String(), err)
		}
		if parsed != level {
			t.Errorf("ParseLevel(%q) = %v, expected %v", level.String(), parsed, level)
		}
	}

	if _, err := ParseLevel("Tribe"); err == nil {
		t.Error("ParseLevel should reject an unknown level name")
	}
}

func TestLevelJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Phylum)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"Phylum"` {
		t.Errorf("expected level to marshal by name, got %s", data)
	}

	var back Level
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != Phylum {
		t.Errorf("round trip changed level: %v", back)
	}
}

func TestLevelJSONInvalid(t *testing.T) {
	if _, err := json.Marshal(Level(99)); err == nil {
		t.Error("marshaling an invalid level should fail")
	}

	var lv Level
	if err := json.Unmarshal([]byte(`"Tribe"`), &lv); err == nil {
		t.Error("unmarshaling an unknown level name should fail")
	}
}
