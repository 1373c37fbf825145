package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

const sampleDoc = `levels:
  - name: Domain
    categories:
      - name: Physical
        signals: [physical, mechanical]
  - name: Kingdom
    categories:
      - name: Marine
        signals: [marine, ocean]
  - name: Phylum
    categories:
      - name: Soft
        signals: [soft, compliant]
  - name: Class
    categories:
      - name: Swimming
        signals: [swimming, underwater]
        exemplars:
          - a submarine glider diving beneath the waves
      - name: Wheeled
        signals: [wheeled, rover]
  - name: Order
    categories:
      - name: Autonomous
        signals: [autonomous]
  - name: Family
    categories:
      - name: Acoustic_Based
        signals: [sonar, hydrophone]
  - name: Genus
    categories:
      - name: Electric
        signals: [electric, battery-powered]
  - name: Species
    categories:
      - name: Exploration
        signals: [exploration, expedition]

exclusions:
  - level_a: Phylum
    category_a: Soft
    level_b: Class
    category_b: Wheeled
    reason: soft bodies do not roll

synonyms:
  - canonical: uav
    variants: [unmanned aerial vehicle]

stopterms: [foo, bar]

thresholds:
  rule: 0.4
  max_groups: 4
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileBuildsValidRegistry(t *testing.T) {
	f, err := LoadFile(writeDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	reg, err := f.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if !reg.HasCategory(registry.Class, "Swimming") {
		t.Error("Swimming missing from Class")
	}
	if got := reg.ExemplarsFor(registry.Class, "Swimming"); len(got) != 1 {
		t.Errorf("exemplars = %v", got)
	}
	if len(reg.Exclusions()) != 1 || reg.Exclusions()[0].Reason != "soft bodies do not roll" {
		t.Errorf("exclusions = %v", reg.Exclusions())
	}
	if len(reg.Synonyms()) != 1 || reg.Synonyms()[0].Canonical != "uav" {
		t.Errorf("synonyms = %v", reg.Synonyms())
	}
	if got := reg.Stopterms(); len(got) != 2 {
		t.Errorf("stopterms = %v", got)
	}
}

func TestThresholdOverridesArePartial(t *testing.T) {
	f, err := LoadFile(writeDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	th := f.EngineThresholds()
	if th.Rule != 0.4 {
		t.Errorf("Rule = %f, expected the 0.4 override", th.Rule)
	}
	if th.MaxGroups != 4 {
		t.Errorf("MaxGroups = %d, expected the 4 override", th.MaxGroups)
	}
	def := phylo.DefaultThresholds()
	if th.MinSimilarity != def.MinSimilarity || th.ClusterCap != def.ClusterCap {
		t.Errorf("untouched thresholds changed: %+v", th)
	}
}

func TestUnknownLevelNameRejected(t *testing.T) {
	f, err := Parse([]byte("levels:\n  - name: Tribe\n    categories:\n      - name: X\n        signals: [x-ray]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := f.Registry(); !errors.Is(err, internalerr.ErrInvalidRegistry) {
		t.Errorf("expected ErrInvalidRegistry, got %v", err)
	}
}

func TestIncompleteRegistryRejected(t *testing.T) {
	f, err := Parse([]byte("levels:\n  - name: Domain\n    categories:\n      - name: Physical\n        signals: [physical]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := f.Registry(); !errors.Is(err, internalerr.ErrInvalidRegistry) {
		t.Errorf("seven missing levels should fail validation, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("levels: [unclosed")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestExportRoundTrip(t *testing.T) {
	f := FromRegistry(registry.Default(), phylo.DefaultThresholds())
	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg, err := back.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}

	signals := reg.SignalsFor(registry.Phylum, "Soft")
	found := false
	for _, s := range signals {
		if s == "soft body" {
			found = true
		}
	}
	if !found {
		t.Errorf("Soft signals lost in round trip: %v", signals)
	}
	if len(reg.Exclusions()) != len(registry.Default().Exclusions()) {
		t.Error("exclusions lost in round trip")
	}
	if back.EngineThresholds() != phylo.DefaultThresholds() {
		t.Errorf("thresholds lost in round trip: %+v", back.EngineThresholds())
	}
}

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !comp.Registry.HasCategory(registry.Species, "Exploration") {
		t.Error("expected the embedded default registry")
	}
	if comp.Thresholds != phylo.DefaultThresholds() {
		t.Errorf("thresholds = %+v", comp.Thresholds)
	}
}

func TestLoaderFromPath(t *testing.T) {
	comp, err := (&Loader{RegistryPath: writeDoc(t, sampleDoc)}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !comp.Registry.HasCategory(registry.Phylum, "Soft") {
		t.Error("expected the loaded registry")
	}
	if comp.Thresholds.Rule != 0.4 {
		t.Errorf("Rule = %f", comp.Thresholds.Rule)
	}
}
