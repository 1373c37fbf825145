package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phylobot/phylo/pkg/phylo/internalerr"
)

func TestValidateAcceptsExportedRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if out, err := execute(t, NewExportRegistryCmd(), "--out", path); err != nil {
		t.Fatalf("export-registry: %v\n%s", err, out)
	}

	out, err := execute(t, NewValidateCmd(), "--registry", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "valid") {
		t.Errorf("output does not report validity:\n%s", out)
	}
	for _, level := range []string{"Domain", "Kingdom", "Phylum", "Class", "Order", "Family", "Genus", "Species"} {
		if !strings.Contains(out, level) {
			t.Errorf("output is missing level %s:\n%s", level, out)
		}
	}
	if !strings.Contains(out, "exclusions") {
		t.Errorf("output is missing the exclusion count:\n%s", out)
	}
}

func TestValidateRejectsIncompleteRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	content := `levels:
  - name: Domain
    categories:
      - name: Physical
        signals: [chassis, motor]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := execute(t, NewValidateCmd(), "--registry", path)
	if !errors.Is(err, internalerr.ErrInvalidRegistry) {
		t.Fatalf("expected ErrInvalidRegistry, got %v", err)
	}
}

func TestValidateRejectsDanglingExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangling.yaml")
	content := `levels:
  - name: Domain
    categories: [{name: Physical, signals: [chassis]}]
  - name: Kingdom
    categories: [{name: Terrestrial, signals: [ground]}]
  - name: Phylum
    categories: [{name: Rigid, signals: [metal]}]
  - name: Class
    categories: [{name: Wheeled, signals: [wheel]}]
  - name: Order
    categories: [{name: Autonomous, signals: [autonomous]}]
  - name: Family
    categories: [{name: Vision_Based, signals: [camera]}]
  - name: Genus
    categories: [{name: Electric, signals: [battery]}]
  - name: Species
    categories: [{name: Inspection, signals: [inspection]}]
exclusions:
  - {level_a: Phylum, category_a: Rigid, level_b: Class, category_b: Winged}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := execute(t, NewValidateCmd(), "--registry", path)
	if !errors.Is(err, internalerr.ErrInvalidRegistry) {
		t.Fatalf("expected ErrInvalidRegistry, got %v", err)
	}
	if !strings.Contains(err.Error(), "Winged") {
		t.Errorf("error does not name the dangling category: %v", err)
	}
}

func TestValidateRequiresRegistry(t *testing.T) {
	if _, err := execute(t, NewValidateCmd()); err == nil {
		t.Fatal("expected an error without --registry")
	}
}
