package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

func auditRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, level := range registry.Levels() {
		if level == registry.Class {
			continue
		}
		reg.AddCategory(level, registry.Category{
			Name:    "General",
			Signals: []string{"zzz-" + strings.ToLower(level.String())},
		})
	}
	reg.AddCategory(registry.Class, registry.Category{
		Name:    "Marine",
		Signals: []string{"submarine", "hydrophone"},
	})
	reg.AddCategory(registry.Class, registry.Category{
		Name:    "Aerial",
		Signals: []string{"quadcopter"},
	})
	if err := reg.Validate(); err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func classRecord(id, desc, class string) record.ClassifiedRecord {
	rec := record.ClassifiedRecord{RawRecord: record.RawRecord{ID: id, Description: desc}}
	for _, level := range registry.Levels() {
		a := record.UnknownAssignment(level)
		if level == registry.Class && class != "" {
			a = record.LevelAssignment{Level: level, Category: class, Confidence: 0.6, Source: record.SourceRule}
		}
		rec.Assignments = append(rec.Assignments, a)
	}
	return rec
}

func findByTerm(findings []Finding, typ, term string) (Finding, bool) {
	for _, f := range findings {
		if f.Type == typ && f.Term == term {
			return f, true
		}
	}
	return Finding{}, false
}

func TestDeadSignalAlwaysFlagged(t *testing.T) {
	a := &Auditor{Registry: auditRegistry(t)}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine survey platform", "Marine"),
		classRecord("r2", "submarine inspection unit", "Marine"),
		classRecord("r3", "submarine mapping probe", "Marine"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dead, ok := findByTerm(findings, FindingDeadSignal, "hydrophone")
	if !ok {
		t.Fatalf("hydrophone not flagged dead; findings: %+v", findings)
	}
	if dead.Level != registry.Class || dead.Category != "Marine" {
		t.Errorf("dead finding owner = %v/%s, want Class/Marine", dead.Level, dead.Category)
	}
	if dead.Missed != 3 || dead.Support != 0 || dead.Coverage != 0 {
		t.Errorf("dead finding counts = %+v", dead)
	}
	if dead.Confidence <= 0.5 {
		t.Errorf("dead finding confidence = %v, want > 0.5", dead.Confidence)
	}

	if _, ok := findByTerm(findings, FindingDeadSignal, "submarine"); ok {
		t.Error("submarine matched every record and must not be dead")
	}
}

func TestLowCoverageSignal(t *testing.T) {
	a := &Auditor{
		Registry:   auditRegistry(t),
		Thresholds: Thresholds{MinCoverage: 0.5, MinMissed: 2, MinOrphanShare: 0.99},
	}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine with hydrophone rig", "Marine"),
		classRecord("r2", "submarine hull crawler", "Marine"),
		classRecord("r3", "submarine ballast tender", "Marine"),
		classRecord("r4", "submarine cable layer", "Marine"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	low, ok := findByTerm(findings, FindingLowCoverage, "hydrophone")
	if !ok {
		t.Fatalf("hydrophone not flagged low coverage; findings: %+v", findings)
	}
	if low.Support != 1 || low.Missed != 3 {
		t.Errorf("support/missed = %d/%d, want 1/3", low.Support, low.Missed)
	}
	if low.Coverage != 0.25 {
		t.Errorf("coverage = %v, want 0.25", low.Coverage)
	}

	if _, ok := findByTerm(findings, FindingLowCoverage, "submarine"); ok {
		t.Error("submarine covers its category and must not be flagged")
	}
}

func TestOrphanTermSuggestsMajorityCategory(t *testing.T) {
	a := &Auditor{
		Registry:   auditRegistry(t),
		Thresholds: Thresholds{MinOrphanShare: 0.6},
	}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine barnacle scraper alpha", "Marine"),
		classRecord("r2", "submarine barnacle scrubber beta", "Marine"),
		classRecord("r3", "submarine barnacle cleaner gamma", "Marine"),
		classRecord("r4", "quadcopter barnacle spotter delta", "Aerial"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	orphan, ok := findByTerm(findings, FindingOrphanTerm, "barnacle")
	if !ok {
		t.Fatalf("barnacle not flagged orphan; findings: %+v", findings)
	}
	if orphan.Support != 4 || orphan.Coverage != 1 {
		t.Errorf("orphan support/share = %d/%v, want 4/1", orphan.Support, orphan.Coverage)
	}
	if orphan.Level != registry.Class || orphan.Category != "Marine" {
		t.Errorf("suggestion = %v/%s, want Class/Marine", orphan.Level, orphan.Category)
	}
	if orphan.Confidence <= 0.9 {
		t.Errorf("orphan confidence = %v, want > 0.9", orphan.Confidence)
	}

	// Declared signals never count as orphans.
	if _, ok := findByTerm(findings, FindingOrphanTerm, "submarine"); ok {
		t.Error("submarine is a declared signal and must not be an orphan")
	}
	// Rare terms stay under the share floor.
	if _, ok := findByTerm(findings, FindingOrphanTerm, "alpha"); ok {
		t.Error("alpha appears once and must stay under the orphan floor")
	}
}

func TestOrphanWithoutMajorityHasNoSuggestion(t *testing.T) {
	a := &Auditor{
		Registry:   auditRegistry(t),
		Thresholds: Thresholds{MinOrphanShare: 0.6},
	}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine barnacle one", "Marine"),
		classRecord("r2", "submarine barnacle two", "Marine"),
		classRecord("r3", "quadcopter barnacle three", "Aerial"),
		classRecord("r4", "quadcopter barnacle four", "Aerial"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	orphan, ok := findByTerm(findings, FindingOrphanTerm, "barnacle")
	if !ok {
		t.Fatalf("barnacle not flagged orphan; findings: %+v", findings)
	}
	if orphan.Category != "" || orphan.Level != 0 {
		t.Errorf("split vote must not suggest, got %v/%s", orphan.Level, orphan.Category)
	}
}

func TestFindingsOrderedByConfidence(t *testing.T) {
	a := &Auditor{Registry: auditRegistry(t)}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine probe", "Marine"),
		classRecord("r2", "quadcopter scout", "Aerial"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) < 2 {
		t.Fatalf("expected several findings, got %d", len(findings))
	}
	for i := 1; i < len(findings); i++ {
		if findings[i].Confidence > findings[i-1].Confidence {
			t.Fatalf("findings out of order at %d: %v after %v",
				i, findings[i].Confidence, findings[i-1].Confidence)
		}
	}
}

type approveType struct {
	typ string
}

func (r approveType) Approve(ctx context.Context, f Finding) (bool, error) {
	return f.Type == r.typ, nil
}

func TestReviewerScreensFindings(t *testing.T) {
	a := &Auditor{
		Registry: auditRegistry(t),
		Reviewer: approveType{typ: FindingDeadSignal},
	}
	records := []record.ClassifiedRecord{
		classRecord("r1", "submarine probe", "Marine"),
	}

	findings, err := a.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(findings) == 0 {
		t.Fatal("expected approved dead-signal findings")
	}
	for _, f := range findings {
		if f.Type != FindingDeadSignal {
			t.Errorf("reviewer let through %+v", f)
		}
	}
}

func TestNilRegistryRejected(t *testing.T) {
	a := &Auditor{}
	if _, err := a.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &Auditor{Registry: auditRegistry(t)}
	records := []record.ClassifiedRecord{classRecord("r1", "submarine", "Marine")}
	if _, err := a.Run(ctx, records); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestEmptyCorpusStillFlagsDeadSignals(t *testing.T) {
	a := &Auditor{Registry: auditRegistry(t)}

	findings, err := a.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Every declared signal is dead on an empty corpus.
	for _, f := range findings {
		if f.Type != FindingDeadSignal {
			t.Errorf("unexpected finding on empty corpus: %+v", f)
		}
	}
	if _, ok := findByTerm(findings, FindingDeadSignal, "submarine"); !ok {
		t.Error("submarine should be dead on an empty corpus")
	}
}
