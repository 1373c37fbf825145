package maintenance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/store"
	"github.com/phylobot/phylo/pkg/phylo/store/memstore"
)

func newEngine(t *testing.T, reg *registry.Registry) *phylo.Engine {
	t.Helper()
	eng, err := phylo.New(phylo.Options{Registry: reg, Workers: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

// blankRegistry matches nothing, so every record lands on Unknown.
func blankRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, level := range registry.Levels() {
		reg.AddCategory(level, registry.Category{
			Name:    "General",
			Signals: []string{"zzz-" + strings.ToLower(level.String())},
		})
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func archiveBatch(t *testing.T, st store.Store, eng *phylo.Engine, raws []record.RawRecord) *phylo.Result {
	t.Helper()
	ctx := context.Background()
	res, err := eng.ClassifyBatch(ctx, raws)
	if err != nil {
		t.Fatalf("ClassifyBatch: %v", err)
	}
	if err := st.SaveRun(ctx, store.Run{
		BatchID:  res.BatchID,
		Records:  res.Records,
		Clusters: res.Clusters,
		Skipped:  res.Skipped,
	}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	return res
}

func TestReclassifySameRegistryChangesNothing(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	eng := newEngine(t, nil)

	raws := []record.RawRecord{
		{ID: "r1", Description: "a wheeled rover with a lidar unit"},
		{ID: "r2", Description: "a soft pneumatic gripper arm"},
	}
	src := archiveBatch(t, st, eng, raws)

	r := &Reclassifier{Store: st, Engine: eng}
	res, err := r.Reclassify(ctx, src.BatchID)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}

	if res.SourceBatch != src.BatchID {
		t.Errorf("SourceBatch = %q, want %q", res.SourceBatch, src.BatchID)
	}
	if res.NewBatch == "" || res.NewBatch == src.BatchID {
		t.Errorf("NewBatch = %q, want a fresh id", res.NewBatch)
	}
	if res.Records != 2 || res.Skipped != 0 {
		t.Errorf("counts = %d/%d, want 2/0", res.Records, res.Skipped)
	}
	if res.Changed != 0 {
		t.Errorf("Changed = %d under the unchanged registry", res.Changed)
	}

	// Both runs archived.
	if _, err := st.GetRun(ctx, src.BatchID); err != nil {
		t.Errorf("source run gone: %v", err)
	}
	saved, err := st.GetRun(ctx, res.NewBatch)
	if err != nil {
		t.Fatalf("new run missing: %v", err)
	}
	if len(saved.Records) != 2 {
		t.Errorf("new run has %d records, want 2", len(saved.Records))
	}
}

func TestReclassifyCountsMovedRecords(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	raws := []record.RawRecord{
		{ID: "r1", Description: "a wheeled rover with a lidar unit"},
		{ID: "r2", Description: "plain unremarkable text"},
	}
	src := archiveBatch(t, st, newEngine(t, nil), raws)

	// r1 loses Wheeled/Lidar_Based under the blank registry; r2 was
	// all-Unknown before and stays so.
	r := &Reclassifier{Store: st, Engine: newEngine(t, blankRegistry(t))}
	res, err := r.Reclassify(ctx, src.BatchID)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	if res.Changed != 1 {
		t.Errorf("Changed = %d, want 1", res.Changed)
	}
}

func TestReclassifyMissingRun(t *testing.T) {
	r := &Reclassifier{Store: memstore.New(), Engine: newEngine(t, nil)}
	if _, err := r.Reclassify(context.Background(), "no-such-run"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("Reclassify = %v, want ErrNotFound", err)
	}
}

func TestReclassifyInvalidConfiguration(t *testing.T) {
	if _, err := (&Reclassifier{}).Reclassify(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty configuration")
	}
	if _, err := (&Reclassifier{Store: memstore.New()}).Reclassify(context.Background(), "x"); err == nil {
		t.Fatal("expected error for nil engine")
	}
}

type captureWriter struct {
	data []byte
}

func (w *captureWriter) WriteRegistry(ctx context.Context, content []byte) error {
	w.data = content
	return nil
}

func TestRegistryExporterRoundTrips(t *testing.T) {
	w := &captureWriter{}
	e := &RegistryExporter{Writer: w}

	err := e.Export(context.Background(), registry.Default(), phylo.DefaultThresholds())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(w.data), "Wheeled") {
		t.Fatalf("exported document misses categories:\n%s", w.data)
	}

	f, err := config.Parse(w.data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg, err := f.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if !reg.HasCategory(registry.Class, "Wheeled") {
		t.Error("re-imported registry lost Class/Wheeled")
	}
	if got := f.EngineThresholds(); got != phylo.DefaultThresholds() {
		t.Errorf("thresholds drifted: %+v", got)
	}
}

func TestRegistryExporterNilWriter(t *testing.T) {
	e := &RegistryExporter{}
	if err := e.Export(context.Background(), registry.Default(), phylo.DefaultThresholds()); err == nil {
		t.Fatal("expected error for nil writer")
	}
}

func TestRegistryExporterNilRegistry(t *testing.T) {
	e := &RegistryExporter{Writer: &captureWriter{}}
	if err := e.Export(context.Background(), nil, phylo.DefaultThresholds()); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
