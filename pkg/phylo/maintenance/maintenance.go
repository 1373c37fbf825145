// Package maintenance reprocesses archived runs after registry edits
// and exports registries for manual curation. Both operations run
// offline against an explicit engine and store; nothing here touches a
// live classification.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/store"
)

// Reclassifier replays a stored run through an engine and archives the
// outcome as a fresh run. The engine carries the updated registry; the
// source run is left untouched.
type Reclassifier struct {
	Store  store.Store
	Engine *phylo.Engine
}

// Result summarizes one reclassification.
type Result struct {
	SourceBatch string
	NewBatch    string
	Records     int
	Skipped     int
	Changed     int // records whose category assignments moved
}

// Reclassify loads a run, classifies its raw records again and saves
// the new run under a fresh batch id.
func (r *Reclassifier) Reclassify(ctx context.Context, batchID string) (Result, error) {
	if r.Store == nil || r.Engine == nil {
		return Result{}, errors.New("reclassifier: invalid configuration")
	}

	run, err := r.Store.GetRun(ctx, batchID)
	if err != nil {
		return Result{}, err
	}

	raws := make([]record.RawRecord, len(run.Records))
	for i, rec := range run.Records {
		raws[i] = rec.RawRecord
	}

	res, err := r.Engine.ClassifyBatch(ctx, raws)
	if err != nil {
		return Result{}, err
	}

	if err := r.Store.SaveRun(ctx, store.Run{
		BatchID:   res.BatchID,
		CreatedAt: time.Now().UTC(),
		Records:   res.Records,
		Clusters:  res.Clusters,
		Skipped:   res.Skipped,
	}); err != nil {
		return Result{}, err
	}

	return Result{
		SourceBatch: batchID,
		NewBatch:    res.BatchID,
		Records:     len(res.Records),
		Skipped:     len(res.Skipped),
		Changed:     countChanged(run.Records, res.Records),
	}, nil
}

// countChanged compares category assignments by record id. Confidence
// drift alone does not count; a record counts once however many levels
// moved.
func countChanged(before, after []record.ClassifiedRecord) int {
	old := make(map[string]map[registry.Level]string, len(before))
	for _, rec := range before {
		cats := make(map[registry.Level]string, len(rec.Assignments))
		for _, a := range rec.Assignments {
			cats[a.Level] = a.Category
		}
		old[rec.ID] = cats
	}

	changed := 0
	for _, rec := range after {
		cats, ok := old[rec.ID]
		if !ok {
			changed++
			continue
		}
		for _, a := range rec.Assignments {
			if cats[a.Level] != a.Category {
				changed++
				break
			}
		}
	}
	return changed
}

// RegistryWriter persists an exported registry document.
type RegistryWriter interface {
	WriteRegistry(ctx context.Context, content []byte) error
}

// RegistryExporter renders a registry and its thresholds as YAML, the
// same document format config.LoadFile reads back.
type RegistryExporter struct {
	Writer RegistryWriter
}

// Export writes the registry document through the configured writer.
func (e *RegistryExporter) Export(ctx context.Context, reg *registry.Registry, th phylo.Thresholds) error {
	if e.Writer == nil {
		return fmt.Errorf("registry exporter: nil writer")
	}
	if reg == nil {
		return fmt.Errorf("registry exporter: nil registry")
	}
	data, err := config.FromRegistry(reg, th).Marshal()
	if err != nil {
		return err
	}
	return e.Writer.WriteRegistry(ctx, data)
}
