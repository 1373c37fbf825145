package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.Run)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a run, rejecting batch ids already present.
func (s *Store) SaveRun(ctx context.Context, run store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.BatchID]; ok {
		return fmt.Errorf("run %s: %w", run.BatchID, internalerr.ErrDuplicate)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.runs[run.BatchID] = copyRun(run)
	return nil
}

// GetRun returns a stored run by batch id.
func (s *Store) GetRun(ctx context.Context, batchID string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[batchID]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}
	return copyRun(run), nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	infos := make([]store.RunInfo, 0, len(s.runs))
	for _, run := range s.runs {
		infos = append(infos, store.RunInfo{
			BatchID:   run.BatchID,
			CreatedAt: run.CreatedAt,
			Records:   len(run.Records),
			Skipped:   len(run.Skipped),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].BatchID > infos[j].BatchID
	})
	if len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// LevelDistribution counts assigned categories per level for one run.
func (s *Store) LevelDistribution(ctx context.Context, batchID string) (map[registry.Level]map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[batchID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}

	dist := make(map[registry.Level]map[string]int)
	for _, rec := range run.Records {
		for _, a := range rec.Assignments {
			if dist[a.Level] == nil {
				dist[a.Level] = make(map[string]int)
			}
			dist[a.Level][a.Category]++
		}
	}
	return dist, nil
}

// DeleteRun removes a run.
func (s *Store) DeleteRun(ctx context.Context, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[batchID]; !ok {
		return fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}
	delete(s.runs, batchID)
	return nil
}

func copyRun(run store.Run) store.Run {
	out := store.Run{
		BatchID:   run.BatchID,
		CreatedAt: run.CreatedAt,
	}
	if run.Records != nil {
		out.Records = make([]record.ClassifiedRecord, len(run.Records))
		for i, rec := range run.Records {
			out.Records[i] = copyRecord(rec)
		}
	}
	if run.Clusters != nil {
		out.Clusters = make([]record.ClusterGroup, len(run.Clusters))
		for i, g := range run.Clusters {
			out.Clusters[i] = g
			out.Clusters[i].Members = copySlice(g.Members)
		}
	}
	if run.Skipped != nil {
		out.Skipped = make([]record.Skipped, len(run.Skipped))
		copy(out.Skipped, run.Skipped)
	}
	return out
}

func copyRecord(rec record.ClassifiedRecord) record.ClassifiedRecord {
	out := rec
	if rec.Hints != nil {
		out.Hints = make(map[string]string, len(rec.Hints))
		for k, v := range rec.Hints {
			out.Hints[k] = v
		}
	}
	if rec.Assignments != nil {
		out.Assignments = make([]record.LevelAssignment, len(rec.Assignments))
		for i, a := range rec.Assignments {
			out.Assignments[i] = a
			out.Assignments[i].Evidence = copySlice(a.Evidence)
		}
	}
	if rec.Conflicts != nil {
		out.Conflicts = make([]record.Conflict, len(rec.Conflicts))
		copy(out.Conflicts, rec.Conflicts)
	}
	return out
}

func copySlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
