package store

import (
	"context"
	"time"

	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// Store persists classification runs for later reporting and
// reclassification. Implementations return internalerr.ErrNotFound
// for absent runs and internalerr.ErrDuplicate when a batch id is
// saved twice.
type Store interface {
	Close() error

	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, batchID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	DeleteRun(ctx context.Context, batchID string) error

	// LevelDistribution counts assigned categories per level for one
	// stored run.
	LevelDistribution(ctx context.Context, batchID string) (map[registry.Level]map[string]int, error)
}

// Run is one persisted classification batch.
type Run struct {
	BatchID   string
	CreatedAt time.Time
	Records   []record.ClassifiedRecord
	Clusters  []record.ClusterGroup
	Skipped   []record.Skipped
}

// RunInfo summarizes a stored run for listings.
type RunInfo struct {
	BatchID   string
	CreatedAt time.Time
	Records   int
	Skipped   int
}
