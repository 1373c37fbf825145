// Package cli implements the phylo subcommands. Each command wires
// engine, config, store and record I/O together; all classification
// logic lives in pkg/phylo.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phylobot/phylo/internal/logging"
	"github.com/phylobot/phylo/internal/records"
	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/store"
	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// NewClassifyCmd creates the 'classify' command.
func NewClassifyCmd() *cobra.Command {
	var in, out, registryPath, dbPath string
	var seed int64
	var workers int

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a batch of robot records",
		Long: `Read a batch of raw robot records, classify every record against the
eight-level taxonomy and write the classified batch as JSON.

The input file may be a JSON array of record objects or JSONL with one
object per line. Without --registry the embedded default taxonomy is
used; with --db the run is also archived in a SQLite file for later
stats, audit and reclassification.`,
		Example: `  phylo classify --in records.json --out classified.json
  phylo classify --in records.jsonl --db runs.db
  phylo classify --in records.json --registry taxonomy.yaml --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, in, out, registryPath, dbPath, seed, workers)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Input records file (JSON array or JSONL)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry YAML (default: embedded taxonomy)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to archive the run in")
	cmd.Flags().Int64Var(&seed, "seed", phylo.DefaultSeed, "Clustering seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default: number of CPUs)")
	cmd.MarkFlagRequired("in")

	return cmd
}

func runClassify(cmd *cobra.Command, in, out, registryPath, dbPath string, seed int64, workers int) error {
	ctx := cmd.Context()

	comps, err := (&config.Loader{RegistryPath: registryPath}).Load()
	if err != nil {
		return err
	}
	engine, err := phylo.New(phylo.Options{
		Registry:   comps.Registry,
		Thresholds: comps.Thresholds,
		Seed:       seed,
		Workers:    workers,
	})
	if err != nil {
		return err
	}

	raws, malformed, err := records.LoadFile(in)
	if err != nil {
		return err
	}
	for _, m := range malformed {
		logging.Warn("skipping malformed input entry",
			zap.String("file", in), zap.Int("entry", m.Entry), zap.String("reason", m.Reason))
	}
	if len(raws) == 0 {
		return fmt.Errorf("no records in %s", in)
	}

	start := time.Now()
	res, err := engine.ClassifyBatch(ctx, raws)
	if err != nil {
		return err
	}
	logging.Info("batch classified",
		zap.String("batch", res.BatchID),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Duration("elapsed", time.Since(start)))

	if dbPath != "" {
		st, err := sqlite.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(ctx, store.Run{
			BatchID:   res.BatchID,
			CreatedAt: time.Now().UTC(),
			Records:   res.Records,
			Clusters:  res.Clusters,
			Skipped:   res.Skipped,
		}); err != nil {
			return err
		}
		logging.Info("run archived", zap.String("db", dbPath), zap.String("batch", res.BatchID))
	}

	if out == "" {
		return records.WriteResult(cmd.OutOrStdout(), res)
	}
	return records.WriteResultFile(out, res)
}
