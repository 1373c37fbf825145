package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phylobot/phylo/internal/logging"
	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/maintenance"
	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// NewReclassifyCmd creates the 'reclassify' command.
func NewReclassifyCmd() *cobra.Command {
	var dbPath, runID, registryPath string
	var seed int64
	var workers int

	cmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Replay an archived run against an updated registry",
		Long: `Load the raw records of a stored run, classify them again and archive
the outcome as a new run. The source run is left untouched, so the two
can be compared with 'stats'. Typically used after editing the registry
YAML.`,
		Example: `  phylo reclassify --db runs.db --run 01JF3YBM8Q0BKNVV2QZJ0YE1T8 --registry taxonomy.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReclassify(cmd, dbPath, runID, registryPath, seed, workers)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Run archive (SQLite file)")
	cmd.Flags().StringVar(&runID, "run", "", "Batch id to replay")
	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry YAML (default: embedded taxonomy)")
	cmd.Flags().Int64Var(&seed, "seed", phylo.DefaultSeed, "Clustering seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default: number of CPUs)")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("run")

	return cmd
}

func runReclassify(cmd *cobra.Command, dbPath, runID, registryPath string, seed int64, workers int) error {
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

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	rc := &maintenance.Reclassifier{Store: st, Engine: engine}
	res, err := rc.Reclassify(ctx, runID)
	if err != nil {
		return err
	}
	logging.Info("run reclassified",
		zap.String("source", res.SourceBatch),
		zap.String("new", res.NewBatch),
		zap.Int("changed", res.Changed))

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d records, %d skipped, %d changed\n",
		res.SourceBatch, res.NewBatch, res.Records, res.Skipped, res.Changed)
	return nil
}
