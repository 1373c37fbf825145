package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/internal/records"
	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/analytics"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var in, dbPath, runID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report assignment statistics for a classified batch",
		Long: `Aggregate per-level statistics over a classified batch: category
distributions, unknown rates, low-confidence counts, conflicts and the
source breakdown of assignments.

The batch comes either from a result file written by 'classify' (--in)
or from a run archive (--db, with --run selecting a batch; the newest
run is used when --run is omitted).`,
		Example: `  phylo stats --in classified.json
  phylo stats --db runs.db
  phylo stats --db runs.db --run 01JF3YBM8Q0BKNVV2QZJ0YE1T8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, in, dbPath, runID, asJSON)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Result file written by 'classify'")
	cmd.Flags().StringVar(&dbPath, "db", "", "Run archive (SQLite file)")
	cmd.Flags().StringVar(&runID, "run", "", "Batch id within --db (default: newest run)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the summary as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, in, dbPath, runID string, asJSON bool) error {
	if (in == "") == (dbPath == "") {
		return errors.New("exactly one of --in or --db is required")
	}
	if runID != "" && dbPath == "" {
		return errors.New("--run requires --db")
	}

	recs, label, err := loadBatch(cmd, in, dbPath, runID)
	if err != nil {
		return err
	}

	summary := analytics.Summarize(recs, phylo.DefaultThresholds().MinConfidence)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(out, "batch %s\n", label)
	fmt.Fprintf(out, "records: %d  conflicts: %d  mean confidence: %.2f\n",
		summary.TotalRecords, summary.ConflictTotal, summary.MeanConfidence)
	fmt.Fprintf(out, "sources: rule %d, similarity %d, cluster %d, default %d\n",
		summary.SourceBreakdown[record.SourceRule],
		summary.SourceBreakdown[record.SourceSimilarity],
		summary.SourceBreakdown[record.SourceCluster],
		summary.SourceBreakdown[record.SourceDefault])
	for _, ls := range summary.Levels {
		fmt.Fprintf(out, "%-8s unknown %d (%.0f%%), low-confidence %d\n",
			ls.Level, ls.Unknown, ls.UnknownRate*100, ls.LowConfidence)
		for _, cc := range ls.Categories {
			fmt.Fprintf(out, "  %-28s %4d\n", cc.Category, cc.Count)
		}
	}
	return nil
}

// loadBatch resolves the classified records either from a result file
// or from the run archive.
func loadBatch(cmd *cobra.Command, in, dbPath, runID string) ([]record.ClassifiedRecord, string, error) {
	if in != "" {
		res, err := records.LoadResultFile(in)
		if err != nil {
			return nil, "", err
		}
		return res.Records, res.BatchID, nil
	}

	ctx := cmd.Context()
	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	if runID == "" {
		infos, err := st.ListRuns(ctx, 1)
		if err != nil {
			return nil, "", err
		}
		if len(infos) == 0 {
			return nil, "", fmt.Errorf("no runs in %s", dbPath)
		}
		runID = infos[0].BatchID
	}
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return nil, "", err
	}
	return run.Records, run.BatchID, nil
}
