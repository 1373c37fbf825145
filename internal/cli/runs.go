package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// NewRunsCmd creates the 'runs' command.
func NewRunsCmd() *cobra.Command {
	var dbPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived classification runs",
		Long: `List the runs stored in an archive, newest first. The batch ids shown
here are what 'stats', 'audit' and 'reclassify' take via --run.`,
		Example: `  phylo runs --db runs.db
  phylo runs --db runs.db --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, dbPath, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Run archive (SQLite file)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(cmd *cobra.Command, dbPath string, limit int) error {
	ctx := cmd.Context()

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintf(out, "no runs in %s\n", dbPath)
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(out, "%s  %s  %d records, %d skipped\n",
			info.BatchID, info.CreatedAt.UTC().Format(time.RFC3339), info.Records, info.Skipped)
	}
	return nil
}
