package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phylobot/phylo/internal/logging"
	"github.com/phylobot/phylo/pkg/phylo/audit"
	"github.com/phylobot/phylo/pkg/phylo/audit/review/llm"
	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// apiKeyEnv names the environment variable holding the reviewer key.
const apiKeyEnv = "PHYLO_LLM_API_KEY"

// NewAuditCmd creates the 'audit' command.
func NewAuditCmd() *cobra.Command {
	var dbPath, runID, registryPath, endpoint string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit the registry against a classified run",
		Long: `Replay a stored run against the registry and report curation findings:
signals that matched no record, signals covering too little of their
own category, and frequent corpus terms that belong to no category.

With --llm-endpoint each finding is screened by an external reviewer
before it is reported; the bearer token is read from ` + apiKeyEnv + `.`,
		Example: `  phylo audit --db runs.db
  phylo audit --db runs.db --run 01JF3YBM8Q0BKNVV2QZJ0YE1T8
  phylo audit --db runs.db --registry taxonomy.yaml --llm-endpoint https://reviewer.internal/v1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, dbPath, runID, registryPath, endpoint)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Run archive (SQLite file)")
	cmd.Flags().StringVar(&runID, "run", "", "Batch id within --db (default: newest run)")
	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry YAML (default: embedded taxonomy)")
	cmd.Flags().StringVar(&endpoint, "llm-endpoint", "", "Reviewer endpoint screening findings")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runAudit(cmd *cobra.Command, dbPath, runID, registryPath, endpoint string) error {
	ctx := cmd.Context()

	comps, err := (&config.Loader{RegistryPath: registryPath}).Load()
	if err != nil {
		return err
	}

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if runID == "" {
		infos, err := st.ListRuns(ctx, 1)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			return fmt.Errorf("no runs in %s", dbPath)
		}
		runID = infos[0].BatchID
	}
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	auditor := &audit.Auditor{Registry: comps.Registry}
	if endpoint != "" {
		auditor.Reviewer = &llm.Client{Endpoint: endpoint, APIKey: os.Getenv(apiKeyEnv)}
		logging.Info("reviewer enabled", zap.String("endpoint", endpoint))
	}

	findings, err := auditor.Run(ctx, run.Records)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d findings\n", run.BatchID, len(findings))
	for _, f := range findings {
		switch f.Type {
		case audit.FindingDeadSignal:
			fmt.Fprintf(out, "%.2f  dead signal   %s/%s %q matched no records\n",
				f.Confidence, f.Level, f.Category, f.Term)
		case audit.FindingLowCoverage:
			fmt.Fprintf(out, "%.2f  low coverage  %s/%s %q covers %.0f%% of its category, %d missed\n",
				f.Confidence, f.Level, f.Category, f.Term, 100*f.Coverage, f.Missed)
		case audit.FindingOrphanTerm:
			if f.Category != "" {
				fmt.Fprintf(out, "%.2f  orphan term   %q in %d records (%.0f%%), fits %s/%s\n",
					f.Confidence, f.Term, f.Support, 100*f.Coverage, f.Level, f.Category)
			} else {
				fmt.Fprintf(out, "%.2f  orphan term   %q in %d records (%.0f%%)\n",
					f.Confidence, f.Term, f.Support, 100*f.Coverage)
			}
		}
	}
	return nil
}
