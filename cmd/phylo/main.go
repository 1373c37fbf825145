/*
Package main is the entry point for the phylo CLI.

phylo classifies robot records into a fixed eight-level taxonomy
(Domain through Species) using lexical signal rules, exemplar
similarity and clustering of weakly-evidenced records.

Usage:
  phylo [command]

Available Commands:
  classify        Classify a batch of robot records
  validate        Validate a registry YAML file
  stats           Report assignment statistics for a classified batch
  runs            List archived classification runs
  audit           Audit the registry against a classified run
  reclassify      Replay an archived run against an updated registry
  export-registry Write a registry as an editable YAML document
  help            Help about any command

Examples:
  # Classify a batch and archive the run
  phylo classify --in records.json --db runs.db

  # Inspect the newest archived run
  phylo stats --db runs.db

  # Export the embedded taxonomy for editing, then replay a run with it
  phylo export-registry --out taxonomy.yaml
  phylo reclassify --db runs.db --run <batch-id> --registry taxonomy.yaml
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/internal/cli"
	"github.com/phylobot/phylo/internal/logging"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logging.Sync()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "phylo",
		Short: "Taxonomic classifier for robot records",
		Long: `phylo assigns robot records a position in a fixed eight-level taxonomy:
Domain, Kingdom, Phylum, Class, Order, Family, Genus, Species.

Each record is scored against per-category signal lexicons; records
with weak lexical evidence fall back to exemplar similarity and batch
clustering. Runs can be archived in a SQLite file and later inspected,
audited against the registry, or replayed after registry edits.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(cli.NewClassifyCmd())
	rootCmd.AddCommand(cli.NewValidateCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())
	rootCmd.AddCommand(cli.NewRunsCmd())
	rootCmd.AddCommand(cli.NewAuditCmd())
	rootCmd.AddCommand(cli.NewReclassifyCmd())
	rootCmd.AddCommand(cli.NewExportRegistryCmd())

	return rootCmd
}
