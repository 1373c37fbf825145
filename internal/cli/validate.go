package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// NewValidateCmd creates the 'validate' command.
func NewValidateCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a registry YAML file",
		Long: `Parse a registry YAML file, run the structural checks an engine would
run on startup and print a summary of the taxonomy. The command fails
if any level is empty, a category name repeats within a level, or an
exclusion or synonym refers to an unknown category.`,
		Example: `  phylo validate --registry taxonomy.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, registryPath)
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry YAML file")
	cmd.MarkFlagRequired("registry")

	return cmd
}

func runValidate(cmd *cobra.Command, registryPath string) error {
	comps, err := (&config.Loader{RegistryPath: registryPath}).Load()
	if err != nil {
		return err
	}
	reg := comps.Registry

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "registry %s: valid\n", registryPath)
	for _, lvl := range registry.Levels() {
		cats := reg.CategoriesFor(lvl)
		signals := 0
		exemplars := 0
		for _, c := range cats {
			signals += len(c.Signals)
			exemplars += len(c.Exemplars)
		}
		fmt.Fprintf(out, "  %-8s %3d categories, %4d signals, %3d exemplars\n",
			lvl, len(cats), signals, exemplars)
	}
	fmt.Fprintf(out, "  exclusions: %d\n", len(reg.Exclusions()))
	fmt.Fprintf(out, "  synonym groups: %d\n", len(reg.Synonyms()))
	fmt.Fprintf(out, "  stopterms: %d\n", len(reg.Stopterms()))
	return nil
}
