package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/pkg/phylo/config"
	"github.com/phylobot/phylo/pkg/phylo/maintenance"
)

// NewExportRegistryCmd creates the 'export-registry' command.
func NewExportRegistryCmd() *cobra.Command {
	var out, registryPath string

	cmd := &cobra.Command{
		Use:   "export-registry",
		Short: "Write a registry as an editable YAML document",
		Long: `Render a registry and its thresholds as the YAML document format the
other commands read back through --registry. Without --registry this
exports the embedded default taxonomy, which is the starting point for
custom taxonomies.`,
		Example: `  phylo export-registry --out taxonomy.yaml
  phylo export-registry --registry old.yaml --out new.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportRegistry(cmd, out, registryPath)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Destination YAML file")
	cmd.Flags().StringVar(&registryPath, "registry", "", "Registry YAML (default: embedded taxonomy)")
	cmd.MarkFlagRequired("out")

	return cmd
}

// fileRegistryWriter persists exported registries to a local path.
type fileRegistryWriter struct {
	path string
}

func (w fileRegistryWriter) WriteRegistry(_ context.Context, content []byte) error {
	return os.WriteFile(w.path, content, 0o644)
}

func runExportRegistry(cmd *cobra.Command, out, registryPath string) error {
	comps, err := (&config.Loader{RegistryPath: registryPath}).Load()
	if err != nil {
		return err
	}

	exp := &maintenance.RegistryExporter{Writer: fileRegistryWriter{path: out}}
	if err := exp.Export(cmd.Context(), comps.Registry, comps.Thresholds); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registry written to %s\n", out)
	return nil
}
