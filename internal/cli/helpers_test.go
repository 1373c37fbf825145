package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/phylobot/phylo/pkg/phylo/store/sqlite"
)

// execute runs a command with args and returns its combined output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

const sampleBatch = `[
  {"id": "r-001", "description": "An underwater exploration robot with a pneumatic soft body and tactile sensors", "hints": {"environment": "marine"}},
  {"id": "r-002", "description": "A rigid wheeled rover navigating autonomously by lidar"},
  {"id": "r-003", "description": "A quadcopter drone with camera vision for bridge inspection"}
]`

// writeBatchFile writes the three-record sample batch to a fresh
// temp dir and returns its path.
func writeBatchFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(sampleBatch), 0644); err != nil {
		t.Fatalf("write records: %v", err)
	}
	return path
}

// archiveRun classifies the sample batch into a fresh archive and
// returns the archive path and the stored batch id.
func archiveRun(t *testing.T) (string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "runs.db")
	if out, err := execute(t, NewClassifyCmd(), "--in", writeBatchFile(t), "--db", db); err != nil {
		t.Fatalf("classify: %v\n%s", err, out)
	}

	st, err := sqlite.Open(context.Background(), db)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer st.Close()
	infos, err := st.ListRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(infos))
	}
	return db, infos[0].BatchID
}
