package records

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/phylobot/phylo/pkg/phylo"
)

// WriteResult serializes a classified batch as indented JSON. Struct
// field order is fixed and map keys marshal sorted, so identical
// results produce identical bytes.
func WriteResult(w io.Writer, res *phylo.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteResultFile writes a classified batch to path.
func WriteResultFile(path string, res *phylo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := WriteResult(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadResultFile reads a classified batch previously written by
// WriteResultFile.
func LoadResultFile(path string) (*phylo.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", path, err)
	}
	var res phylo.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse result %s: %w", path, err)
	}
	return &res, nil
}
