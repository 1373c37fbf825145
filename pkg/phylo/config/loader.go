package config

import (
	"fmt"

	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// Loader resolves the registry and thresholds for a process: a YAML
// document when a path is given, the embedded default otherwise.
type Loader struct {
	RegistryPath string
}

// Components holds everything a caller needs to build an engine.
type Components struct {
	Registry   *registry.Registry
	Thresholds phylo.Thresholds
}

// Load reads the configured document and returns validated components.
func (l *Loader) Load() (*Components, error) {
	if l.RegistryPath == "" {
		return &Components{
			Registry:   registry.Default(),
			Thresholds: phylo.DefaultThresholds(),
		}, nil
	}

	f, err := LoadFile(l.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	reg, err := f.Registry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return &Components{Registry: reg, Thresholds: f.EngineThresholds()}, nil
}
