package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/phylobot/phylo/pkg/phylo"
	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// File mirrors the YAML registry document. Level names use their
// canonical spelling (Domain through Species); thresholds are partial
// overrides of the engine defaults.
type File struct {
	Levels     []LevelConfig     `yaml:"levels"`
	Exclusions []ExclusionConfig `yaml:"exclusions,omitempty"`
	Synonyms   []SynonymConfig   `yaml:"synonyms,omitempty"`
	Stopterms  []string          `yaml:"stopterms,omitempty"`
	Thresholds *ThresholdsConfig `yaml:"thresholds,omitempty"`
}

// LevelConfig holds one taxonomy level and its categories.
type LevelConfig struct {
	Name       string           `yaml:"name"`
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig holds one category's signal and exemplar lists.
type CategoryConfig struct {
	Name      string   `yaml:"name"`
	Signals   []string `yaml:"signals"`
	Exemplars []string `yaml:"exemplars,omitempty"`
}

// ExclusionConfig declares a cross-level mutual exclusion.
type ExclusionConfig struct {
	LevelA    string `yaml:"level_a"`
	CategoryA string `yaml:"category_a"`
	LevelB    string `yaml:"level_b"`
	CategoryB string `yaml:"category_b"`
	Reason    string `yaml:"reason,omitempty"`
}

// SynonymConfig maps surface variants onto one canonical term.
type SynonymConfig struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// ThresholdsConfig overrides engine thresholds; absent fields keep
// their defaults.
type ThresholdsConfig struct {
	Rule             *float64 `yaml:"rule,omitempty"`
	MinSimilarity    *float64 `yaml:"min_similarity,omitempty"`
	MajorityFraction *float64 `yaml:"majority_fraction,omitempty"`
	ClusterCap       *float64 `yaml:"cluster_cap,omitempty"`
	MinConfidence    *float64 `yaml:"min_confidence,omitempty"`
	MaxGroups        *int     `yaml:"max_groups,omitempty"`
}

// LoadFile reads and parses a registry document from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a registry document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &f, nil
}

// Registry builds and validates the taxonomy declared by the file.
func (f *File) Registry() (*registry.Registry, error) {
	reg := registry.New()
	for _, lc := range f.Levels {
		level, err := registry.ParseLevel(lc.Name)
		if err != nil {
			return nil, fmt.Errorf("level %q: %w", lc.Name, internalerr.ErrInvalidRegistry)
		}
		for _, cc := range lc.Categories {
			reg.AddCategory(level, registry.Category{
				Name:      cc.Name,
				Signals:   cc.Signals,
				Exemplars: cc.Exemplars,
			})
		}
	}
	for _, xc := range f.Exclusions {
		levelA, err := registry.ParseLevel(xc.LevelA)
		if err != nil {
			return nil, fmt.Errorf("exclusion level %q: %w", xc.LevelA, internalerr.ErrInvalidRegistry)
		}
		levelB, err := registry.ParseLevel(xc.LevelB)
		if err != nil {
			return nil, fmt.Errorf("exclusion level %q: %w", xc.LevelB, internalerr.ErrInvalidRegistry)
		}
		reg.AddExclusion(registry.Exclusion{
			LevelA: levelA, CategoryA: xc.CategoryA,
			LevelB: levelB, CategoryB: xc.CategoryB,
			Reason: xc.Reason,
		})
	}
	for _, sc := range f.Synonyms {
		reg.AddSynonyms(sc.Canonical, sc.Variants...)
	}
	reg.SetStopterms(f.Stopterms)

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// EngineThresholds applies the file's overrides on top of the engine
// defaults.
func (f *File) EngineThresholds() phylo.Thresholds {
	th := phylo.DefaultThresholds()
	tc := f.Thresholds
	if tc == nil {
		return th
	}
	if tc.Rule != nil {
		th.Rule = *tc.Rule
	}
	if tc.MinSimilarity != nil {
		th.MinSimilarity = *tc.MinSimilarity
	}
	if tc.MajorityFraction != nil {
		th.MajorityFraction = *tc.MajorityFraction
	}
	if tc.ClusterCap != nil {
		th.ClusterCap = *tc.ClusterCap
	}
	if tc.MinConfidence != nil {
		th.MinConfidence = *tc.MinConfidence
	}
	if tc.MaxGroups != nil {
		th.MaxGroups = *tc.MaxGroups
	}
	return th
}

// FromRegistry renders a registry (and thresholds) back into a file
// document, categories in sorted order, for export and editing.
func FromRegistry(reg *registry.Registry, th phylo.Thresholds) *File {
	f := &File{}
	for _, level := range registry.Levels() {
		cats := reg.CategoriesFor(level)
		if len(cats) == 0 {
			continue
		}
		lc := LevelConfig{Name: level.String()}
		for _, c := range cats {
			lc.Categories = append(lc.Categories, CategoryConfig{
				Name:      c.Name,
				Signals:   c.Signals,
				Exemplars: c.Exemplars,
			})
		}
		f.Levels = append(f.Levels, lc)
	}
	for _, x := range reg.Exclusions() {
		f.Exclusions = append(f.Exclusions, ExclusionConfig{
			LevelA: x.LevelA.String(), CategoryA: x.CategoryA,
			LevelB: x.LevelB.String(), CategoryB: x.CategoryB,
			Reason: x.Reason,
		})
	}
	syns := reg.Synonyms()
	sort.Slice(syns, func(i, j int) bool { return syns[i].Canonical < syns[j].Canonical })
	for _, s := range syns {
		f.Synonyms = append(f.Synonyms, SynonymConfig{Canonical: s.Canonical, Variants: s.Variants})
	}
	f.Stopterms = reg.Stopterms()
	f.Thresholds = &ThresholdsConfig{
		Rule:             &th.Rule,
		MinSimilarity:    &th.MinSimilarity,
		MajorityFraction: &th.MajorityFraction,
		ClusterCap:       &th.ClusterCap,
		MinConfidence:    &th.MinConfidence,
		MaxGroups:        &th.MaxGroups,
	}
	return f
}

// Marshal renders the file document as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
