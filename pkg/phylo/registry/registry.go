package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phylobot/phylo/pkg/phylo/internalerr"
)

// Category is one taxon at a single level. Signals are the lowercase
// keywords and phrases that count as lexical evidence for the category.
// Exemplars are short reference descriptions used for similarity
// fallback when signals are inconclusive.
type Category struct {
	Name      string
	Signals   []string
	Exemplars []string
}

// Exclusion declares that two categories on different levels cannot
// both hold for the same record.
type Exclusion struct {
	LevelA    Level
	CategoryA string
	LevelB    Level
	CategoryB string
	Reason    string
}

// SynonymGroup maps surface variants onto one canonical term.
type SynonymGroup struct {
	Canonical string
	Variants  []string
}

// Registry is the immutable taxonomy: eight levels, their categories,
// signal lexicons, exclusion pairs and optional synonym groups. Build
// it with Add* calls, then Validate before handing it to an engine.
// After Validate it must be treated as read-only.
type Registry struct {
	categories map[Level][]Category
	index      map[Level]map[string]int
	exclusions []Exclusion
	synonyms   []SynonymGroup
	stopterms  []string
	duplicates []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		categories: make(map[Level][]Category),
		index:      make(map[Level]map[string]int),
	}
}

// AddCategory registers a category at the given level. Signals are
// lowercased, trimmed and deduplicated; order is not significant.
func (r *Registry) AddCategory(level Level, c Category) {
	c.Signals = normalizeTerms(c.Signals)
	exemplars := make([]string, 0, len(c.Exemplars))
	for _, ex := range c.Exemplars {
		if s := strings.TrimSpace(ex); s != "" {
			exemplars = append(exemplars, s)
		}
	}
	c.Exemplars = exemplars

	if r.index[level] == nil {
		r.index[level] = make(map[string]int)
	}
	if i, ok := r.index[level][c.Name]; ok {
		// Last write wins; Validate reports the duplicate declaration.
		r.duplicates = append(r.duplicates, fmt.Sprintf("%s/%s", level, c.Name))
		r.categories[level][i] = c
		return
	}
	r.index[level][c.Name] = len(r.categories[level])
	r.categories[level] = append(r.categories[level], c)
}

// AddExclusion registers a mutual-exclusion pair. References are
// checked by Validate, not here.
func (r *Registry) AddExclusion(x Exclusion) {
	r.exclusions = append(r.exclusions, x)
}

// AddSynonyms registers surface variants for a canonical term.
func (r *Registry) AddSynonyms(canonical string, variants ...string) {
	r.synonyms = append(r.synonyms, SynonymGroup{
		Canonical: strings.ToLower(strings.TrimSpace(canonical)),
		Variants:  normalizeTerms(variants),
	})
}

// SetStopterms replaces the extractor stop-term override. An empty set
// means the engine default list applies.
func (r *Registry) SetStopterms(terms []string) {
	r.stopterms = normalizeTerms(terms)
}

// Validate checks structural integrity. Every level needs at least one
// category, every category a non-empty signal set, category names must
// be unique per level and must not claim the reserved Unknown name, and
// exclusion pairs must reference declared categories on two different
// levels. All violations are reported; the engine refuses a registry
// that fails here.
func (r *Registry) Validate() error {
	var problems []string

	for _, level := range Levels() {
		cats := r.categories[level]
		if len(cats) == 0 {
			problems = append(problems, fmt.Sprintf("level %s has no categories", level))
			continue
		}
		for _, c := range cats {
			name := strings.TrimSpace(c.Name)
			switch {
			case name == "":
				problems = append(problems, fmt.Sprintf("level %s has a category with an empty name", level))
			case name == Unknown:
				problems = append(problems, fmt.Sprintf("level %s declares the reserved category %q", level, Unknown))
			}
			if len(c.Signals) == 0 {
				problems = append(problems, fmt.Sprintf("category %s/%s has no signals", level, c.Name))
			}
		}
	}
	for _, d := range r.duplicates {
		problems = append(problems, fmt.Sprintf("category %s declared more than once", d))
	}

	for _, x := range r.exclusions {
		if x.LevelA == x.LevelB {
			problems = append(problems, fmt.Sprintf("exclusion %s/%s vs %s/%s pairs categories on the same level",
				x.LevelA, x.CategoryA, x.LevelB, x.CategoryB))
			continue
		}
		for _, ref := range []struct {
			level Level
			cat   string
		}{{x.LevelA, x.CategoryA}, {x.LevelB, x.CategoryB}} {
			if !ref.level.Valid() {
				problems = append(problems, fmt.Sprintf("exclusion references invalid level %d", int(ref.level)))
				continue
			}
			if !r.HasCategory(ref.level, ref.cat) {
				problems = append(problems, fmt.Sprintf("exclusion references undeclared category %s/%s", ref.level, ref.cat))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidRegistry, strings.Join(problems, "; "))
	}
	return nil
}

// CategoriesFor returns the level's categories sorted by name. The
// returned slice is a copy.
func (r *Registry) CategoriesFor(level Level) []Category {
	cats := make([]Category, len(r.categories[level]))
	copy(cats, r.categories[level])
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats
}

// HasCategory reports whether the category is declared at the level.
func (r *Registry) HasCategory(level Level, name string) bool {
	_, ok := r.index[level][name]
	return ok
}

// SignalsFor returns the signal set of one category, or nil when the
// category is not declared.
func (r *Registry) SignalsFor(level Level, name string) []string {
	i, ok := r.index[level][name]
	if !ok {
		return nil
	}
	return append([]string(nil), r.categories[level][i].Signals...)
}

// ExemplarsFor returns the exemplar texts of one category.
func (r *Registry) ExemplarsFor(level Level, name string) []string {
	i, ok := r.index[level][name]
	if !ok {
		return nil
	}
	return append([]string(nil), r.categories[level][i].Exemplars...)
}

// Exclusions returns all mutual-exclusion pairs.
func (r *Registry) Exclusions() []Exclusion {
	return append([]Exclusion(nil), r.exclusions...)
}

// Synonyms returns the declared synonym groups.
func (r *Registry) Synonyms() []SynonymGroup {
	return append([]SynonymGroup(nil), r.synonyms...)
}

// Stopterms returns the stop-term override, empty when the default
// list applies.
func (r *Registry) Stopterms() []string {
	return append([]string(nil), r.stopterms...)
}

// MaxSignals returns the largest signal-set size among the level's
// categories. Rule confidence is normalized against this bound.
func (r *Registry) MaxSignals(level Level) int {
	max := 0
	for _, c := range r.categories[level] {
		if len(c.Signals) > max {
			max = len(c.Signals)
		}
	}
	return max
}

// SignalPhrases returns every multi-word signal in the registry,
// deduplicated and sorted. The extractor folds these into single
// vector terms so phrase evidence carries weight.
func (r *Registry) SignalPhrases() []string {
	set := make(map[string]struct{})
	for _, level := range Levels() {
		for _, c := range r.categories[level] {
			for _, s := range c.Signals {
				if strings.Contains(s, " ") {
					set[s] = struct{}{}
				}
			}
		}
	}
	phrases := make([]string, 0, len(set))
	for p := range set {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	return phrases
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
