// Package phylo classifies robot records into an eight-level taxonomy
// using registry signal rules, exemplar similarity and unsupervised
// grouping over a shared per-batch feature space.
package phylo

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/phylobot/phylo/pkg/phylo/cluster"
	"github.com/phylobot/phylo/pkg/phylo/feature"
	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/lexicon"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/resolve"
	"github.com/phylobot/phylo/pkg/phylo/rules"
	"github.com/phylobot/phylo/pkg/phylo/similarity"
)

// DefaultSeed drives clustering when Options.Seed is left zero.
const DefaultSeed = 42

// Thresholds holds the tunable decision boundaries of the pipeline.
// The zero value selects DefaultThresholds.
type Thresholds struct {
	// Rule is the confidence a rule outcome needs to stand alone.
	Rule float64
	// MinSimilarity is the floor for accepting an exemplar match.
	MinSimilarity float64
	// MajorityFraction of a cluster's members must share a best
	// exemplar category before the cluster maps onto it.
	MajorityFraction float64
	// ClusterCap bounds the confidence of cluster-derived assignments.
	ClusterCap float64
	// MinConfidence separates confident assignments from weak ones in
	// reporting; the pipeline itself never drops below it.
	MinConfidence float64
	// MaxGroups caps the cluster count per level.
	MaxGroups int
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Rule:             0.3,
		MinSimilarity:    0.2,
		MajorityFraction: 0.6,
		ClusterCap:       0.5,
		MinConfidence:    0.5,
		MaxGroups:        8,
	}
}

// Options configures an Engine.
type Options struct {
	// Registry is the taxonomy to classify against; nil selects the
	// embedded default. It is validated before use.
	Registry *registry.Registry
	// Thresholds tunes decision boundaries; zero value for defaults.
	Thresholds Thresholds
	// Workers bounds pipeline concurrency; <=0 means runtime.NumCPU.
	Workers int
	// Seed fixes the clustering PRNG; 0 selects DefaultSeed.
	Seed int64
	// Grouping overrides the clustering strategy; nil selects seeded
	// k-means capped at Thresholds.MaxGroups.
	Grouping cluster.Strategy
}

// Engine is the batch classification facade. Safe for concurrent
// ClassifyBatch calls; Reinit must not run concurrently with batches.
type Engine struct {
	mu         sync.RWMutex
	reg        *registry.Registry
	ext        *feature.Extractor
	scorer     *rules.Scorer
	exemplars  *similarity.Index
	thresholds Thresholds
	workers    int
	seed       int64
	grouping   cluster.Strategy

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an Engine with the given options, validating the
// registry up front.
func New(opts Options) (*Engine, error) {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default()
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	th := opts.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	grouping := opts.Grouping
	if grouping == nil {
		grouping = cluster.NewKMeans(th.MaxGroups)
	}

	e := &Engine{
		thresholds: th,
		workers:    workers,
		seed:       seed,
		grouping:   grouping,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	e.install(reg)
	return e, nil
}

// install wires the registry-derived components: synonym lexicon,
// tokenizer with registry stop-terms, signal-phrase folder, signal
// scorer and exemplar index.
func (e *Engine) install(reg *registry.Registry) {
	lex := lexicon.New()
	for _, g := range reg.Synonyms() {
		lex.AddSynonyms(g.Canonical, g.Variants...)
	}
	tok := feature.NewTokenizer(nil)
	for _, term := range reg.Stopterms() {
		tok.AddStopterm(term)
	}
	ext := feature.NewExtractor(tok, feature.BuildFolder(tok, lex, reg.SignalPhrases()))
	ext.SetLexicon(lex)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reg = reg
	e.ext = ext
	e.scorer = rules.NewScorer(reg, ext)
	e.exemplars = similarity.NewIndex(reg, ext)
}

// Reinit revalidates and swaps the registry. In-flight batches keep
// the components they started with.
func (e *Engine) Reinit(reg *registry.Registry) error {
	if reg == nil {
		return fmt.Errorf("nil registry: %w", internalerr.ErrInvalidRegistry)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	e.install(reg)
	return nil
}

// Registry returns the active registry.
func (e *Engine) Registry() *registry.Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg
}

// Thresholds returns the engine's decision boundaries.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Result is one classified batch.
type Result struct {
	BatchID  string                    `json:"batch_id"`
	Records  []record.ClassifiedRecord `json:"records"`
	Clusters []record.ClusterGroup     `json:"clusters,omitempty"`
	Skipped  []record.Skipped          `json:"skipped,omitempty"`
}

// ClassifyBatch runs the full pipeline over the records: parallel
// validation and feature extraction, serial batch statistics, parallel
// rule and exemplar scoring, seeded clustering of the levels that
// stayed weak, then parallel resolution. Classified records come back
// in input order; invalid records land in Skipped. Identical inputs
// yield identical classifications regardless of worker count.
func (e *Engine) ClassifyBatch(ctx context.Context, raws []record.RawRecord) (*Result, error) {
	e.mu.RLock()
	reg, ext, scorer, exemplars := e.reg, e.ext, e.scorer, e.exemplars
	e.mu.RUnlock()
	th, workers, seed, grouping := e.thresholds, e.workers, e.seed, e.grouping

	res := &Result{BatchID: e.newBatchID()}

	type extracted struct {
		ok  bool
		x   feature.Extraction
		err error
	}
	exts := make([]extracted, len(raws))
	err := runParallel(ctx, workers, len(raws), func(i int) {
		r := raws[i]
		if verr := r.Validate(); verr != nil {
			exts[i] = extracted{err: verr}
			return
		}
		exts[i] = extracted{ok: true, x: ext.Extract(r.AnalysisText())}
	})
	if err != nil {
		return nil, err
	}

	kept := make([]int, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i := range raws {
		switch {
		case exts[i].err != nil:
			res.Skipped = append(res.Skipped, record.Skipped{Index: i, ID: raws[i].ID, Reason: exts[i].err.Error()})
		case duplicateID(seen, raws[i].ID):
			res.Skipped = append(res.Skipped, record.Skipped{
				Index: i, ID: raws[i].ID,
				Reason: fmt.Sprintf("id %q already present in batch: %s", raws[i].ID, internalerr.ErrDuplicate),
			})
		default:
			kept = append(kept, i)
		}
	}

	// Corpus statistics freeze here; every vector that follows shares
	// this weighting space.
	corpus := feature.NewCorpus()
	for _, i := range kept {
		corpus.Add(exts[i].x.Tokens)
	}
	vectors := make([]feature.Vector, len(raws))
	for _, i := range kept {
		vectors[i] = corpus.Vector(exts[i].x.Tokens)
	}
	matcher := exemplars.Vectorize(corpus)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ruleOuts := make([][]rules.Outcome, len(raws))
	simOuts := make([][]similarity.Outcome, len(raws))
	err = runParallel(ctx, workers, len(kept), func(k int) {
		i := kept[k]
		ruleOuts[i] = scorer.ScoreAll(exts[i].x, vectors[i])
		sims := make([]similarity.Outcome, 0, registry.LevelCount)
		for _, level := range registry.Levels() {
			sims = append(sims, matcher.Match(level, vectors[i], th.MinSimilarity))
		}
		simOuts[i] = sims
	})
	if err != nil {
		return nil, err
	}

	cands := e.clusterWeakLevels(res, raws, kept, vectors, ruleOuts, simOuts, matcher, grouping, seed)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolver := resolve.New(reg, th.Rule)
	classified := make([]record.ClassifiedRecord, len(raws))
	err = runParallel(ctx, workers, len(kept), func(k int) {
		i := kept[k]
		classified[i] = resolver.Resolve(raws[i], resolve.Inputs{
			Rules:      ruleOuts[i],
			Similarity: simOuts[i],
			Cluster:    cands[i],
		})
	})
	if err != nil {
		return nil, err
	}

	res.Records = make([]record.ClassifiedRecord, 0, len(kept))
	for _, i := range kept {
		res.Records = append(res.Records, classified[i])
	}
	return res, nil
}

// clusterWeakLevels partitions, per level, the records that neither
// rules nor exemplars could place, and maps majority clusters back to
// categories. Every group is surfaced on the result, mapped or not.
func (e *Engine) clusterWeakLevels(res *Result, raws []record.RawRecord, kept []int,
	vectors []feature.Vector, ruleOuts [][]rules.Outcome, simOuts [][]similarity.Outcome,
	matcher *similarity.Matcher, grouping cluster.Strategy, seed int64) []map[registry.Level]resolve.Candidate {

	th := e.thresholds
	cands := make([]map[registry.Level]resolve.Candidate, len(raws))

	for _, level := range registry.Levels() {
		pos := level.Position() - 1
		var weak []int
		for _, i := range kept {
			ro := ruleOuts[i][pos]
			ruleWins := ro.Category != registry.Unknown && ro.Confidence >= th.Rule
			if ruleWins || simOuts[i][pos].Category != registry.Unknown {
				continue
			}
			weak = append(weak, i)
		}
		if len(weak) < 2 {
			continue
		}

		vecs := make([]feature.Vector, len(weak))
		for j, i := range weak {
			vecs[j] = vectors[i]
		}

		unlabeled := 0
		for _, g := range grouping.Partition(vecs, seed+int64(level.Position())) {
			category := majorityCategory(matcher, level, g.Members, vecs, th.MajorityFraction)
			label := category
			if category == "" {
				unlabeled++
				label = fmt.Sprintf("Cluster-%d", unlabeled)
			} else {
				for _, m := range g.Members {
					i := weak[m]
					conf := matcher.SimilarityTo(level, category, vecs[m])
					if conf > th.ClusterCap {
						conf = th.ClusterCap
					}
					if conf <= 0 {
						continue
					}
					if cands[i] == nil {
						cands[i] = make(map[registry.Level]resolve.Candidate, 2)
					}
					cands[i][level] = resolve.Candidate{Category: category, Confidence: conf}
				}
			}

			ids := make([]string, len(g.Members))
			for j, m := range g.Members {
				ids[j] = raws[weak[m]].ID
			}
			res.Clusters = append(res.Clusters, record.ClusterGroup{
				Level:    level,
				Label:    label,
				Members:  ids,
				Cohesion: g.Cohesion,
			})
		}
	}
	return cands
}

// majorityCategory returns the best exemplar category shared by at
// least fraction of the members, or empty when votes are too split.
// At most one category can clear a fraction above one half.
func majorityCategory(matcher *similarity.Matcher, level registry.Level, members []int,
	vecs []feature.Vector, fraction float64) string {

	votes := make(map[string]int, len(members))
	for _, m := range members {
		if cat, _ := matcher.Best(level, vecs[m]); cat != "" {
			votes[cat]++
		}
	}
	needed := fraction * float64(len(members))
	cats := make([]string, 0, len(votes))
	for cat := range votes {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		if float64(votes[cat]) >= needed-1e-9 {
			return cat
		}
	}
	return ""
}

func duplicateID(seen map[string]struct{}, id string) bool {
	if _, ok := seen[id]; ok {
		return true
	}
	seen[id] = struct{}{}
	return false
}

func (e *Engine) newBatchID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

// runParallel fans indices [0,n) over a bounded worker pool, results
// written by index so scheduling never changes output. Workers stop
// picking up work once ctx is cancelled.
func runParallel(ctx context.Context, workers, n int, fn func(int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}
