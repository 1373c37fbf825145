// Package audit analyzes how a classified corpus exercised the
// registry: signals that never fire, signals with weak coverage inside
// their own category, and frequent corpus terms that belong to no
// category. It is an offline curation aid; it never mutates a registry
// and never runs inside classification.
package audit

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/phylobot/phylo/pkg/phylo/feature"
	"github.com/phylobot/phylo/pkg/phylo/lexicon"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/rules"
)

// Finding type constants.
const (
	FindingDeadSignal  = "dead_signal"  // declared signal that matched no record
	FindingLowCoverage = "low_coverage" // signal missing from most of its category's records
	FindingOrphanTerm  = "orphan_term"  // frequent corpus term outside every signal set
)

// Finding is one audit observation about the registry.
type Finding struct {
	Type     string
	Level    registry.Level // owning level; suggested level for orphans (0 when none)
	Category string         // owning category; suggested category for orphans ("" when none)
	Term     string         // normalized signal text or folded corpus term
	Support  int            // records containing the term
	Missed   int            // category records the signal failed to match
	Coverage float64        // category coverage for signals, corpus fraction for orphans
	// Confidence estimates how actionable the finding is, in [0,1].
	Confidence float64
}

// Reviewer optionally screens findings before they are reported.
type Reviewer interface {
	Approve(ctx context.Context, f Finding) (bool, error)
}

// Thresholds control audit sensitivity.
type Thresholds struct {
	MinCoverage    float64 // flag signals covering less than this fraction of their category
	MinMissed      int     // low-coverage findings need at least this many missed records
	MinOrphanShare float64 // minimum record fraction for orphan terms
	ConfidenceBias float64 // base confidence added to every finding
}

// Auditor audits a registry against one classified corpus. Dead
// signals are always reported; low-coverage and orphan findings are
// gated by the thresholds.
type Auditor struct {
	Registry   *registry.Registry
	Thresholds Thresholds
	Reviewer   Reviewer // optional
}

// Run examines the records and returns findings ordered by descending
// confidence. When a Reviewer is set, only approved findings survive.
func (a *Auditor) Run(ctx context.Context, records []record.ClassifiedRecord) ([]Finding, error) {
	if a.Registry == nil {
		return nil, errors.New("audit: nil registry")
	}
	th := a.thresholdsOrDefault()

	lex := lexicon.New()
	for _, g := range a.Registry.Synonyms() {
		lex.AddSynonyms(g.Canonical, g.Variants...)
	}
	tok := feature.NewTokenizer(nil)
	for _, term := range a.Registry.Stopterms() {
		tok.AddStopterm(term)
	}
	ext := feature.NewExtractor(tok, feature.BuildFolder(tok, lex, a.Registry.SignalPhrases()))
	ext.SetLexicon(lex)
	scorer := rules.NewScorer(a.Registry, ext)

	c := newCorpusScan(a.Registry, ext)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.observe(i, rec, ext, scorer)
	}

	findings := a.signalFindings(c, th)
	findings = append(findings, a.orphanFindings(c, th)...)

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		if findings[i].Type != findings[j].Type {
			return findings[i].Type < findings[j].Type
		}
		if findings[i].Level != findings[j].Level {
			return findings[i].Level < findings[j].Level
		}
		return findings[i].Term < findings[j].Term
	})

	if a.Reviewer == nil {
		return findings, nil
	}
	var approved []Finding
	for _, f := range findings {
		ok, err := a.Reviewer.Approve(ctx, f)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, f)
		}
	}
	return approved, nil
}

func (a *Auditor) thresholdsOrDefault() Thresholds {
	th := a.Thresholds
	if th.MinCoverage == 0 {
		th.MinCoverage = 0.4
	}
	if th.MinMissed == 0 {
		th.MinMissed = 10
	}
	if th.MinOrphanShare == 0 {
		th.MinOrphanShare = 0.1
	}
	if th.ConfidenceBias == 0 {
		th.ConfidenceBias = 0.2
	}
	return th
}

// signalKey identifies one declared signal by its normalized text.
type signalKey struct {
	level    registry.Level
	category string
	term     string
}

// corpusScan accumulates one pass over the records: per-signal match
// counts, per-category assignment counts, per-term record sets.
type corpusScan struct {
	total      int
	declared   []signalKey
	anyMatch   map[signalKey]int // records matching the signal anywhere
	catMatch   map[signalKey]int // matches inside the signal's own category
	assigned   map[registry.Level]map[string]int
	termRecs   map[string][]int    // record indexes containing each folded term
	signalTerm map[string]struct{} // folded forms of every declared signal
	records    []record.ClassifiedRecord
}

func newCorpusScan(reg *registry.Registry, ext *feature.Extractor) *corpusScan {
	c := &corpusScan{
		anyMatch:   make(map[signalKey]int),
		catMatch:   make(map[signalKey]int),
		assigned:   make(map[registry.Level]map[string]int),
		termRecs:   make(map[string][]int),
		signalTerm: make(map[string]struct{}),
	}
	for _, level := range registry.Levels() {
		c.assigned[level] = make(map[string]int)
		for _, cat := range reg.CategoriesFor(level) {
			seen := make(map[string]struct{}, len(cat.Signals))
			for _, raw := range cat.Signals {
				text := ext.NormalizeTerm(raw)
				if text == "" {
					continue
				}
				if _, dup := seen[text]; dup {
					continue
				}
				seen[text] = struct{}{}
				c.declared = append(c.declared, signalKey{level: level, category: cat.Name, term: text})
				c.signalTerm[feature.FoldTerm(text)] = struct{}{}
			}
		}
	}
	return c
}

func (c *corpusScan) observe(idx int, rec record.ClassifiedRecord, ext *feature.Extractor, scorer *rules.Scorer) {
	c.total++
	c.records = append(c.records, rec)

	x := ext.Extract(rec.AnalysisText())
	seen := make(map[string]struct{}, len(x.Tokens))
	for _, term := range x.Tokens {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		c.termRecs[term] = append(c.termRecs[term], idx)
	}

	assignedAt := make(map[registry.Level]string, len(rec.Assignments))
	for _, asg := range rec.Assignments {
		if asg.Category == registry.Unknown {
			continue
		}
		assignedAt[asg.Level] = asg.Category
		c.assigned[asg.Level][asg.Category]++
	}

	for _, out := range scorer.ScoreAll(x, nil) {
		for _, cs := range out.Scores {
			for _, sig := range cs.Matched {
				key := signalKey{level: out.Level, category: cs.Category, term: sig}
				c.anyMatch[key]++
				if assignedAt[out.Level] == cs.Category {
					c.catMatch[key]++
				}
			}
		}
	}
}

func (a *Auditor) signalFindings(c *corpusScan, th Thresholds) []Finding {
	var findings []Finding
	for _, key := range c.declared {
		catRecords := c.assigned[key.level][key.category]
		support := c.anyMatch[key]

		if support == 0 {
			findings = append(findings, Finding{
				Type:       FindingDeadSignal,
				Level:      key.level,
				Category:   key.category,
				Term:       key.term,
				Missed:     catRecords,
				Confidence: a.coverageConfidence(catRecords, 0, th),
			})
			continue
		}
		if catRecords == 0 {
			continue
		}
		coverage := float64(c.catMatch[key]) / float64(catRecords)
		missed := catRecords - c.catMatch[key]
		if coverage >= th.MinCoverage || missed < th.MinMissed {
			continue
		}
		findings = append(findings, Finding{
			Type:       FindingLowCoverage,
			Level:      key.level,
			Category:   key.category,
			Term:       key.term,
			Support:    support,
			Missed:     missed,
			Coverage:   coverage,
			Confidence: a.coverageConfidence(missed, coverage, th),
		})
	}
	return findings
}

func (a *Auditor) orphanFindings(c *corpusScan, th Thresholds) []Finding {
	if c.total == 0 {
		return nil
	}
	var findings []Finding
	for term, recs := range c.termRecs {
		share := float64(len(recs)) / float64(c.total)
		if share < th.MinOrphanShare {
			continue
		}
		if _, declared := c.signalTerm[term]; declared {
			continue
		}
		level, category := c.suggestCategory(recs)
		conf := th.ConfidenceBias + 0.8*(1-math.Exp(-share/th.MinOrphanShare))
		if category != "" {
			conf += 0.1
		}
		if conf > 1 {
			conf = 1
		}
		findings = append(findings, Finding{
			Type:       FindingOrphanTerm,
			Level:      level,
			Category:   category,
			Term:       term,
			Support:    len(recs),
			Coverage:   share,
			Confidence: conf,
		})
	}
	return findings
}

// suggestCategory proposes the assignment most concentrated among the
// records containing an orphan term. A suggestion needs a strict
// majority; ties go unsuggested.
func (c *corpusScan) suggestCategory(recs []int) (registry.Level, string) {
	votes := make(map[registry.Level]map[string]int)
	for _, idx := range recs {
		for _, asg := range c.records[idx].Assignments {
			if asg.Category == registry.Unknown {
				continue
			}
			if votes[asg.Level] == nil {
				votes[asg.Level] = make(map[string]int)
			}
			votes[asg.Level][asg.Category]++
		}
	}

	need := len(recs)/2 + 1
	bestCount := 0
	var bestLevel registry.Level
	var bestCategory string
	for _, level := range registry.Levels() {
		cats := make([]string, 0, len(votes[level]))
		for cat := range votes[level] {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			if n := votes[level][cat]; n >= need && n > bestCount {
				bestCount = n
				bestLevel = level
				bestCategory = cat
			}
		}
	}
	return bestLevel, bestCategory
}

func (a *Auditor) coverageConfidence(missed int, coverage float64, th Thresholds) float64 {
	missedComponent := 1 - math.Exp(-float64(missed)/float64(th.MinMissed))
	coverageComponent := 1 - coverage
	conf := th.ConfidenceBias + 0.5*missedComponent + 0.5*coverageComponent
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}
