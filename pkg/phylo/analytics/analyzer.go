// Package analytics aggregates per-level assignment statistics over
// classified records: category distributions, unknown rates, conflict
// totals and low-confidence counts.
package analytics

import (
	"sort"

	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
)

// Analyzer accumulates assignment stats record by record.
type Analyzer struct {
	minConfidence float64
	totalRecords  int
	conflictTotal int
	overallSum    float64
	levelCounts   map[registry.Level]map[string]int
	lowConfidence map[registry.Level]int
	sourceCounts  map[record.Source]int
}

// NewAnalyzer creates an empty analyzer. Assignments with a category
// but confidence below minConfidence count as low-confidence.
func NewAnalyzer(minConfidence float64) *Analyzer {
	return &Analyzer{
		minConfidence: minConfidence,
		levelCounts:   make(map[registry.Level]map[string]int),
		lowConfidence: make(map[registry.Level]int),
		sourceCounts:  make(map[record.Source]int),
	}
}

// Process consumes one classified record.
func (a *Analyzer) Process(rec record.ClassifiedRecord) {
	a.totalRecords++
	a.conflictTotal += len(rec.Conflicts)
	a.overallSum += rec.OverallConfidence

	for _, asg := range rec.Assignments {
		if a.levelCounts[asg.Level] == nil {
			a.levelCounts[asg.Level] = make(map[string]int)
		}
		a.levelCounts[asg.Level][asg.Category]++
		a.sourceCounts[asg.Source]++
		if asg.Category != registry.Unknown && asg.Confidence < a.minConfidence {
			a.lowConfidence[asg.Level]++
		}
	}
}

// Summary is a snapshot of the accumulated statistics.
type Summary struct {
	TotalRecords    int                   `json:"total_records"`
	Levels          []LevelSummary        `json:"levels"`
	ConflictTotal   int                   `json:"conflict_total"`
	MeanConfidence  float64               `json:"mean_confidence"`
	SourceBreakdown map[record.Source]int `json:"source_breakdown"`
}

// LevelSummary reports the category distribution at one level.
type LevelSummary struct {
	Level         registry.Level  `json:"level"`
	Categories    []CategoryCount `json:"categories"`
	Unknown       int             `json:"unknown"`
	UnknownRate   float64         `json:"unknown_rate"`
	LowConfidence int             `json:"low_confidence"`
}

// CategoryCount is one category's record count at a level.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Snapshot returns the current summary. Levels appear in rank order;
// categories by descending count, ties by name.
func (a *Analyzer) Snapshot() Summary {
	s := Summary{
		TotalRecords:    a.totalRecords,
		ConflictTotal:   a.conflictTotal,
		SourceBreakdown: make(map[record.Source]int, len(a.sourceCounts)),
	}
	if a.totalRecords > 0 {
		s.MeanConfidence = a.overallSum / float64(a.totalRecords)
	}
	for src, n := range a.sourceCounts {
		s.SourceBreakdown[src] = n
	}

	for _, level := range registry.Levels() {
		ls := LevelSummary{Level: level, LowConfidence: a.lowConfidence[level]}
		for cat, n := range a.levelCounts[level] {
			if cat == registry.Unknown {
				ls.Unknown = n
				continue
			}
			ls.Categories = append(ls.Categories, CategoryCount{Category: cat, Count: n})
		}
		sort.Slice(ls.Categories, func(i, j int) bool {
			if ls.Categories[i].Count != ls.Categories[j].Count {
				return ls.Categories[i].Count > ls.Categories[j].Count
			}
			return ls.Categories[i].Category < ls.Categories[j].Category
		})
		if a.totalRecords > 0 {
			ls.UnknownRate = float64(ls.Unknown) / float64(a.totalRecords)
		}
		s.Levels = append(s.Levels, ls)
	}
	return s
}

// Summarize runs an analyzer over a full record slice.
func Summarize(records []record.ClassifiedRecord, minConfidence float64) Summary {
	a := NewAnalyzer(minConfidence)
	for _, rec := range records {
		a.Process(rec)
	}
	return a.Snapshot()
}

// Distribution flattens a summary back to level→category→count,
// matching store.Store.LevelDistribution output.
func (s Summary) Distribution() map[registry.Level]map[string]int {
	out := make(map[registry.Level]map[string]int, len(s.Levels))
	for _, ls := range s.Levels {
		m := make(map[string]int, len(ls.Categories)+1)
		for _, cc := range ls.Categories {
			m[cc.Category] = cc.Count
		}
		if ls.Unknown > 0 {
			m[registry.Unknown] = ls.Unknown
		}
		if len(m) > 0 {
			out[ls.Level] = m
		}
	}
	return out
}
