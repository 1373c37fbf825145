package cluster

import (
	"math"
	"math/rand"
	"sort"

	"github.com/phylobot/phylo/pkg/phylo/feature"
)

// distEpsilon bounds float comparison when deciding whether two
// vectors occupy the same point.
const distEpsilon = 1e-9

// Group is one partition of the input vectors. Members index into the
// slice handed to the strategy, in ascending order.
type Group struct {
	Members  []int
	Centroid feature.Vector
	Cohesion float64
}

// Strategy partitions feature vectors into groups. Implementations
// must return identical partitions for identical inputs and seed.
type Strategy interface {
	Partition(vectors []feature.Vector, seed int64) []Group
}

// KMeans groups vectors by cosine distance using Lloyd iterations.
// The group count is derived from the input size, capped by
// MaxGroups. The zero value is usable.
type KMeans struct {
	MaxGroups int
	MaxIter   int
}

// NewKMeans returns a strategy capped at maxGroups groups.
func NewKMeans(maxGroups int) *KMeans {
	return &KMeans{MaxGroups: maxGroups}
}

func (k *KMeans) maxGroups() int {
	if k.MaxGroups > 0 {
		return k.MaxGroups
	}
	return 8
}

func (k *KMeans) maxIter() int {
	if k.MaxIter > 0 {
		return k.MaxIter
	}
	return 50
}

// groupCount picks k for n vectors: ceil(sqrt(n/2)), clamped to
// [1, min(MaxGroups, n)].
func (k *KMeans) groupCount(n int) int {
	count := int(math.Ceil(math.Sqrt(float64(n) / 2)))
	if count < 1 {
		count = 1
	}
	if limit := k.maxGroups(); count > limit {
		count = limit
	}
	if count > n {
		count = n
	}
	return count
}

// Partition runs seeded k-means over the vectors. The seed drives the
// first centroid pick; the remaining centroids come from the
// farthest-point heuristic, so a fixed seed fixes the whole run.
// Groups are ordered by their smallest member index.
func (k *KMeans) Partition(vectors []feature.Vector, seed int64) []Group {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []Group{singleton(vectors, 0)}
	}

	centroids := k.initCentroids(vectors, seed)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < k.maxIter(); iter++ {
		moved := false
		for i, v := range vectors {
			nearest := nearestCentroid(v, centroids)
			if nearest != assign[i] {
				assign[i] = nearest
				moved = true
			}
		}
		if !moved {
			break
		}
		recenter(centroids, vectors, assign)
	}

	return collect(centroids, vectors, assign)
}

// initCentroids seeds the first centroid pseudo-randomly, then adds
// the vector farthest from all chosen centroids until the target
// count is reached. Coincident candidates stop the expansion early.
func (k *KMeans) initCentroids(vectors []feature.Vector, seed int64) []feature.Vector {
	rng := rand.New(rand.NewSource(seed))
	first := rng.Intn(len(vectors))

	centroids := []feature.Vector{clone(vectors[first])}
	target := k.groupCount(len(vectors))
	for len(centroids) < target {
		next, dist := -1, 0.0
		for i, v := range vectors {
			d := minDistance(v, centroids)
			if d > dist+distEpsilon {
				next, dist = i, d
			}
		}
		if next < 0 || dist <= distEpsilon {
			break
		}
		centroids = append(centroids, clone(vectors[next]))
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid, lowest
// index winning ties.
func nearestCentroid(v feature.Vector, centroids []feature.Vector) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		if d := distance(v, c); d < bestDist-distEpsilon {
			best, bestDist = i, d
		}
	}
	return best
}

// recenter replaces every centroid with the mean of its members.
// Empty groups keep their previous centroid so they can re-acquire
// members on the next pass.
func recenter(centroids, vectors []feature.Vector, assign []int) {
	sums := make([]feature.Vector, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = feature.Vector{}
	}
	for i, v := range vectors {
		sums[assign[i]].Add(v)
		counts[assign[i]]++
	}
	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		sums[i].Scale(1 / float64(counts[i]))
		centroids[i] = sums[i]
	}
}

// collect materializes non-empty groups ordered by smallest member
// index, with members ascending and cohesion as the mean cosine of
// members to the centroid.
func collect(centroids, vectors []feature.Vector, assign []int) []Group {
	members := make(map[int][]int, len(centroids))
	for i, a := range assign {
		members[a] = append(members[a], i)
	}

	groups := make([]Group, 0, len(members))
	for ci, c := range centroids {
		ms := members[ci]
		if len(ms) == 0 {
			continue
		}
		cohesion := 0.0
		for _, m := range ms {
			cohesion += vectors[m].Cosine(c)
		}
		groups = append(groups, Group{
			Members:  ms,
			Centroid: c,
			Cohesion: cohesion / float64(len(ms)),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Members[0] < groups[j].Members[0]
	})
	return groups
}

func singleton(vectors []feature.Vector, i int) Group {
	c := clone(vectors[i])
	return Group{Members: []int{i}, Centroid: c, Cohesion: vectors[i].Cosine(c)}
}

func distance(a, b feature.Vector) float64 {
	return 1 - a.Cosine(b)
}

func minDistance(v feature.Vector, centroids []feature.Vector) float64 {
	min := math.Inf(1)
	for _, c := range centroids {
		if d := distance(v, c); d < min {
			min = d
		}
	}
	return min
}

func clone(v feature.Vector) feature.Vector {
	c := make(feature.Vector, len(v))
	for term, w := range v {
		c[term] = w
	}
	return c
}
