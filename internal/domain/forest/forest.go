// Package forest implements a seeded random-forest regressor over fixed
// three-feature rows (encoded user, encoded card, hour of day).
//
// The forest averages bootstrap-sampled CART regression trees grown with
// variance-reduction splits. Fitting is deterministic for a given seed: each
// tree draws from its own generator derived from the root seed, so the result
// does not depend on goroutine scheduling.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"
)

// FeatureCount is the fixed width of a feature row.
const FeatureCount = 3

// Default forest configuration constants.
const (
	defaultTreeCount   = 100
	defaultMaxDepth    = 12
	defaultMinLeafSize = 1
	defaultSeed        = 42

	// perTreeSeedStride decorrelates per-tree generators derived from the
	// root seed.
	perTreeSeedStride = 0x5851f42d4c957f2d
)

// Sample is one training row.
type Sample struct {
	Features [FeatureCount]float64 `json:"f"`
	Target   float64               `json:"t"`
}

// Node is one node of a fitted regression tree, stored in a flat slice.
// Leaf nodes carry the mean target value; internal nodes route on
// Features[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a single fitted regression tree.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is the fitted ensemble. It is immutable after Fit and safe for
// concurrent Predict calls.
type Forest struct {
	Trees []Tree `json:"trees"`

	treeCount   int
	maxDepth    int
	minLeafSize int
	seed        int64
}

// New creates an unfitted forest with configuration options.
func New(opts ...Option) *Forest {
	f := &Forest{
		treeCount:   defaultTreeCount,
		maxDepth:    defaultMaxDepth,
		minLeafSize: defaultMinLeafSize,
		seed:        defaultSeed,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fit grows the ensemble from samples. Trees are fit in parallel; ctx cancels
// the run.
func (f *Forest) Fit(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	f.Trees = make([]Tree, f.treeCount)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < f.treeCount; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tree fit canceled: %w", ctx.Err())
			default:
			}

			rng := rand.New(rand.NewSource(f.seed + int64(i)*perTreeSeedStride)) //nolint:gosec // deterministic seed for reproducible training
			idx := bootstrap(rng, len(samples))
			f.Trees[i] = growTree(samples, idx, f.maxDepth, f.minLeafSize)
			return nil
		})
	}
	return g.Wait()
}

// Predict returns the ensemble mean for one feature row, floored at zero.
func (f *Forest) Predict(features [FeatureCount]float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, ErrNotFitted
	}

	var sum float64
	for t := range f.Trees {
		sum += f.Trees[t].predict(features)
	}
	pred := sum / float64(len(f.Trees))
	return math.Max(0, pred), nil
}

func (t Tree) predict(features [FeatureCount]float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// bootstrap draws n indices with replacement.
func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

// growTree builds one CART regression tree over samples[idx].
func growTree(samples []Sample, idx []int, maxDepth, minLeafSize int) Tree {
	t := Tree{}
	grow(&t, samples, idx, 0, maxDepth, minLeafSize)
	return t
}

// grow appends the subtree for samples[idx] and returns its root index.
func grow(t *Tree, samples []Sample, idx []int, depth, maxDepth, minLeafSize int) int {
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{})

	if depth >= maxDepth || len(idx) < 2*minLeafSize {
		t.Nodes[self] = leaf(samples, idx)
		return self
	}

	feature, threshold, ok := bestSplit(samples, idx, minLeafSize)
	if !ok {
		t.Nodes[self] = leaf(samples, idx)
		return self
	}

	var left, right []int
	for _, i := range idx {
		if samples[i].Features[feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := grow(t, samples, left, depth+1, maxDepth, minLeafSize)
	r := grow(t, samples, right, depth+1, maxDepth, minLeafSize)
	t.Nodes[self] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

func leaf(samples []Sample, idx []int) Node {
	var sum float64
	for _, i := range idx {
		sum += samples[i].Target
	}
	return Node{Leaf: true, Value: sum / float64(len(idx))}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children. Returns ok=false when no split
// separates the rows (constant features or constant target).
func bestSplit(samples []Sample, idx []int, minLeafSize int) (int, float64, bool) {
	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	ordered := make([]int, len(idx))
	for feature := 0; feature < FeatureCount; feature++ {
		copy(ordered, idx)
		sort.Slice(ordered, func(a, b int) bool {
			return samples[ordered[a]].Features[feature] < samples[ordered[b]].Features[feature]
		})

		// Prefix sums let each candidate threshold be evaluated in O(1).
		var leftSum, leftSq float64
		var totalSum, totalSq float64
		for _, i := range ordered {
			totalSum += samples[i].Target
			totalSq += samples[i].Target * samples[i].Target
		}

		n := len(ordered)
		for k := 0; k < n-1; k++ {
			y := samples[ordered[k]].Target
			leftSum += y
			leftSq += y * y

			cur := samples[ordered[k]].Features[feature]
			next := samples[ordered[k+1]].Features[feature]
			if cur == next {
				continue // no threshold separates identical values
			}
			if k+1 < minLeafSize || n-k-1 < minLeafSize {
				continue
			}

			nl, nr := float64(k+1), float64(n-k-1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
