package surrogate

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// leaf marks a node with no split.
const leaf = -1

// Node is one entry of a flattened regression tree. Internal nodes send
// x[Feature] <= Threshold to Left and everything else to Right.
type Node struct {
	Feature   int
	Threshold float64
	Left      int32
	Right     int32
	Value     float64
}

// Tree is a CART regression tree stored as a flat node slice rooted at 0.
type Tree struct {
	Nodes []Node
}

func (t *Tree) predict(x []float64) float64 {
	i := int32(0)
	for {
		n := &t.Nodes[i]
		if n.Feature == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest averages the predictions of bootstrap-trained trees.
type Forest struct {
	Trees       []Tree
	NumFeatures int
}

// Predict returns the ensemble mean for an already-ordered feature vector.
func (f *Forest) Predict(x []float64) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

// valid reports whether every node reference stays inside its tree and every
// split feature is in range, so prediction cannot index out of bounds or loop.
func (f *Forest) valid() bool {
	if len(f.Trees) == 0 || f.NumFeatures <= 0 {
		return false
	}
	for _, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return false
		}
		for i, n := range t.Nodes {
			if n.Feature == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= f.NumFeatures {
				return false
			}
			// Children are always appended after their parent.
			if int(n.Left) <= i || int(n.Right) <= i || int(n.Left) >= len(t.Nodes) || int(n.Right) >= len(t.Nodes) {
				return false
			}
		}
	}
	return true
}

type forestParams struct {
	trees       int
	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int
	seed        uint64
}

// fitForest grows params.trees trees on bootstrap resamples of (x, y).
// Each tree draws from its own PCG stream so results depend only on the seed.
// The returned importance is the total squared-error reduction per feature.
func fitForest(x [][]float64, y []float64, p forestParams) (Forest, []float64) {
	numFeatures := len(x[0])
	importance := make([]float64, numFeatures)
	forest := Forest{Trees: make([]Tree, p.trees), NumFeatures: numFeatures}

	for t := range forest.Trees {
		rng := rand.New(rand.NewPCG(p.seed, uint64(t)+1))
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = rng.IntN(len(x))
		}
		b := &treeBuilder{x: x, y: y, p: p, rng: rng, importance: importance}
		b.grow(idx, 0)
		forest.Trees[t] = Tree{Nodes: b.nodes}
	}
	return forest, importance
}

type treeBuilder struct {
	x          [][]float64
	y          []float64
	p          forestParams
	rng        *rand.Rand
	nodes      []Node
	importance []float64
}

type split struct {
	feature   int
	threshold float64
	sse       float64
	nLeft     int
}

func (b *treeBuilder) grow(idx []int, depth int) int32 {
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	mean := sum / n
	sse := sumSq - sum*sum/n

	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Feature: leaf, Value: mean})

	if depth >= b.p.maxDepth || len(idx) < b.p.minSplit || len(idx) < 2*b.p.minLeaf || sse <= 1e-12 {
		return id
	}

	best, ok := b.bestSplit(idx, sse)
	if !ok {
		return id
	}

	// Partition in place: left block first.
	lo, hi := 0, len(idx)-1
	for lo <= hi {
		if b.x[idx[lo]][best.feature] <= best.threshold {
			lo++
			continue
		}
		idx[lo], idx[hi] = idx[hi], idx[lo]
		hi--
	}

	b.importance[best.feature] += sse - best.sse
	left := b.grow(idx[:lo], depth+1)
	right := b.grow(idx[lo:], depth+1)

	b.nodes[id] = Node{Feature: best.feature, Threshold: best.threshold, Left: left, Right: right, Value: mean}
	return id
}

func (b *treeBuilder) candidateFeatures() []int {
	numFeatures := len(b.x[0])
	if b.p.maxFeatures <= 0 || b.p.maxFeatures >= numFeatures {
		all := make([]int, numFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(numFeatures)[:b.p.maxFeatures]
}

// bestSplit scans every candidate feature for the threshold minimising the
// summed squared error of the two children.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	sorted := make([]int, len(idx))
	best := split{sse: parentSSE}
	found := false
	n := len(idx)

	for _, f := range b.candidateFeatures() {
		copy(sorted, idx)
		slices.SortFunc(sorted, func(a, c int) int { return cmp.Compare(b.x[a][f], b.x[c][f]) })

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			yi := b.y[sorted[k-1]]
			leftSum += yi
			leftSq += yi * yi

			if k < b.p.minLeaf || n-k < b.p.minLeaf {
				continue
			}
			lo, hi := b.x[sorted[k-1]][f], b.x[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < best.sse-1e-12 {
				thr := lo + (hi-lo)/2
				if thr >= hi {
					thr = lo
				}
				best = split{feature: f, threshold: thr, sse: sse, nLeft: k}
				found = true
			}
		}
	}
	return best, found
}
