package classifier

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// treeNode is a node of a CART decision tree. Leaves carry the class code;
// internal nodes split on Feature <= Threshold. Exported fields keep the
// fitted forest gob encodable.
type treeNode struct {
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
	Class     int
	Leaf      bool
}

// decisionTree is a CART classification tree grown with the Gini impurity
// criterion. It is the base learner of RandomForestClassifier and is not
// exposed on its own.
type decisionTree struct {
	Root        *treeNode
	MaxFeatures int // features sampled per split; <=0 means all
}

type treeParams struct {
	maxDepth        int // <=0 means unlimited
	minSamplesSplit int
	maxFeatures     int
	rng             *rand.Rand
}

// fit grows the tree on the rows of X selected by idx.
func (t *decisionTree) fit(X mat.Matrix, y []int, idx []int, p treeParams) {
	t.MaxFeatures = p.maxFeatures
	t.Root = growTree(X, y, idx, 0, p)
}

func growTree(X mat.Matrix, y []int, idx []int, depth int, p treeParams) *treeNode {
	if len(idx) < p.minSamplesSplit || (p.maxDepth > 0 && depth >= p.maxDepth) || isPure(y, idx) {
		return &treeNode{Leaf: true, Class: majorityClass(y, idx)}
	}

	feature, threshold, ok := bestSplit(X, y, idx, p)
	if !ok {
		return &treeNode{Leaf: true, Class: majorityClass(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Class: majorityClass(y, idx)}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(X, y, left, depth+1, p),
		Right:     growTree(X, y, right, depth+1, p),
	}
}

// bestSplit searches a random subset of features for the split with the
// lowest weighted Gini impurity.
func bestSplit(X mat.Matrix, y []int, idx []int, p treeParams) (int, float64, bool) {
	_, nFeatures := X.Dims()
	features := sampleFeatures(nFeatures, p.maxFeatures, p.rng)

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	counts := make(map[int]int)
	leftCounts := make(map[int]int)

	for _, f := range features {
		// Candidate thresholds are midpoints between consecutive sorted
		// values along the feature.
		order := make([]int, len(idx))
		copy(order, idx)
		sortByFeature(X, f, order)

		clear(counts)
		clear(leftCounts)
		for _, i := range order {
			counts[y[i]]++
		}

		nLeft := 0
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftCounts[y[i]]++
			nLeft++

			v, next := X.At(i, f), X.At(order[pos+1], f)
			if v == next {
				continue
			}

			g := weightedGini(counts, leftCounts, nLeft, len(order))
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = (v + next) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(total, left map[int]int, nLeft, n int) float64 {
	nRight := n - nLeft
	var giniL, giniR float64 = 1, 1
	for c, ct := range total {
		lc := left[c]
		pl := float64(lc) / float64(nLeft)
		pr := float64(ct-lc) / float64(nRight)
		giniL -= pl * pl
		giniR -= pr * pr
	}
	return (float64(nLeft)*giniL + float64(nRight)*giniR) / float64(n)
}

func sortByFeature(X mat.Matrix, f int, idx []int) {
	// Insertion sort keeps allocation-free behavior for the small index
	// slices typical of deep nodes; larger slices fall back comparably.
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && X.At(idx[j], f) < X.At(idx[j-1], f) {
			idx[j], idx[j-1] = idx[j-1], idx[j]
			j--
		}
	}
}

func sampleFeatures(nFeatures, maxFeatures int, rng *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= nFeatures {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(nFeatures)
	return perm[:maxFeatures]
}

func isPure(y []int, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

func majorityClass(y []int, idx []int) int {
	counts := make(map[int]int)
	best, bestCount := 0, -1
	for _, i := range idx {
		counts[y[i]]++
		// Ties resolve to the lowest class code for determinism.
		if c := counts[y[i]]; c > bestCount || (c == bestCount && y[i] < best) {
			best, bestCount = y[i], c
		}
	}
	return best
}

// predictRow walks the tree for one sample.
func (t *decisionTree) predictRow(X mat.Matrix, row int) int {
	node := t.Root
	for !node.Leaf {
		if X.At(row, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Class
}
