package regression

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// DefaultTrees is the forest size when none is configured.
const DefaultTrees = 100

// Forest is a z-score scaler followed by a bagged ensemble of regression
// trees. Each tree is grown to purity on a bootstrap sample, splitting on the
// feature and threshold that most reduce squared error. Tree i draws from PCG
// stream (seed, i), so a fit is reproducible regardless of scheduling.
type Forest struct {
	trees      int
	seed       uint64
	scale      zscore
	ensemble   []regressionTree
	importance []float64
	fitted     bool
}

// NewForest returns an unfitted forest of the given size. trees <= 0 means
// DefaultTrees.
func NewForest(trees int, seed uint64) *Forest {
	if trees <= 0 {
		trees = DefaultTrees
	}
	return &Forest{trees: trees, seed: seed}
}

// Kind implements Regressor.
func (f *Forest) Kind() Kind { return KindForest }

// Fit implements Regressor.
func (f *Forest) Fit(x [][]float64, y []float64) error {
	if err := checkTarget(x, y); err != nil {
		return err
	}
	X, err := dense(x)
	if err != nil {
		return err
	}
	_, p := X.Dims()
	scale := fitZScore(X)
	rows := denseRows(scale.transform(X))

	ensemble := make([]regressionTree, f.trees)
	importances := make([][]float64, f.trees)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := range ensemble {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			rng := rand.New(rand.NewPCG(f.seed, uint64(i)))
			ensemble[i], importances[i] = growTree(rows, y, p, rng)
		}()
	}
	wg.Wait()

	f.scale = scale
	f.ensemble = ensemble
	f.importance = Normalize(MeanImportance(importances...))
	f.fitted = true
	return nil
}

// Predict implements Regressor. The prediction is the mean over all trees.
func (f *Forest) Predict(x [][]float64) ([]float64, error) {
	if !f.fitted {
		return nil, ErrNotFitted
	}
	X, err := dense(x)
	if err != nil {
		return nil, err
	}
	if _, c := X.Dims(); c != len(f.scale.mean) {
		return nil, fmt.Errorf("%w: got %d features, model has %d", ErrShape, c, len(f.scale.mean))
	}

	rows := denseRows(f.scale.transform(X))
	out := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, t := range f.ensemble {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(f.ensemble))
	}
	return out, nil
}

// FeatureImportances returns the squared-error reduction credited to each
// feature, averaged over the trees and normalised to sum to 1.
func (f *Forest) FeatureImportances() []float64 {
	return slices.Clone(f.importance)
}

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}

type treeNode struct {
	feature     int // -1 on leaves
	threshold   float64
	left, right int
	value       float64
}

type regressionTree struct {
	nodes []treeNode
}

func (t regressionTree) predict(row []float64) float64 {
	n := t.nodes[0]
	for n.feature >= 0 {
		if row[n.feature] <= n.threshold {
			n = t.nodes[n.left]
		} else {
			n = t.nodes[n.right]
		}
	}
	return n.value
}

type treeBuilder struct {
	x          [][]float64
	y          []float64
	features   []int
	rng        *rand.Rand
	nodes      []treeNode
	importance []float64
}

// growTree fits one tree on a bootstrap sample of the rows and returns it
// with its normalised impurity importances.
func growTree(x [][]float64, y []float64, p int, rng *rand.Rand) (regressionTree, []float64) {
	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = rng.IntN(len(x))
	}

	b := &treeBuilder{
		x:          x,
		y:          y,
		features:   make([]int, p),
		rng:        rng,
		importance: make([]float64, p),
	}
	for j := range b.features {
		b.features[j] = j
	}
	b.grow(sample)
	return regressionTree{nodes: b.nodes}, Normalize(b.importance)
}

// grow appends the subtree for sample and returns the index of its root.
func (b *treeBuilder) grow(sample []int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{feature: -1, value: b.mean(sample)})

	s, ok := b.bestSplit(sample)
	if !ok {
		return idx
	}
	b.importance[s.feature] += s.gain

	var left, right []int
	for _, i := range sample {
		if b.x[i][s.feature] <= s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.grow(left)
	r := b.grow(right)
	b.nodes[idx] = treeNode{feature: s.feature, threshold: s.threshold, left: l, right: r}
	return idx
}

func (b *treeBuilder) mean(sample []int) float64 {
	var sum float64
	for _, i := range sample {
		sum += b.y[i]
	}
	return sum / float64(len(sample))
}

type treeSplit struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit finds the split with the largest reduction in summed squared
// error. ok is false for pure or single-row nodes.
func (b *treeBuilder) bestSplit(sample []int) (treeSplit, bool) {
	n := len(sample)
	if n < 2 {
		return treeSplit{}, false
	}
	var sum, sumSq float64
	for _, i := range sample {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	parent := sumSq - sum*sum/float64(n)
	eps := 1e-12 * (sumSq + 1)
	if parent <= eps {
		return treeSplit{}, false
	}

	// Feature order only breaks ties between equally good splits.
	b.rng.Shuffle(len(b.features), func(i, j int) {
		b.features[i], b.features[j] = b.features[j], b.features[i]
	})

	best := treeSplit{gain: eps}
	found := false
	order := slices.Clone(sample)
	for _, j := range b.features {
		slices.SortFunc(order, func(a, c int) int { return cmp.Compare(b.x[a][j], b.x[c][j]) })

		var lSum, lSq float64
		for k := 0; k < n-1; k++ {
			v := b.y[order[k]]
			lSum += v
			lSq += v * v
			cur, next := b.x[order[k]][j], b.x[order[k+1]][j]
			if cur == next {
				continue
			}
			nl, nr := float64(k+1), float64(n-k-1)
			rSum, rSq := sum-lSum, sumSq-lSq
			sse := (lSq - lSum*lSum/nl) + (rSq - rSum*rSum/nr)
			if gain := parent - sse; gain > best.gain {
				threshold := cur + (next-cur)/2
				if threshold == next {
					threshold = cur
				}
				best = treeSplit{feature: j, threshold: threshold, gain: gain}
				found = true
			}
		}
	}
	return best, found
}
