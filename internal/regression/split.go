package regression

import (
	"math"
	"math/rand/v2"
)

// Split is a train/test partition of row-major data.
type Split struct {
	TrainX [][]float64
	TrainY []float64
	TestX  [][]float64
	TestY  []float64
	// TestIndex maps test rows back to their position in the input.
	TestIndex []int
}

// TrainTestSplit shuffles rows with a seeded PCG source and holds out
// ceil(n*testRatio) rows for testing. Fewer than two rows are all used for
// training.
func TrainTestSplit(x [][]float64, y []float64, testRatio float64, seed uint64) Split {
	n := len(x)
	if n < 2 || testRatio <= 0 || testRatio >= 1 {
		return Split{TrainX: x, TrainY: y}
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest >= n {
		nTest = n - 1
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	perm := rng.Perm(n)

	s := Split{
		TrainX:    make([][]float64, 0, n-nTest),
		TrainY:    make([]float64, 0, n-nTest),
		TestX:     make([][]float64, 0, nTest),
		TestY:     make([]float64, 0, nTest),
		TestIndex: make([]int, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			s.TestX = append(s.TestX, x[idx])
			s.TestY = append(s.TestY, y[idx])
			s.TestIndex = append(s.TestIndex, idx)
			continue
		}
		s.TrainX = append(s.TrainX, x[idx])
		s.TrainY = append(s.TrainY, y[idx])
	}
	return s
}
