// Package resample partitions datasets for model evaluation: a seeded
// train/test split and k-fold cross-validation fold sets.
//
// All partitions are fixed by the seed: re-running with the same seed and
// dataset reproduces identical index assignments. The same PCG construction
// is used everywhere so a run is reproducible end to end.
package resample

import (
	"math"
	"math/rand/v2"

	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/pkg/errors"
)

// Split is a disjoint train/test partition of a dataset. The index slices
// record which original records landed where, for auditability.
type Split struct {
	Train        *dataset.Dataset
	Test         *dataset.Dataset
	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit partitions ds into train and test subsets by a seeded
// random draw. trainFraction must lie in (0, 1); the train subset gets
// round(trainFraction * n) records.
func TrainTestSplit(ds *dataset.Dataset, trainFraction float64, seed uint64) (*Split, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.NewModelError("resample.TrainTestSplit", "empty dataset", errors.ErrEmptyData)
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, errors.NewValidationError("trainFraction", "must be in (0, 1)", trainFraction)
	}

	n := ds.Len()
	indices := shuffledIndices(n, seed)

	nTrain := int(math.Round(trainFraction * float64(n)))
	// A degenerate side would make later stages meaningless.
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain > n-1 {
		nTrain = n - 1
	}

	trainIdx := make([]int, nTrain)
	copy(trainIdx, indices[:nTrain])
	testIdx := make([]int, n-nTrain)
	copy(testIdx, indices[nTrain:])

	train, err := ds.Subset(trainIdx)
	if err != nil {
		return nil, err
	}
	test, err := ds.Subset(testIdx)
	if err != nil {
		return nil, err
	}

	return &Split{
		Train:        train,
		Test:         test,
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}

// shuffledIndices returns a seeded permutation of [0, n).
func shuffledIndices(n int, seed uint64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}
