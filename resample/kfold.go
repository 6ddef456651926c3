package resample

import (
	"math/rand/v2"
	"sort"

	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/pkg/errors"
)

// FoldSet is a partition of a training dataset into k disjoint folds of
// approximately equal size. For fold i the assessment set is fold i and the
// analysis set is the union of the remaining folds.
type FoldSet struct {
	train *dataset.Dataset
	folds [][]int
}

// KFold partitions train into k folds by a seeded shuffle. Fold sizes
// differ by at most one record; the first (n mod k) folds carry the extra
// record. Requires 2 <= k <= train.Len().
func KFold(train *dataset.Dataset, k int, seed uint64) (*FoldSet, error) {
	if train == nil || train.Len() == 0 {
		return nil, errors.NewModelError("resample.KFold", "empty dataset", errors.ErrEmptyData)
	}
	n := train.Len()
	if k < 2 || k > n {
		return nil, errors.NewValidationError("k", "fold count must satisfy 2 <= k <= n", k)
	}

	indices := shuffledIndices(n, seed)

	folds := make([][]int, k)
	foldSize := n / k
	remainder := n % k

	current := 0
	for i := 0; i < k; i++ {
		size := foldSize
		if i < remainder {
			size++
		}
		folds[i] = make([]int, size)
		copy(folds[i], indices[current:current+size])
		current += size
	}

	return &FoldSet{train: train, folds: folds}, nil
}

// StratifiedKFold partitions train into k folds while balancing the values
// of labelField across folds. Each distinct label's records are shuffled
// and dealt into the folds in blocks, the way KFold deals the whole set.
func StratifiedKFold(train *dataset.Dataset, labelField string, k int, seed uint64) (*FoldSet, error) {
	if train == nil || train.Len() == 0 {
		return nil, errors.NewModelError("resample.StratifiedKFold", "empty dataset", errors.ErrEmptyData)
	}
	n := train.Len()
	if k < 2 || k > n {
		return nil, errors.NewValidationError("k", "fold count must satisfy 2 <= k <= n", k)
	}
	labels, err := train.Categorical(labelField)
	if err != nil {
		return nil, err
	}

	classIndices := make(map[string][]int)
	var classes []string
	for i, label := range labels {
		if _, seen := classIndices[label]; !seen {
			classes = append(classes, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	// Map iteration order is random; fix the class order for determinism.
	sort.Strings(classes)

	r := rand.New(rand.NewPCG(seed, seed))
	folds := make([][]int, k)
	for _, class := range classes {
		indices := classIndices[class]
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		nClass := len(indices)
		foldSize := nClass / k
		remainder := nClass % k
		current := 0
		for i := 0; i < k; i++ {
			size := foldSize
			if i < remainder {
				size++
			}
			folds[i] = append(folds[i], indices[current:current+size]...)
			current += size
		}
	}

	return &FoldSet{train: train, folds: folds}, nil
}

// K returns the number of folds.
func (fs *FoldSet) K() int { return len(fs.folds) }

// AssessmentIndices returns the training-set indices making up fold i.
func (fs *FoldSet) AssessmentIndices(i int) []int {
	out := make([]int, len(fs.folds[i]))
	copy(out, fs.folds[i])
	return out
}

// Assessment returns fold i as a dataset.
func (fs *FoldSet) Assessment(i int) (*dataset.Dataset, error) {
	if i < 0 || i >= len(fs.folds) {
		return nil, errors.NewValidationError("fold", "fold index out of range", i)
	}
	return fs.train.Subset(fs.folds[i])
}

// Analysis returns the union of every fold except fold i as a dataset.
func (fs *FoldSet) Analysis(i int) (*dataset.Dataset, error) {
	if i < 0 || i >= len(fs.folds) {
		return nil, errors.NewValidationError("fold", "fold index out of range", i)
	}
	var indices []int
	for j, fold := range fs.folds {
		if j == i {
			continue
		}
		indices = append(indices, fold...)
	}
	return fs.train.Subset(indices)
}
