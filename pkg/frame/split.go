package frame

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidSplit is returned when split arguments cannot describe a
// partition of the rows.
var ErrInvalidSplit = errors.New("invalid split")

// TrainTestSplit shuffles the rows with the given seed and splits them into
// train and test frames. Row identities are kept, so either side can be
// traced back to the source frame. testRatio must be within [0, 1].
func TrainTestSplit(f *Frame, testRatio float64, seed int64) (train, test *Frame, err error) {
	if err := Check(f); err != nil {
		return nil, nil, err
	}
	if !(testRatio >= 0 && testRatio <= 1) {
		return nil, nil, fmt.Errorf("%w: test ratio must be within [0, 1], got %g", ErrInvalidSplit, testRatio)
	}
	n := f.NumRows()
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	return f.Take(indices[nTest:]), f.Take(indices[:nTest]), nil
}

// Shuffle returns the rows in a random order determined by seed.
func Shuffle(f *Frame, seed int64) *Frame {
	return f.Take(rand.New(rand.NewSource(seed)).Perm(f.NumRows()))
}

// KFold splits row positions into k folds after shuffling with seed. k must
// be between 1 and n.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: %d folds for %d rows", ErrInvalidSplit, k, n)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds, nil
}
