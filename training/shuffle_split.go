// Package training implements the cross-validated classification pipeline:
// subject-level shuffle splits, augmentation-aware classifier wrapping, the
// per-split train/checkpoint/score evaluator, and the driver that runs the
// model catalog and persists the aggregate score table.
package training

import (
	"math/rand/v2"

	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// SplitFold is one train/test partition of the subject index space.
type SplitFold struct {
	TrainIndices []int
	TestIndices  []int
}

// ShuffleSplit draws NSplits independent random train/test partitions of n
// items. TrainSize in (0,1) is a fraction of the items; values >= 1 are an
// absolute count. All splits come from a single generator seeded with Seed,
// so the full sequence is reproducible.
type ShuffleSplit struct {
	NSplits   int
	TrainSize float64
	Seed      int64
}

// NewShuffleSplit creates a splitter; non-positive NSplits falls back to 10.
func NewShuffleSplit(nSplits int, trainSize float64, seed int64) *ShuffleSplit {
	if nSplits <= 0 {
		nSplits = 10
	}
	return &ShuffleSplit{NSplits: nSplits, TrainSize: trainSize, Seed: seed}
}

// resolveTrainCount converts TrainSize to an item count over n items.
func (ss *ShuffleSplit) resolveTrainCount(n int) (int, error) {
	var count int
	switch {
	case ss.TrainSize <= 0:
		return 0, errors.NewValidationError("TrainSize", "must be positive", ss.TrainSize)
	case ss.TrainSize < 1:
		count = int(ss.TrainSize * float64(n))
	default:
		count = int(ss.TrainSize)
	}
	if count < 1 || count >= n {
		return 0, errors.NewValidationError("TrainSize",
			"must leave at least one train and one test item", ss.TrainSize)
	}
	return count, nil
}

// Split partitions the indices 0..n-1. Each fold's train and test sets are
// disjoint and together cover every index.
func (ss *ShuffleSplit) Split(n int) ([]SplitFold, error) {
	if n < 2 {
		return nil, errors.NewValidationError("n", "need at least 2 items to split", n)
	}
	trainCount, err := ss.resolveTrainCount(n)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(ss.Seed), uint64(ss.Seed)))
	folds := make([]SplitFold, ss.NSplits)
	for s := range folds {
		perm := rng.Perm(n)
		train := make([]int, trainCount)
		test := make([]int, n-trainCount)
		copy(train, perm[:trainCount])
		copy(test, perm[trainCount:])
		folds[s] = SplitFold{TrainIndices: train, TestIndices: test}
	}
	return folds, nil
}
