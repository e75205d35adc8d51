package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleSplitDisjointAndCovering(t *testing.T) {
	folds, err := NewShuffleSplit(5, 0.8, 0).Split(10)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	for s, fold := range folds {
		assert.Len(t, fold.TrainIndices, 8, "split %d", s)
		assert.Len(t, fold.TestIndices, 2, "split %d", s)

		seen := make(map[int]bool)
		for _, i := range fold.TrainIndices {
			assert.False(t, seen[i])
			seen[i] = true
		}
		for _, i := range fold.TestIndices {
			assert.False(t, seen[i], "train and test overlap at %d", i)
			seen[i] = true
		}
		assert.Len(t, seen, 10, "split %d does not cover all items", s)
	}
}

func TestShuffleSplitSeedDeterminism(t *testing.T) {
	a, err := NewShuffleSplit(4, 0.5, 0).Split(12)
	require.NoError(t, err)
	b, err := NewShuffleSplit(4, 0.5, 0).Split(12)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must reproduce the same partitions")

	c, err := NewShuffleSplit(4, 0.5, 1).Split(12)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different seeds should differ")
}

func TestShuffleSplitIndependentPermutations(t *testing.T) {
	folds, err := NewShuffleSplit(10, 0.5, 0).Split(20)
	require.NoError(t, err)

	distinct := false
	for _, f := range folds[1:] {
		if !assert.ObjectsAreEqual(folds[0].TrainIndices, f.TrainIndices) {
			distinct = true
			break
		}
	}
	assert.True(t, distinct, "splits should draw fresh permutations")
}

func TestShuffleSplitTrainSize(t *testing.T) {
	t.Run("fraction of items", func(t *testing.T) {
		folds, err := NewShuffleSplit(1, 0.25, 0).Split(8)
		require.NoError(t, err)
		assert.Len(t, folds[0].TrainIndices, 2)
	})
	t.Run("absolute count", func(t *testing.T) {
		folds, err := NewShuffleSplit(1, 3, 0).Split(8)
		require.NoError(t, err)
		assert.Len(t, folds[0].TrainIndices, 3)
	})
}

func TestShuffleSplitValidation(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		trainSize float64
	}{
		{"zero train size", 10, 0},
		{"negative train size", 10, -1},
		{"train size consumes everything", 10, 10},
		{"too few items", 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShuffleSplit(2, tt.trainSize, 0).Split(tt.n)
			assert.Error(t, err)
		})
	}
}
