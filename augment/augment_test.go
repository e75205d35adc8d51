package augment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestJitterShapeAndLabels(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	y := []int{0, 1, 0}

	f := Jitter(0.1, 2, 42)
	out, labels, err := f(NewFeatureData(X), y)
	require.NoError(t, err)

	rows, cols := out.Dims()
	assert.Equal(t, 9, rows, "3 originals + 2 noisy copies each")
	assert.Equal(t, 2, cols)
	assert.Equal(t, []int{0, 1, 0, 0, 1, 0, 0, 1, 0}, labels)

	// Original rows come through unmodified.
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, X.At(i, j), out.At(i, j))
		}
	}
}

func TestJitterDeterministic(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	y := []int{0, 1}

	a, _, err := Jitter(0.5, 3, 7)(NewFeatureData(X), y)
	require.NoError(t, err)
	b, _, err := Jitter(0.5, 3, 7)(NewFeatureData(X), y)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a, b), "same seed must reproduce the same output")

	c, _, err := Jitter(0.5, 3, 8)(NewFeatureData(X), y)
	require.NoError(t, err)
	assert.False(t, mat.Equal(a, c), "different seeds should differ")
}

func TestJitterDoesNotMutateInput(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	orig := mat.DenseCopyOf(X)
	y := []int{0, 1}

	_, _, err := Jitter(1.0, 1, 0)(NewFeatureData(X), y)
	require.NoError(t, err)
	assert.True(t, mat.Equal(orig, X))
}

func TestJitterZeroCopies(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := []int{0, 1}

	out, labels, err := Jitter(0.1, 0, 0)(NewFeatureData(X), y)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
	assert.Equal(t, y, labels)
}

func TestJitterRejectsPathInput(t *testing.T) {
	_, _, err := Jitter(0.1, 1, 0)(NewPathData([]string{"a.nii"}), []int{0})
	assert.Error(t, err)
}

func TestJitterLabelMismatch(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, _, err := Jitter(0.1, 1, 0)(NewFeatureData(X), []int{0})
	assert.Error(t, err)
}

func TestProjectOnlyNumericPassThrough(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := []int{0, 1}

	out, labels, err := ProjectOnly(nil, 1)(NewFeatureData(X), y)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
	assert.Equal(t, y, labels)
}

func TestComposeChainsSteps(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := []int{0, 1}

	f := Compose(ProjectOnly(nil, 1), Jitter(0.0, 1, 0))
	out, labels, err := f(NewFeatureData(X), y)
	require.NoError(t, err)

	rows, _ := out.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, []int{0, 1, 0, 1}, labels)
}

func TestComposeEmpty(t *testing.T) {
	_, _, err := Compose()(NewFeatureData(mat.NewDense(1, 1, nil)), []int{0})
	assert.Error(t, err)
}

func TestTrainDataKinds(t *testing.T) {
	paths := NewPathData([]string{"a.nii", "b.nii"})
	assert.False(t, paths.IsNumeric())
	assert.Equal(t, 2, paths.Len())
	assert.Nil(t, paths.Features())

	feats := NewFeatureData(mat.NewDense(3, 1, []float64{1, 2, 3}))
	assert.True(t, feats.IsNumeric())
	assert.Equal(t, 3, feats.Len())
	assert.Nil(t, feats.Paths())
}
