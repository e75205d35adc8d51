package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

func tableWithContrasts(t *testing.T, contrasts []string) *dataset.SampleTable {
	t.Helper()
	images := make([]string, len(contrasts))
	subjects := make([]string, len(contrasts))
	for i := range contrasts {
		images[i] = "img.nii"
		subjects[i] = "1"
	}
	table, err := dataset.NewSampleTable(images, subjects, contrasts)
	require.NoError(t, err)
	return table
}

func TestLabelEncoderFirstOccurrenceOrder(t *testing.T) {
	table := tableWithContrasts(t, []string{"A", "B", "A", "C"})

	enc := NewLabelEncoder()
	codes, err := enc.FitTransform(table)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 0, 2}, codes)
	assert.Equal(t, []string{"A", "B", "C"}, enc.Classes())
	assert.Equal(t, 3, enc.NClasses())
}

func TestLabelEncoderTransformIdempotent(t *testing.T) {
	table := tableWithContrasts(t, []string{"X", "Y", "X", "Z", "Y"})

	enc := NewLabelEncoder()
	first, err := enc.FitTransform(table)
	require.NoError(t, err)

	second, err := enc.Transform(table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLabelEncoderRoundTrip(t *testing.T) {
	contrasts := []string{"audio", "visual", "audio", "motor", "visual"}
	table := tableWithContrasts(t, contrasts)

	enc := NewLabelEncoder()
	codes, err := enc.FitTransform(table)
	require.NoError(t, err)

	decoded, err := enc.InverseTransform(codes)
	require.NoError(t, err)
	assert.Equal(t, contrasts, decoded)
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	train := tableWithContrasts(t, []string{"A", "B", "C"})
	test := tableWithContrasts(t, []string{"A", "D", "E", "D"})

	enc := NewLabelEncoder()
	require.NoError(t, enc.Fit(train))

	_, err := enc.Transform(test)
	require.Error(t, err)

	var unknownErr *errors.UnknownLabelError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, []string{"D", "E"}, unknownErr.Labels)
}

func TestLabelEncoderNotFitted(t *testing.T) {
	table := tableWithContrasts(t, []string{"A"})

	enc := NewLabelEncoder()
	_, err := enc.Transform(table)
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestLabelEncoderEmptyTable(t *testing.T) {
	table := tableWithContrasts(t, nil)

	enc := NewLabelEncoder()
	err := enc.Fit(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestLabelEncoderInverseTransformOutOfRange(t *testing.T) {
	table := tableWithContrasts(t, []string{"A", "B"})

	enc := NewLabelEncoder()
	require.NoError(t, enc.Fit(table))

	_, err := enc.InverseTransform([]int{0, 5})
	require.Error(t, err)
}
