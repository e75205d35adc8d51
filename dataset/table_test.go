package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *SampleTable {
	t.Helper()
	table, err := NewSampleTable(
		[]string{"a.nii", "b.nii", "c.nii", "d.nii"},
		[]string{"1", "1", "2", "3"},
		[]string{"A", "B", "A", "C"},
	)
	require.NoError(t, err)
	return table
}

func TestNewSampleTableLengthMismatch(t *testing.T) {
	_, err := NewSampleTable([]string{"a"}, []string{"1", "2"}, []string{"A"})
	require.Error(t, err)
}

func TestUniqueSubjects(t *testing.T) {
	table := sampleTable(t)
	assert.Equal(t, []string{"1", "2", "3"}, table.UniqueSubjects())
}

func TestMaskBySubjectsDisjointAndCovering(t *testing.T) {
	table := sampleTable(t)

	train := map[string]bool{"1": true}
	test := map[string]bool{"2": true, "3": true}

	trainMask := table.MaskBySubjects(train)
	testMask := table.MaskBySubjects(test)

	assert.Equal(t, []bool{true, true, false, false}, trainMask)
	assert.Equal(t, []bool{false, false, true, true}, testMask)

	// Disjoint subject sets give disjoint masks whose union covers all rows
	// of those subjects.
	for i := range trainMask {
		assert.False(t, trainMask[i] && testMask[i], "row %d in both masks", i)
		assert.True(t, trainMask[i] || testMask[i], "row %d in neither mask", i)
	}
}

func TestSubset(t *testing.T) {
	table := sampleTable(t)

	sub, err := table.Subset([]bool{true, false, true, false})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.nii", "c.nii"}, sub.Images)
	assert.Equal(t, []string{"1", "2"}, sub.Subjects)
	assert.Equal(t, []string{"A", "A"}, sub.Contrasts)
}

func TestSubsetMaskLengthMismatch(t *testing.T) {
	table := sampleTable(t)
	_, err := table.Subset([]bool{true})
	require.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	csvData := "images,subject,contrast\na.nii,1,A\nb.nii,1,B\nc.nii,2,A\n"

	table, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"a.nii", "b.nii", "c.nii"}, table.Images)
	assert.Equal(t, []string{"1", "1", "2"}, table.Subjects)
	assert.Equal(t, []string{"A", "B", "A"}, table.Contrasts)
}

func TestReadCSVColumnOrderIndependent(t *testing.T) {
	csvData := "contrast,images,subject\nA,a.nii,1\n"

	table, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.nii"}, table.Images)
	assert.Equal(t, []string{"A"}, table.Contrasts)
}

func TestReadCSVMissingColumn(t *testing.T) {
	csvData := "images,subject\na.nii,1\n"

	_, err := ReadCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contrast")
}

func TestWriteLoadCSVRoundTrip(t *testing.T) {
	table := sampleTable(t)
	path := filepath.Join(t.TempDir(), "labels.csv")

	require.NoError(t, table.WriteCSV(path))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table, loaded)
}
