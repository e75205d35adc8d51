package fetching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T, manifest string, volumes ...string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(manifest), 0o644))
	for _, name := range volumes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("nifti"), 0o644))
	}
	return dir
}

func TestFetchNV(t *testing.T) {
	manifest := "images,subject,contrast\na.nii,1,A\nb.nii,1,B\nc.nii,2,A\n"
	dir := writeDataDir(t, manifest, "a.nii", "b.nii", "c.nii")

	table, err := FetchNV(dir, 0, false)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, filepath.Join(dir, "a.nii"), table.Images[0])
	assert.Equal(t, []string{"1", "1", "2"}, table.Subjects)
}

func TestFetchNVMaxImages(t *testing.T) {
	manifest := "images,subject,contrast\na.nii,1,A\nb.nii,1,B\nc.nii,2,A\n"
	dir := writeDataDir(t, manifest, "a.nii", "b.nii", "c.nii")

	table, err := FetchNV(dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"A", "B"}, table.Contrasts)
}

func TestFetchNVMissingVolume(t *testing.T) {
	manifest := "images,subject,contrast\na.nii,1,A\nmissing.nii,2,B\n"
	dir := writeDataDir(t, manifest, "a.nii")

	_, err := FetchNV(dir, 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.nii")
}

func TestFetchNVMissingManifest(t *testing.T) {
	_, err := FetchNV(t.TempDir(), 0, false)
	require.Error(t, err)
}
