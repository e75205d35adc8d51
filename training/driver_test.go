package training

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/augment"
	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/difumo"
)

// driverFixture builds a 10-subject table (two samples per subject, one per
// contrast), a separable one-column feature matrix saved as .npy, and an
// augmentation function that materializes train features by path lookup.
func driverFixture(t *testing.T) (*dataset.SampleTable, string, augment.Func) {
	t.Helper()

	var images, subjects, contrasts []string
	var values []float64
	for s := 0; s < 10; s++ {
		subject := fmt.Sprintf("subj%02d", s)
		for c, contrast := range []string{"A", "B"} {
			images = append(images, fmt.Sprintf("%s_%s.nii", subject, contrast))
			subjects = append(subjects, subject)
			contrasts = append(contrasts, contrast)
			values = append(values, float64(c)*10+float64(s)*0.01)
		}
	}
	table, err := dataset.NewSampleTable(images, subjects, contrasts)
	require.NoError(t, err)

	features := mat.NewDense(len(values), 1, values)
	featuresPath := filepath.Join(t.TempDir(), "difumo_data.npy")
	require.NoError(t, difumo.SaveFeatures(featuresPath, features))

	rowOf := make(map[string]int, len(images))
	for i, img := range images {
		rowOf[img] = i
	}
	f := func(X augment.TrainData, y []int) (*mat.Dense, []int, error) {
		out := mat.NewDense(len(X.Paths()), 1, nil)
		for i, p := range X.Paths() {
			out.Set(i, 0, features.At(rowOf[p], 0))
		}
		return out, y, nil
	}
	return table, featuresPath, f
}

func TestDoClassifProducesFullScoreTable(t *testing.T) {
	table, featuresPath, f := driverFixture(t)
	dir := t.TempDir()

	cfg := Config{
		FeaturesPath: featuresPath,
		OutputPath:   filepath.Join(dir, "scores.csv"),
		ModelsDir:    filepath.Join(dir, "models"),
		MethodName:   "none",
		NSplits:      5,
		TrainSize:    0.8,
		Seed:         0,
		NJobs:        2,
	}

	records, err := DoClassif(table, nil, f, cfg)
	require.NoError(t, err)

	// 5 splits x 2 enabled models.
	require.Len(t, records, 10)
	perAlgo := make(map[string][]int)
	for _, r := range records {
		assert.Equal(t, "none", r.MethodName)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		perAlgo[r.Algo] = append(perAlgo[r.Algo], r.Split)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, perAlgo["LDA"])
	assert.Equal(t, []int{0, 1, 2, 3, 4}, perAlgo["RF"])

	// The score table is written once at the end and reads back intact.
	loaded, err := ReadScoresCSV(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestDoClassifWritesCheckpoints(t *testing.T) {
	table, featuresPath, f := driverFixture(t)
	dir := t.TempDir()

	cfg := Config{
		FeaturesPath: featuresPath,
		OutputPath:   filepath.Join(dir, "scores.csv"),
		ModelsDir:    filepath.Join(dir, "models"),
		MethodName:   "jitter",
		NSplits:      2,
		TrainSize:    0.8,
	}

	_, err := DoClassif(table, nil, f, cfg)
	require.NoError(t, err)

	for _, algo := range []string{"LDA", "RF"} {
		for split := 0; split < 2; split++ {
			base := filepath.Join(cfg.ModelsDir, algo)
			_, statErr := os.Stat(CheckpointPath(base, split))
			require.NoError(t, statErr, "%s checkpoint for split %d missing", algo, split)

			cp, err := LoadCheckpoint(base, split)
			require.NoError(t, err)
			assert.Equal(t, algo, cp.ModelName)
			assert.Equal(t, "jitter", cp.MethodName)
			assert.Equal(t, split, cp.Split)
			assert.NotNil(t, cp.Model)
			assert.False(t, cp.CreatedAt.IsZero())
		}
	}
}

func TestDoClassifSeedReproducibility(t *testing.T) {
	table, featuresPath, f := driverFixture(t)

	run := func() []ScoreRecord {
		dir := t.TempDir()
		cfg := Config{
			FeaturesPath: featuresPath,
			OutputPath:   filepath.Join(dir, "scores.csv"),
			MethodName:   "none",
			NSplits:      3,
			TrainSize:    0.8,
			Seed:         0,
		}
		records, err := DoClassif(table, nil, f, cfg)
		require.NoError(t, err)
		return records
	}

	assert.Equal(t, run(), run())
}

func TestDoClassifOptionalExports(t *testing.T) {
	table, featuresPath, f := driverFixture(t)
	dir := t.TempDir()

	cfg := Config{
		FeaturesPath: featuresPath,
		OutputPath:   filepath.Join(dir, "scores.csv"),
		MethodName:   "none",
		NSplits:      2,
		TrainSize:    0.8,
		PlotPath:     filepath.Join(dir, "scores.png"),
		XLSXPath:     filepath.Join(dir, "scores.xlsx"),
	}

	_, err := DoClassif(table, nil, f, cfg)
	require.NoError(t, err)

	for _, p := range []string{cfg.PlotPath, cfg.XLSXPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestDoClassifValidation(t *testing.T) {
	table, featuresPath, f := driverFixture(t)

	t.Run("missing features file", func(t *testing.T) {
		cfg := Config{
			FeaturesPath: filepath.Join(t.TempDir(), "absent.npy"),
			OutputPath:   filepath.Join(t.TempDir(), "scores.csv"),
			NSplits:      2,
			TrainSize:    0.8,
		}
		_, err := DoClassif(table, nil, f, cfg)
		assert.Error(t, err)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		short, err := dataset.NewSampleTable(
			[]string{"a.nii"}, []string{"s0"}, []string{"A"},
		)
		require.NoError(t, err)
		cfg := Config{
			FeaturesPath: featuresPath,
			OutputPath:   filepath.Join(t.TempDir(), "scores.csv"),
			NSplits:      2,
			TrainSize:    0.5,
		}
		_, err = DoClassif(short, nil, f, cfg)
		assert.Error(t, err)
	})
}

func TestModelCatalogShape(t *testing.T) {
	catalog := ModelCatalog(Config{})
	require.Len(t, catalog, 4)

	enabled := make(map[string]bool)
	for _, entry := range catalog {
		if entry.Enabled {
			enabled[entry.Name] = true
			require.NotNil(t, entry.Build, "enabled entry %s needs a constructor", entry.Name)
		}
	}
	assert.Equal(t, map[string]bool{"LDA": true, "RF": true}, enabled)

	// The disabled entries keep their configuration.
	for _, entry := range catalog {
		switch entry.Name {
		case "MLP":
			assert.False(t, entry.Enabled)
			assert.NotEmpty(t, entry.Params)
		case "LogReg":
			assert.False(t, entry.Enabled)
			assert.NotNil(t, entry.Build)
		}
	}
}
