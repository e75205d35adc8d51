package training

import (
	"os"
	"path/filepath"

	"github.com/montanaflynn/stats"

	"github.com/cedricrommel/AISIP-MBDA-1/augment"
	"github.com/cedricrommel/AISIP-MBDA-1/classifier"
	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/difumo"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

// DefaultFeaturesPath is the conventional hand-off location where the
// pre-projection step leaves the feature matrix.
const DefaultFeaturesPath = "../hcp900_difumo_matrices/difumo_data.npy"

// Config parameterizes a classification run.
type Config struct {
	FeaturesPath string // .npy feature matrix; empty means DefaultFeaturesPath
	OutputPath   string // aggregate score CSV
	ModelsDir    string // checkpoint directory, created if missing
	MethodName   string // augmentation method identifier for the score table

	NSplits   int
	TrainSize float64 // (0,1): fraction of subjects; >=1: absolute count
	Seed      int64
	NJobs     int

	PlotPath string // optional per-model score plot (PNG); empty disables
	XLSXPath string // optional spreadsheet export; empty disables
}

// CatalogEntry is one model of the fixed catalog. Disabled entries keep
// their configuration (and, where implemented, their constructor) but are
// skipped by the driver; re-enabling one is a deliberate code change.
type CatalogEntry struct {
	Name    string
	Enabled bool
	Build   func(cfg Config) model.Classifier
	Params  map[string]any // recorded hyperparameters for entries without a constructor
}

// mlpParams is the retained hyperparameter set of the disabled MLP entry.
var mlpParams = map[string]any{
	"activation":         "relu",
	"solver":             "adam",
	"learning_rate":      "constant",
	"momentum":           0.9,
	"learning_rate_init": 0.0001,
	"alpha":              0.00001,
	"random_state":       0,
	"batch_size":         32,
	"hidden_layer_sizes": []int{1024, 1024},
	"max_iter":           20000,
}

// ModelCatalog returns the fixed model lineup: LDA and the random forest
// enabled, the MLP parameter set and the grid-searched logistic regression
// kept but disabled.
func ModelCatalog(cfg Config) []CatalogEntry {
	return []CatalogEntry{
		{
			Name:    "LDA",
			Enabled: true,
			Build: func(Config) model.Classifier {
				return classifier.NewLDA()
			},
		},
		{
			Name:    "RF",
			Enabled: true,
			Build: func(cfg Config) model.Classifier {
				return classifier.NewRandomForest(
					classifier.WithForestVerbose(true),
					classifier.WithForestJobs(cfg.NJobs),
					classifier.WithForestSeed(cfg.Seed),
				)
			},
		},
		{
			Name:    "MLP",
			Enabled: false,
			Params:  mlpParams,
		},
		{
			Name:    "LogReg",
			Enabled: false,
			Build: func(Config) model.Classifier {
				gs := classifier.NewGridSearchCV(func(p classifier.Params) model.Classifier {
					return classifier.NewLogisticRegression(
						classifier.WithC(p["C"]),
						classifier.WithTol(1e-4),
						classifier.WithMaxIter(20000),
						classifier.WithLogisticSeed(11),
					)
				}, map[string][]float64{"C": {0.1, 0.01, 0.001, 1}})
				gs.CV = 5
				return gs
			},
		},
	}
}

// DoClassif runs the full cross-validated evaluation: for every enabled
// catalog model and every subject-level shuffle split, fit (through the
// augmentation function), checkpoint, and score; then persist the aggregate
// score table in one write. Evaluation is strictly sequential; cfg.NJobs is
// only a hint forwarded to collaborators.
func DoClassif(table *dataset.SampleTable, projector *difumo.Projector, f augment.Func, cfg Config) ([]ScoreRecord, error) {
	logger := log.GetLoggerWithName("training.driver").With(
		log.MethodNameKey, cfg.MethodName,
		log.TrainSizeKey, cfg.TrainSize,
	)

	featuresPath := cfg.FeaturesPath
	if featuresPath == "" {
		featuresPath = DefaultFeaturesPath
	}
	features, err := difumo.LoadFeatures(featuresPath)
	if err != nil {
		return nil, errors.Wrapf(err, "training: loading features %s", featuresPath)
	}
	rows, cols := features.Dims()
	if rows != table.Len() {
		return nil, errors.NewDimensionError("DoClassif", table.Len(), rows, 0)
	}
	if projector != nil && cols != projector.NComponents() {
		return nil, errors.NewDimensionError("DoClassif", projector.NComponents(), cols, 1)
	}

	if cfg.ModelsDir != "" {
		if err := os.MkdirAll(cfg.ModelsDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "training: creating models dir %s", cfg.ModelsDir)
		}
	}

	subjects := table.UniqueSubjects()
	logger.Info("starting classification run",
		log.SubjectsKey, len(subjects),
		log.SamplesKey, table.Len(),
		log.FeaturesKey, cols,
	)

	folds, err := NewShuffleSplit(cfg.NSplits, cfg.TrainSize, cfg.Seed).Split(len(subjects))
	if err != nil {
		return nil, err
	}

	var records []ScoreRecord
	for _, entry := range ModelCatalog(cfg) {
		if !entry.Enabled {
			logger.Debug("skipping disabled catalog entry", log.ModelNameKey, entry.Name)
			continue
		}

		base := ""
		if cfg.ModelsDir != "" {
			base = filepath.Join(cfg.ModelsDir, entry.Name)
		}

		for split, fold := range folds {
			job := SplitJob{
				ModelName:      entry.Name,
				MethodName:     cfg.MethodName,
				Split:          split,
				TrainSubjects:  subjectSet(subjects, fold.TrainIndices),
				TestSubjects:   subjectSet(subjects, fold.TestIndices),
				CheckpointBase: base,
				NJobs:          cfg.NJobs,
			}
			score, err := EvaluateSplit(table, features, entry.Build(cfg), f, job)
			if err != nil {
				return nil, errors.Wrapf(err, "training: %s split %d", entry.Name, split)
			}
			records = append(records, ScoreRecord{
				MethodName: cfg.MethodName,
				Algo:       entry.Name,
				Score:      score,
				Split:      split,
			})
		}
		logModelSummary(logger, entry.Name, records)
	}

	if err := WriteScoresCSV(cfg.OutputPath, records); err != nil {
		return nil, err
	}
	if cfg.PlotPath != "" {
		if err := PlotScores(cfg.PlotPath, records); err != nil {
			return nil, err
		}
	}
	if cfg.XLSXPath != "" {
		if err := WriteScoresXLSX(cfg.XLSXPath, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// subjectSet maps fold indices back to a subject membership set.
func subjectSet(subjects []string, indices []int) map[string]bool {
	set := make(map[string]bool, len(indices))
	for _, i := range indices {
		set[subjects[i]] = true
	}
	return set
}

// logModelSummary logs the mean and standard deviation of a model's scores.
func logModelSummary(logger log.Logger, algo string, records []ScoreRecord) {
	var scores []float64
	for _, r := range records {
		if r.Algo == algo {
			scores = append(scores, r.Score)
		}
	}
	if len(scores) == 0 {
		return
	}
	mean, err := stats.Mean(scores)
	if err != nil {
		return
	}
	std, err := stats.StandardDeviation(scores)
	if err != nil {
		return
	}
	logger.Info("model scores",
		log.ModelNameKey, algo,
		"mean", mean,
		"std", std,
		"n_splits", len(scores),
	)
}
