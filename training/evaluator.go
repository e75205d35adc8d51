package training

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/augment"
	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
	"github.com/cedricrommel/AISIP-MBDA-1/preprocessing"
)

// SplitJob describes one (model, split) evaluation.
type SplitJob struct {
	ModelName  string // classifier identifier, used in checkpoint names
	MethodName string // augmentation method identifier for the score table
	Split      int    // split index

	TrainSubjects map[string]bool
	TestSubjects  map[string]bool

	CheckpointBase string // checkpoint path prefix; empty disables checkpoints
	NJobs          int    // jobs hint passed through to collaborators
}

// EvaluateSplit runs one train/checkpoint/score cycle.
//
// Train-side labels get a fresh encoder; the test side reuses that train
// dictionary. A test label absent from the train dictionary is the one
// recovered condition: the evaluator warns and falls back to an encoder
// fitted on the test table alone, so the run continues with a degraded,
// not-directly-comparable score.
//
// The design matrices are deliberately asymmetric: the test side uses the
// pre-projected feature rows, while the train side passes the raw volume
// paths for the augmentation function to materialize.
func EvaluateSplit(table *dataset.SampleTable, features *mat.Dense, clf model.Classifier, f augment.Func, job SplitJob) (float64, error) {
	logger := log.GetLoggerWithName("training.evaluator").With(
		log.ModelNameKey, job.ModelName,
		log.MethodNameKey, job.MethodName,
		log.SplitKey, job.Split,
	)

	if rows, _ := features.Dims(); rows != table.Len() {
		return 0, errors.NewDimensionError("EvaluateSplit", table.Len(), rows, 0)
	}

	trainMask := table.MaskBySubjects(job.TrainSubjects)
	testMask := table.MaskBySubjects(job.TestSubjects)

	trainTable, err := table.Subset(trainMask)
	if err != nil {
		return 0, err
	}
	testTable, err := table.Subset(testMask)
	if err != nil {
		return 0, err
	}
	if trainTable.Len() == 0 || testTable.Len() == 0 {
		return 0, errors.NewValueError("EvaluateSplit", "empty train or test partition")
	}

	encoder := preprocessing.NewLabelEncoder()
	trainLabels, err := encoder.FitTransform(trainTable)
	if err != nil {
		return 0, err
	}

	testLabels, err := encoder.Transform(testTable)
	if err != nil {
		var unknown *errors.UnknownLabelError
		if !errors.As(err, &unknown) {
			return 0, err
		}
		// Test contrasts outside the train dictionary: recover with an
		// independent test encoding rather than aborting the run.
		errors.Warn(unknown)
		logger.Warn("test labels missing from train dictionary; falling back to independent test encoding",
			"missing_labels", unknown.Labels,
		)
		fallback := preprocessing.NewLabelEncoder()
		testLabels, err = fallback.FitTransform(testTable)
		if err != nil {
			return 0, err
		}
	}

	// Train side stays raw paths: materializing features is the
	// augmentation function's job, even when it synthesizes nothing.
	testFeatures := selectRows(features, testMask)
	trainData := augment.NewPathData(trainTable.Images)

	ac := NewAugmentedClassifier(clf, f)
	if err := ac.Fit(trainData, trainLabels); err != nil {
		return 0, err
	}

	if job.CheckpointBase != "" {
		cp := &Checkpoint{
			ModelName:  job.ModelName,
			MethodName: job.MethodName,
			Split:      job.Split,
			CreatedAt:  time.Now(),
			Model:      clf,
		}
		if err := SaveCheckpoint(cp, job.CheckpointBase, job.Split); err != nil {
			return 0, err
		}
	}

	score, err := ac.Score(testFeatures, testLabels)
	if err != nil {
		return 0, err
	}
	logger.Info("split evaluated",
		log.ScoreKey, score,
		log.SamplesKey, trainTable.Len(),
		log.PredsKey, testTable.Len(),
	)
	return score, nil
}

// selectRows copies the rows of X where mask is true.
func selectRows(X *mat.Dense, mask []bool) *mat.Dense {
	_, cols := X.Dims()
	var count int
	for _, m := range mask {
		if m {
			count++
		}
	}
	out := mat.NewDense(count, cols, nil)
	row := 0
	for i, m := range mask {
		if !m {
			continue
		}
		for j := 0; j < cols; j++ {
			out.Set(row, j, X.At(i, j))
		}
		row++
	}
	return out
}
