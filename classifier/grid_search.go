package classifier

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/metrics"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

// CVFold is one train/test index pair of a k-fold split.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold splits sample indices into k contiguous folds, optionally shuffled
// with a fixed seed.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a k-fold splitter; fewer than 2 splits falls back to 5.
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// Split generates the train/test indices for each fold over n samples.
func (kf *KFold) Split(nSamples int) []CVFold {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	for f := 0; f < kf.NSplits; f++ {
		testSize := foldSize
		if f < remainder {
			testSize++
		}
		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])
		train := make([]int, 0, nSamples-testSize)
		train = append(train, indices[:current]...)
		train = append(train, indices[current+testSize:]...)

		folds[f] = CVFold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds
}

// Params maps hyperparameter names to candidate values.
type Params map[string]float64

// GridSearchCV exhaustively evaluates a hyperparameter grid by k-fold
// cross-validated accuracy, then refits the best candidate on the full data.
// The wrapper itself satisfies model.Classifier, delegating to the refit
// best estimator.
type GridSearchCV struct {
	model.BaseEstimator

	// NewEstimator builds a fresh candidate for one grid point.
	NewEstimator func(Params) model.Classifier
	ParamGrid    map[string][]float64
	CV           int
	Seed         int

	// Fitted state.
	BestParams Params
	BestScore  float64
	Best       model.Classifier
}

// NewGridSearchCV creates a grid search with 5-fold cross-validation.
func NewGridSearchCV(newEstimator func(Params) model.Classifier, grid map[string][]float64) *GridSearchCV {
	return &GridSearchCV{NewEstimator: newEstimator, ParamGrid: grid, CV: 5}
}

// Fit scores every grid point and refits the winner on all of X.
func (gs *GridSearchCV) Fit(X mat.Matrix, y []int) error {
	if gs.NewEstimator == nil {
		return errors.NewValueError("GridSearchCV.Fit", "NewEstimator must be set")
	}
	nSamples, _ := X.Dims()
	if len(y) != nSamples {
		return errors.NewDimensionError("GridSearchCV.Fit", nSamples, len(y), 0)
	}

	candidates := expandGrid(gs.ParamGrid)
	if len(candidates) == 0 {
		return errors.NewValueError("GridSearchCV.Fit", "ParamGrid is empty")
	}

	folds := NewKFold(gs.CV, true, gs.Seed).Split(nSamples)
	logger := log.GetLoggerWithName("classifier.gridsearch")

	bestScore := -1.0
	var bestParams Params
	for _, params := range candidates {
		var total float64
		nScored := 0
		for _, fold := range folds {
			if len(fold.TrainIndices) == 0 || len(fold.TestIndices) == 0 {
				continue
			}
			trainX, trainY := subsetRows(X, y, fold.TrainIndices)
			testX, testY := subsetRows(X, y, fold.TestIndices)

			est := gs.NewEstimator(params)
			if err := est.Fit(trainX, trainY); err != nil {
				return errors.Wrap(err, "classifier: GridSearchCV candidate fit")
			}
			score, err := est.Score(testX, testY)
			if err != nil {
				return errors.Wrap(err, "classifier: GridSearchCV candidate score")
			}
			total += score
			nScored++
		}
		if nScored == 0 {
			return errors.NewValueError("GridSearchCV.Fit", "no usable folds; need more samples than folds")
		}
		mean := total / float64(nScored)
		logger.Debug("grid point scored", "params", params, "mean_score", mean)
		if mean > bestScore {
			bestScore = mean
			bestParams = params
		}
	}

	best := gs.NewEstimator(bestParams)
	if err := best.Fit(X, y); err != nil {
		return errors.Wrap(err, "classifier: GridSearchCV refit")
	}

	gs.Best = best
	gs.BestParams = bestParams
	gs.BestScore = bestScore
	gs.SetFitted()
	return nil
}

// Predict delegates to the refit best estimator.
func (gs *GridSearchCV) Predict(X mat.Matrix) ([]int, error) {
	if !gs.IsFitted() {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return gs.Best.Predict(X)
}

// Score returns the mean accuracy of the refit best estimator.
func (gs *GridSearchCV) Score(X mat.Matrix, y []int) (float64, error) {
	if !gs.IsFitted() {
		return 0, errors.NewNotFittedError("GridSearchCV", "Score")
	}
	preds, err := gs.Best.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyLabels(y, preds)
}

// expandGrid enumerates the cartesian product of the grid in a stable key
// order.
func expandGrid(grid map[string][]float64) []Params {
	keys := make([]string, 0, len(grid))
	for k, values := range grid {
		if len(values) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil
	}

	out := []Params{{}}
	for _, k := range keys {
		next := make([]Params, 0, len(out)*len(grid[k]))
		for _, base := range out {
			for _, v := range grid[k] {
				p := make(Params, len(base)+1)
				for bk, bv := range base {
					p[bk] = bv
				}
				p[k] = v
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}

// subsetRows copies the selected rows of X and y.
func subsetRows(X mat.Matrix, y []int, idx []int) (*mat.Dense, []int) {
	_, nFeatures := X.Dims()
	sub := mat.NewDense(len(idx), nFeatures, nil)
	labels := make([]int, len(idx))
	for i, r := range idx {
		for j := 0; j < nFeatures; j++ {
			sub.Set(i, j, X.At(r, j))
		}
		labels[i] = y[r]
	}
	return sub, labels
}
