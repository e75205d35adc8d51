package classifier

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/core/parallel"
	"github.com/cedricrommel/AISIP-MBDA-1/metrics"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

// RandomForestClassifier is a bagged ensemble of CART trees with per-split
// feature subsampling (sqrt of the feature count by default). Predictions are
// the majority vote over trees.
type RandomForestClassifier struct {
	model.BaseEstimator

	NEstimators     int
	MaxDepth        int // <=0 means unlimited
	MinSamplesSplit int
	MaxFeatures     int // <=0 means sqrt(n_features)
	Bootstrap       bool
	NJobs           int // parallel tree builders; <=0 means 1
	Verbose         bool
	Seed            int64

	// Fitted state, exported for gob encoding.
	Trees     []*decisionTree
	ClassList []int
	NFeatures int
}

// RandomForestOption configures a RandomForestClassifier.
type RandomForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.NEstimators = n }
}

// WithMaxDepth bounds the tree depth.
func WithMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.MaxDepth = d }
}

// WithForestJobs sets the number of concurrent tree builders.
func WithForestJobs(n int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.NJobs = n }
}

// WithForestSeed fixes the bootstrap and feature-subsampling randomness.
func WithForestSeed(seed int64) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.Seed = seed }
}

// WithForestVerbose enables per-fit progress logging.
func WithForestVerbose(v bool) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.Verbose = v }
}

// NewRandomForest creates a forest with the usual defaults: 100 bootstrapped
// trees, unlimited depth, sqrt(n_features) candidates per split.
func NewRandomForest(opts ...RandomForestOption) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		NJobs:           1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows NEstimators trees, each on its own bootstrap sample. Tree builds
// run concurrently up to NJobs; every tree derives its randomness from
// Seed and its index so the fitted forest does not depend on scheduling.
func (rf *RandomForestClassifier) Fit(X mat.Matrix, y []int) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "classifier: RandomForest.Fit")
	}
	if len(y) != nSamples {
		return errors.NewDimensionError("RandomForest.Fit", nSamples, len(y), 0)
	}
	if rf.NEstimators <= 0 {
		return errors.NewValueError("RandomForest.Fit", "NEstimators must be positive")
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(nFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	logger := log.GetLoggerWithName("classifier.forest")
	if rf.Verbose {
		logger.Info("growing forest",
			"n_estimators", rf.NEstimators,
			"max_features", maxFeatures,
			"n_samples", nSamples,
		)
	}

	trees := make([]*decisionTree, rf.NEstimators)
	workers := rf.NJobs
	if workers <= 0 {
		workers = 1
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)
	for t := 0; t < rf.NEstimators; t++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(rf.Seed), uint64(t)))

			idx := make([]int, nSamples)
			if rf.Bootstrap {
				for i := range idx {
					idx[i] = rng.IntN(nSamples)
				}
			} else {
				for i := range idx {
					idx[i] = i
				}
			}

			tree := &decisionTree{}
			tree.fit(X, y, idx, treeParams{
				maxDepth:        rf.MaxDepth,
				minSamplesSplit: rf.MinSamplesSplit,
				maxFeatures:     maxFeatures,
				rng:             rng,
			})
			trees[t] = tree

			if rf.Verbose && (t+1)%25 == 0 {
				logger.Debug("trees grown", "done", t+1, "total", rf.NEstimators)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.Trees = trees
	rf.ClassList = uniqueSortedClasses(y)
	rf.NFeatures = nFeatures
	rf.SetFitted()
	return nil
}

// Predict returns the majority-vote class per sample. Vote counting over
// samples is chunked across CPU cores.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) ([]int, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForest.Predict", rf.NFeatures, nFeatures, 1)
	}

	preds := make([]int, nSamples)
	parallel.Parallelize(nSamples, func(start, end int) {
		votes := make(map[int]int)
		for i := start; i < end; i++ {
			clear(votes)
			for _, tree := range rf.Trees {
				votes[tree.predictRow(X, i)]++
			}
			best, bestVotes := 0, -1
			for _, c := range rf.ClassList {
				if v := votes[c]; v > bestVotes {
					best, bestVotes = c, v
				}
			}
			preds[i] = best
		}
	})
	return preds, nil
}

// Classes returns the fitted class codes in ascending order.
func (rf *RandomForestClassifier) Classes() []int {
	return rf.ClassList
}

// Score returns the mean accuracy on the given test data.
func (rf *RandomForestClassifier) Score(X mat.Matrix, y []int) (float64, error) {
	preds, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyLabels(y, preds)
}
