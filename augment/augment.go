// Package augment defines the data-augmentation contract of the training
// pipeline and a couple of reference implementations. An augmentation
// function receives the train-side design data — either raw volume paths or
// an already-projected feature matrix — and returns the (possibly larger)
// numeric arrays the classifier is actually fitted on.
package augment

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/difumo"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// TrainData is the train-side design input: exactly one of raw volume paths
// or a numeric feature matrix. Construct it with NewPathData or
// NewFeatureData.
type TrainData struct {
	paths    []string
	features *mat.Dense
}

// NewPathData wraps raw volume paths; loading is deferred to the
// augmentation function.
func NewPathData(paths []string) TrainData {
	return TrainData{paths: paths}
}

// NewFeatureData wraps an in-memory feature matrix.
func NewFeatureData(features *mat.Dense) TrainData {
	return TrainData{features: features}
}

// IsNumeric reports whether the data is an in-memory feature matrix.
func (d TrainData) IsNumeric() bool { return d.features != nil }

// Paths returns the raw volume paths; nil for numeric data.
func (d TrainData) Paths() []string { return d.paths }

// Features returns the feature matrix; nil for path data.
func (d TrainData) Features() *mat.Dense { return d.features }

// Len returns the number of train samples.
func (d TrainData) Len() int {
	if d.features != nil {
		r, _ := d.features.Dims()
		return r
	}
	return len(d.paths)
}

// Func transforms train-side data and labels into the numeric arrays a
// classifier is fitted on. Implementations must not mutate their inputs and
// must keep the returned rows label-aligned.
type Func func(X TrainData, y []int) (*mat.Dense, []int, error)

// Jitter returns an augmentation that emits the original feature rows plus
// `copies` Gaussian-noised duplicates of each (sigma is the noise standard
// deviation). Labels are preserved per copy. The output is deterministic for
// a given seed. Path input is rejected: jitter operates on numeric features.
func Jitter(sigma float64, copies int, seed int64) Func {
	return func(X TrainData, y []int) (*mat.Dense, []int, error) {
		if !X.IsNumeric() {
			return nil, nil, errors.NewValueError("augment.Jitter",
				"jitter requires numeric features; project volumes first")
		}
		if sigma < 0 {
			return nil, nil, errors.NewValidationError("sigma", "must be non-negative", sigma)
		}
		if copies < 0 {
			return nil, nil, errors.NewValidationError("copies", "must be non-negative", copies)
		}
		nSamples, nFeatures := X.Features().Dims()
		if len(y) != nSamples {
			return nil, nil, errors.NewDimensionError("augment.Jitter", nSamples, len(y), 0)
		}

		rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
		total := nSamples * (1 + copies)
		out := mat.NewDense(total, nFeatures, nil)
		labels := make([]int, total)

		for i := 0; i < nSamples; i++ {
			for j := 0; j < nFeatures; j++ {
				out.Set(i, j, X.Features().At(i, j))
			}
			labels[i] = y[i]
		}
		row := nSamples
		for c := 0; c < copies; c++ {
			for i := 0; i < nSamples; i++ {
				for j := 0; j < nFeatures; j++ {
					out.Set(row, j, X.Features().At(i, j)+rng.NormFloat64()*sigma)
				}
				labels[row] = y[i]
				row++
			}
		}
		return out, labels, nil
	}
}

// Compose chains augmentation functions left to right; each step receives
// the previous step's numeric output. Typical use: ProjectOnly to
// materialize features from paths, then a synthesizing step such as Jitter.
func Compose(fns ...Func) Func {
	return func(X TrainData, y []int) (*mat.Dense, []int, error) {
		if len(fns) == 0 {
			return nil, nil, errors.NewValueError("augment.Compose", "no functions to compose")
		}
		var (
			out    *mat.Dense
			labels = y
			err    error
		)
		data := X
		for _, f := range fns {
			out, labels, err = f(data, labels)
			if err != nil {
				return nil, nil, err
			}
			data = NewFeatureData(out)
		}
		return out, labels, nil
	}
}

// ProjectOnly returns an augmentation that performs no synthesis: it projects
// raw train paths through the atlas projector so the standard pipeline can
// fit on path input. Numeric input passes through untouched.
func ProjectOnly(projector *difumo.Projector, nJobs int) Func {
	return func(X TrainData, y []int) (*mat.Dense, []int, error) {
		if X.IsNumeric() {
			return X.Features(), y, nil
		}
		if len(X.Paths()) != len(y) {
			return nil, nil, errors.NewDimensionError("augment.ProjectOnly", len(X.Paths()), len(y), 0)
		}
		features, err := projector.Project(context.Background(), X.Paths(), nJobs)
		if err != nil {
			return nil, nil, errors.Wrap(err, "augment: projecting train volumes")
		}
		return features, y, nil
	}
}
