// Package classifier implements the model catalog of the classification
// driver: linear discriminant analysis, a random forest, and a regularized
// logistic regression with grid search. Every classifier satisfies
// model.Classifier ({Fit, Predict, Score} over a gonum matrix and integer
// class codes) and keeps its fitted state in exported fields so checkpoints
// can be gob encoded.
package classifier

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/metrics"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// LinearDiscriminantAnalysis is a linear classifier with a shared,
// shrinkage-regularized within-class covariance.
//
// The solver is the least-squares formulation: the discriminant weights are
// obtained by solving Sigma * W = M^T for the class-means matrix M, with the
// pooled covariance Sigma shrunk toward a scaled identity by the Ledoit-Wolf
// automatic intensity.
type LinearDiscriminantAnalysis struct {
	model.BaseEstimator

	// Shrinkage intensity in [0,1]; negative means automatic (Ledoit-Wolf).
	// NewLDA sets it to -1.
	Shrinkage float64

	// Fitted state, exported for gob encoding.
	Coef       [][]float64 // n_classes x n_features
	Intercept  []float64   // n_classes
	ClassList  []int       // class codes in ascending order
	NFeaturesI int         // features seen during fit
	ShrinkageF float64     // intensity actually used
}

// NewLDA creates a LinearDiscriminantAnalysis with automatic shrinkage.
func NewLDA() *LinearDiscriminantAnalysis {
	return &LinearDiscriminantAnalysis{Shrinkage: -1}
}

// Fit estimates class means, priors and the shrunk pooled covariance, then
// solves for the linear discriminants.
func (lda *LinearDiscriminantAnalysis) Fit(X mat.Matrix, y []int) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "classifier: LDA.Fit")
	}
	if len(y) != nSamples {
		return errors.NewDimensionError("LDA.Fit", nSamples, len(y), 0)
	}

	classes := uniqueSortedClasses(y)
	if len(classes) < 2 {
		return errors.NewValidationError("y", "need at least 2 classes", len(classes))
	}

	classIndex := make(map[int]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	// Class means and priors.
	counts := make([]float64, len(classes))
	means := mat.NewDense(len(classes), nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		k := classIndex[y[i]]
		counts[k]++
		for j := 0; j < nFeatures; j++ {
			means.Set(k, j, means.At(k, j)+X.At(i, j))
		}
	}
	for k := range classes {
		for j := 0; j < nFeatures; j++ {
			means.Set(k, j, means.At(k, j)/counts[k])
		}
	}

	// Within-class centered data.
	centered := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		k := classIndex[y[i]]
		for j := 0; j < nFeatures; j++ {
			centered.Set(i, j, X.At(i, j)-means.At(k, j))
		}
	}

	cov, shrinkage, err := shrunkCovariance(centered, lda.Shrinkage)
	if err != nil {
		return err
	}
	lda.ShrinkageF = shrinkage

	// Least-squares solve: cov * W = means^T.
	var weights mat.Dense
	if err := weights.Solve(cov, means.T()); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "classifier: LDA.Fit covariance solve")
	}

	lda.ClassList = classes
	lda.NFeaturesI = nFeatures
	lda.Coef = make([][]float64, len(classes))
	lda.Intercept = make([]float64, len(classes))
	for k := range classes {
		lda.Coef[k] = make([]float64, nFeatures)
		var dot float64
		for j := 0; j < nFeatures; j++ {
			w := weights.At(j, k)
			lda.Coef[k][j] = w
			dot += means.At(k, j) * w
		}
		lda.Intercept[k] = -0.5*dot + math.Log(counts[k]/float64(nSamples))
	}

	if err := errors.CheckNumericalStability("LDA.Fit", lda.Intercept, 0); err != nil {
		return err
	}

	lda.SetFitted()
	return nil
}

// DecisionFunction returns the discriminant values, n_samples x n_classes.
func (lda *LinearDiscriminantAnalysis) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if !lda.IsFitted() {
		return nil, errors.NewNotFittedError("LinearDiscriminantAnalysis", "DecisionFunction")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lda.NFeaturesI {
		return nil, errors.NewDimensionError("LDA.DecisionFunction", lda.NFeaturesI, nFeatures, 1)
	}

	scores := mat.NewDense(nSamples, len(lda.ClassList), nil)
	for i := 0; i < nSamples; i++ {
		for k := range lda.ClassList {
			s := lda.Intercept[k]
			for j := 0; j < nFeatures; j++ {
				s += X.At(i, j) * lda.Coef[k][j]
			}
			scores.Set(i, k, s)
		}
	}
	return scores, nil
}

// Predict returns the class code with the highest discriminant per sample.
func (lda *LinearDiscriminantAnalysis) Predict(X mat.Matrix) ([]int, error) {
	scores, err := lda.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	preds := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		best := 0
		for k := 1; k < len(lda.ClassList); k++ {
			if scores.At(i, k) > scores.At(i, best) {
				best = k
			}
		}
		preds[i] = lda.ClassList[best]
	}
	return preds, nil
}

// PredictProba returns class probabilities as the softmax of the
// discriminants.
func (lda *LinearDiscriminantAnalysis) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lda.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, nClasses := scores.Dims()
	probs := mat.NewDense(nSamples, nClasses, nil)
	row := make([]float64, nClasses)
	for i := 0; i < nSamples; i++ {
		mat.Row(row, i, scores)
		logZ := errors.LogSumExp(row)
		for k := 0; k < nClasses; k++ {
			probs.Set(i, k, math.Exp(row[k]-logZ))
		}
	}
	return probs, nil
}

// Classes returns the fitted class codes in ascending order.
func (lda *LinearDiscriminantAnalysis) Classes() []int {
	return lda.ClassList
}

// Score returns the mean accuracy on the given test data.
func (lda *LinearDiscriminantAnalysis) Score(X mat.Matrix, y []int) (float64, error) {
	preds, err := lda.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyLabels(y, preds)
}

// shrunkCovariance computes the pooled covariance of centered data and
// shrinks it toward mu*I. A negative shrinkage requests the Ledoit-Wolf
// automatic intensity.
func shrunkCovariance(centered *mat.Dense, shrinkage float64) (*mat.Dense, float64, error) {
	nSamples, nFeatures := centered.Dims()
	n := float64(nSamples)
	d := float64(nFeatures)

	cov := mat.NewDense(nFeatures, nFeatures, nil)
	cov.Mul(centered.T(), centered)
	cov.Scale(1/n, cov)

	var trace float64
	for j := 0; j < nFeatures; j++ {
		trace += cov.At(j, j)
	}
	mu := trace / d

	if shrinkage < 0 {
		// Ledoit-Wolf intensity: delta2 measures the dispersion of the
		// sample covariance around mu*I, beta2 the estimation noise.
		var delta2 float64
		for i := 0; i < nFeatures; i++ {
			for j := 0; j < nFeatures; j++ {
				v := cov.At(i, j)
				if i == j {
					v -= mu
				}
				delta2 += v * v
			}
		}
		delta2 /= d

		var beta2bar float64
		xi := make([]float64, nFeatures)
		for i := 0; i < nSamples; i++ {
			mat.Row(xi, i, centered)
			var normSq, cross float64
			for a := 0; a < nFeatures; a++ {
				normSq += xi[a] * xi[a]
				for b := 0; b < nFeatures; b++ {
					cross += xi[a] * xi[b] * cov.At(a, b)
				}
			}
			// ||x x^T - S||_F^2 = ||x||^4 - 2 x^T S x + ||S||_F^2
			beta2bar += normSq*normSq - 2*cross
		}
		var covNormSq float64
		for i := 0; i < nFeatures; i++ {
			for j := 0; j < nFeatures; j++ {
				covNormSq += cov.At(i, j) * cov.At(i, j)
			}
		}
		beta2bar = (beta2bar + n*covNormSq) / (n * n * d)

		if delta2 <= 0 {
			shrinkage = 0
		} else {
			shrinkage = math.Min(beta2bar, delta2) / delta2
		}
	}
	if shrinkage < 0 || shrinkage > 1 {
		return nil, 0, errors.NewValidationError("shrinkage", "must be in [0, 1]", shrinkage)
	}

	for i := 0; i < nFeatures; i++ {
		for j := 0; j < nFeatures; j++ {
			v := (1 - shrinkage) * cov.At(i, j)
			if i == j {
				v += shrinkage * mu
			}
			cov.Set(i, j, v)
		}
	}
	return cov, shrinkage, nil
}

// uniqueSortedClasses returns the distinct class codes in ascending order.
func uniqueSortedClasses(y []int) []int {
	seen := make(map[int]bool, len(y))
	classes := make([]int, 0)
	for _, c := range y {
		if !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}
	sort.Ints(classes)
	return classes
}
