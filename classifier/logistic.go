package classifier

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/metrics"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// LogisticRegression is an L2-regularized logistic classifier trained by
// gradient descent with an adaptive learning rate. Multiclass problems are
// handled one-vs-rest.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters.
	C            float64 // inverse regularization strength
	MaxIter      int
	Tol          float64
	FitIntercept bool
	Seed         int64

	// Fitted state, exported for gob encoding. Binary problems keep a
	// single weight row; multiclass keeps one row per class.
	Coef      [][]float64
	Intercept []float64
	ClassList []int
	NFeatures int
	NIter     []int
}

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithC sets the inverse regularization strength.
func WithC(c float64) LogisticOption {
	return func(lr *LogisticRegression) { lr.C = c }
}

// WithMaxIter sets the iteration budget of the gradient descent.
func WithMaxIter(n int) LogisticOption {
	return func(lr *LogisticRegression) { lr.MaxIter = n }
}

// WithTol sets the gradient-norm stopping tolerance.
func WithTol(tol float64) LogisticOption {
	return func(lr *LogisticRegression) { lr.Tol = tol }
}

// WithLogisticSeed fixes the weight-initialization randomness.
func WithLogisticSeed(seed int64) LogisticOption {
	return func(lr *LogisticRegression) { lr.Seed = seed }
}

// NewLogisticRegression creates a LogisticRegression with C=1, 100
// iterations and tolerance 1e-4.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		C:            1.0,
		MaxIter:      100,
		Tol:          1e-4,
		FitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit trains the classifier. Binary problems train a single discriminant;
// with more classes each class gets its own one-vs-rest problem.
func (lr *LogisticRegression) Fit(X mat.Matrix, y []int) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "classifier: LogisticRegression.Fit")
	}
	if len(y) != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(y), 0)
	}
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}

	classes := uniqueSortedClasses(y)
	if len(classes) < 2 {
		return errors.NewValidationError("y", "need at least 2 classes", len(classes))
	}
	lr.ClassList = classes
	lr.NFeatures = nFeatures

	rng := rand.New(rand.NewPCG(uint64(lr.Seed), uint64(lr.Seed)))

	nProblems := len(classes)
	if nProblems == 2 {
		nProblems = 1
	}
	lr.Coef = make([][]float64, nProblems)
	lr.Intercept = make([]float64, nProblems)
	lr.NIter = make([]int, nProblems)
	for p := range lr.Coef {
		lr.Coef[p] = make([]float64, nFeatures)
		for j := range lr.Coef[p] {
			lr.Coef[p][j] = rng.NormFloat64() * 0.01
		}
	}

	target := make([]float64, nSamples)
	for p := 0; p < nProblems; p++ {
		// Binary: positive class is the second code. One-vs-rest:
		// positive class is the problem's own code.
		positive := classes[1]
		if len(classes) > 2 {
			positive = classes[p]
		}
		for i, label := range y {
			if label == positive {
				target[i] = 1
			} else {
				target[i] = 0
			}
		}
		if err := lr.fitBinary(X, target, p); err != nil {
			return err
		}
	}

	lr.SetFitted()
	return nil
}

// fitBinary runs the gradient descent for problem p against 0/1 targets.
func (lr *LogisticRegression) fitBinary(X mat.Matrix, target []float64, p int) error {
	nSamples, nFeatures := X.Dims()
	weights := lr.Coef[p]
	lambda := 1.0 / lr.C

	grad := make([]float64, nFeatures)
	converged := false

	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.Intercept[p]
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - target[i]
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				grad[j] += residual * X.At(i, j)
			}
		}

		for j := range grad {
			grad[j] = grad[j]/float64(nSamples) + lambda*weights[j]
		}
		gradIntercept /= float64(nSamples)

		learningRate := 1.0 / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * grad[j]
		}
		if lr.FitIntercept {
			lr.Intercept[p] -= learningRate * gradIntercept
		}
		lr.NIter[p] = iter + 1

		if err := errors.CheckNumericalStability("LogisticRegression.Fit", weights, iter); err != nil {
			return err
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range grad {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.MaxIter,
			"gradient descent hit the iteration budget; consider raising MaxIter or Tol"))
	}
	return nil
}

// DecisionFunction returns the pre-sigmoid scores, n_samples x n_problems
// (a single column for binary classification).
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "DecisionFunction")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.NFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.DecisionFunction", lr.NFeatures, nFeatures, 1)
	}

	scores := mat.NewDense(nSamples, len(lr.Coef), nil)
	for i := 0; i < nSamples; i++ {
		for p := range lr.Coef {
			z := lr.Intercept[p]
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.Coef[p][j]
			}
			scores.Set(i, p, z)
		}
	}
	return scores, nil
}

// Predict returns the class code per sample.
func (lr *LogisticRegression) Predict(X mat.Matrix) ([]int, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	preds := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		if len(lr.Coef) == 1 {
			if scores.At(i, 0) > 0 {
				preds[i] = lr.ClassList[1]
			} else {
				preds[i] = lr.ClassList[0]
			}
			continue
		}
		best := 0
		for p := 1; p < len(lr.Coef); p++ {
			if scores.At(i, p) > scores.At(i, best) {
				best = p
			}
		}
		preds[i] = lr.ClassList[best]
	}
	return preds, nil
}

// PredictProba returns class membership probabilities. One-vs-rest scores
// are sigmoid-transformed and normalized per row.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	probs := mat.NewDense(nSamples, len(lr.ClassList), nil)
	for i := 0; i < nSamples; i++ {
		if len(lr.Coef) == 1 {
			p1 := sigmoid(scores.At(i, 0))
			probs.Set(i, 0, 1-p1)
			probs.Set(i, 1, p1)
			continue
		}
		var sum float64
		for p := range lr.Coef {
			v := sigmoid(scores.At(i, p))
			probs.Set(i, p, v)
			sum += v
		}
		if sum > 0 {
			for p := range lr.Coef {
				probs.Set(i, p, probs.At(i, p)/sum)
			}
		}
	}
	return probs, nil
}

// Classes returns the fitted class codes in ascending order.
func (lr *LogisticRegression) Classes() []int {
	return lr.ClassList
}

// Score returns the mean accuracy on the given test data.
func (lr *LogisticRegression) Score(X mat.Matrix, y []int) (float64, error) {
	preds, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyLabels(y, preds)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
