package training

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/augment"
	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/metrics"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// AugmentedClassifier couples a classifier with an optional augmentation
// function. With a nil function and numeric train data it behaves exactly
// like the wrapped classifier; with an augmentation function the classifier
// is fitted on whatever arrays the function returns.
type AugmentedClassifier struct {
	Classifier model.Classifier
	Augment    augment.Func

	state *model.StateManager
}

// NewAugmentedClassifier wraps clf; f may be nil.
func NewAugmentedClassifier(clf model.Classifier, f augment.Func) *AugmentedClassifier {
	return &AugmentedClassifier{
		Classifier: clf,
		Augment:    f,
		state:      model.NewStateManager(),
	}
}

// Fit trains the wrapped classifier on the (possibly augmented) train data.
// Raw path input without an augmentation function is an error: nothing in
// the fit path loads volumes, so the caller must supply a function that does
// (augment.ProjectOnly at minimum).
func (ac *AugmentedClassifier) Fit(X augment.TrainData, y []int) error {
	if ac.Classifier == nil {
		return errors.NewValueError("AugmentedClassifier.Fit", "no classifier set")
	}
	if X.Len() != len(y) {
		return errors.NewDimensionError("AugmentedClassifier.Fit", X.Len(), len(y), 0)
	}

	if ac.Augment == nil {
		if !X.IsNumeric() {
			return errors.NewValueError("AugmentedClassifier.Fit",
				"raw volume paths require an augmentation function to materialize features")
		}
		if err := ac.Classifier.Fit(X.Features(), y); err != nil {
			return err
		}
		rows, cols := X.Features().Dims()
		ac.state.SetDimensions(cols, rows)
		ac.state.SetFitted()
		return nil
	}

	augX, augY, err := ac.Augment(X, y)
	if err != nil {
		return errors.Wrap(err, "training: augmentation failed")
	}
	rows, cols := augX.Dims()
	if rows != len(augY) {
		return errors.NewDimensionError("AugmentedClassifier.Fit", rows, len(augY), 0)
	}
	if err := ac.Classifier.Fit(augX, augY); err != nil {
		return err
	}
	ac.state.SetDimensions(cols, rows)
	ac.state.SetFitted()
	return nil
}

// IsFitted reports whether Fit has completed successfully.
func (ac *AugmentedClassifier) IsFitted() bool {
	return ac.state != nil && ac.state.IsFitted()
}

// Predict delegates to the wrapped classifier.
func (ac *AugmentedClassifier) Predict(X mat.Matrix) ([]int, error) {
	if ac.Classifier == nil {
		return nil, errors.NewValueError("AugmentedClassifier.Predict", "no classifier set")
	}
	if !ac.IsFitted() {
		return nil, errors.NewNotFittedError("AugmentedClassifier", "Predict")
	}
	return ac.Classifier.Predict(X)
}

// Score returns the wrapped classifier's mean accuracy on numeric test data.
func (ac *AugmentedClassifier) Score(X mat.Matrix, y []int) (float64, error) {
	preds, err := ac.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyLabels(y, preds)
}
