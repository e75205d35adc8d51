// Package preprocessing converts the categorical contrast labels of a sample
// table into the dense integer class codes the classifiers consume.
package preprocessing

import (
	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// LabelEncoder maps distinct contrast values to dense, zero-based integer
// codes in first-occurrence order.
//
// A fitted encoder is a partial function over any other label set: applying
// it to a label absent from the fitted dictionary fails with a typed
// *errors.UnknownLabelError naming every missing label. Callers that want
// the degraded fall-back behavior (an independently fitted test dictionary)
// detect that error with errors.As and branch explicitly.
type LabelEncoder struct {
	model.BaseEstimator

	// ClassList holds the distinct labels in first-occurrence order;
	// the code of ClassList[i] is i. Exported for gob encoding.
	ClassList []string

	codes map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit builds the label dictionary from the table's contrast column.
// Codes are assigned consecutively from 0 in first-occurrence order.
func (e *LabelEncoder) Fit(t *dataset.SampleTable) error {
	if t.Len() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "preprocessing: LabelEncoder.Fit")
	}

	e.ClassList = e.ClassList[:0]
	e.codes = make(map[string]int)
	for _, label := range t.Contrasts {
		if _, seen := e.codes[label]; !seen {
			e.codes[label] = len(e.ClassList)
			e.ClassList = append(e.ClassList, label)
		}
	}
	e.SetFitted()
	return nil
}

// Transform applies the fitted dictionary to the table's contrast column,
// returning one integer code per row in row order. Labels absent from the
// dictionary produce an *errors.UnknownLabelError listing all of them; no
// partial output is returned in that case.
func (e *LabelEncoder) Transform(t *dataset.SampleTable) ([]int, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}
	e.ensureCodes()

	var missing []string
	encoded := make([]int, t.Len())
	for i, label := range t.Contrasts {
		code, ok := e.codes[label]
		if !ok {
			missing = append(missing, label)
			continue
		}
		encoded[i] = code
	}
	if len(missing) > 0 {
		return nil, errors.NewUnknownLabelError("LabelEncoder.Transform", missing)
	}
	return encoded, nil
}

// FitTransform fits the dictionary on the table and returns its encoding.
func (e *LabelEncoder) FitTransform(t *dataset.SampleTable) ([]int, error) {
	if err := e.Fit(t); err != nil {
		return nil, err
	}
	return e.Transform(t)
}

// InverseTransform maps integer codes back to the original labels.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}
	labels := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(e.ClassList) {
			return nil, errors.NewValidationError("codes", "class code out of range", code)
		}
		labels[i] = e.ClassList[code]
	}
	return labels, nil
}

// Classes returns the fitted labels in code order.
func (e *LabelEncoder) Classes() []string {
	return e.ClassList
}

// NClasses returns the number of distinct fitted labels.
func (e *LabelEncoder) NClasses() int {
	return len(e.ClassList)
}

// ensureCodes rebuilds the lookup map from ClassList. The map is not gob
// encoded, so an encoder restored from a checkpoint has ClassList only.
func (e *LabelEncoder) ensureCodes() {
	if e.codes != nil {
		return
	}
	e.codes = make(map[string]int, len(e.ClassList))
	for i, label := range e.ClassList {
		e.codes[label] = i
	}
}
