// Package npyio adapts NumPy .npy files to gonum matrices.
//
// The projector basis (Zinv.npy), the voxel mask (mask.npy) and the projected
// feature matrix (difumo_data.npy) are all produced or consumed as .npy
// arrays, which is the on-disk hand-off format between the pre-projection
// stage and the training driver.
package npyio

import (
	"github.com/kshedden/gonpy"
	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// ReadMatrix reads a 2-dimensional float64 .npy file into a dense matrix.
func ReadMatrix(path string) (*mat.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "npyio: failed to open %s", path)
	}
	if len(r.Shape) != 2 {
		return nil, errors.NewValidationError("shape", "expected a 2-dimensional array", r.Shape)
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, errors.Wrapf(err, "npyio: failed to read %s", path)
	}

	rows, cols := r.Shape[0], r.Shape[1]
	if rows*cols != len(data) {
		return nil, errors.NewDimensionError("ReadMatrix", rows*cols, len(data), 0)
	}
	return mat.NewDense(rows, cols, data), nil
}

// WriteMatrix writes a dense matrix as a 2-dimensional float64 .npy file.
func WriteMatrix(path string, matrix *mat.Dense) error {
	rows, cols := matrix.Dims()

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "npyio: failed to create %s", path)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2

	if err := w.WriteFloat64(matrix.RawMatrix().Data); err != nil {
		return errors.Wrapf(err, "npyio: failed to write %s", path)
	}
	return nil
}

// ReadVector reads a 1-dimensional float64 .npy file. A (n,1) or (1,n)
// 2-dimensional array is accepted and flattened, since masks are saved
// either way depending on the producer.
func ReadVector(path string) ([]float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "npyio: failed to open %s", path)
	}
	switch len(r.Shape) {
	case 1:
	case 2:
		if r.Shape[0] != 1 && r.Shape[1] != 1 {
			return nil, errors.NewValidationError("shape", "expected a flat array", r.Shape)
		}
	default:
		return nil, errors.NewValidationError("shape", "expected a flat array", r.Shape)
	}

	data, err := r.GetFloat64()
	if err != nil {
		return nil, errors.Wrapf(err, "npyio: failed to read %s", path)
	}
	return data, nil
}

// WriteVector writes a float64 slice as a 1-dimensional .npy file.
func WriteVector(path string, data []float64) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrapf(err, "npyio: failed to create %s", path)
	}
	w.Shape = []int{len(data)}
	w.Version = 2

	if err := w.WriteFloat64(data); err != nil {
		return errors.Wrapf(err, "npyio: failed to write %s", path)
	}
	return nil
}
