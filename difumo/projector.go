// Package difumo projects imaging volumes onto the DiFuMo functional atlas
// basis.
//
// The projector is a fixed pair of pre-computed arrays: Zinv, the
// pseudo-inverse of the atlas dictionary (components x voxels-in-mask), and a
// flattened binary voxel mask selecting the in-brain voxels of a volume in C
// order. Projection of a volume is mask-then-multiply; it is deterministic
// given the same projector pair.
package difumo

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/KyungWonPark/nifti"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cedricrommel/AISIP-MBDA-1/internal/npyio"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

// File names of the pre-computed projector arrays inside a projector
// directory.
const (
	ZinvFile = "Zinv.npy"
	MaskFile = "mask.npy"
)

// Projector holds the fixed projection basis and voxel mask.
type Projector struct {
	// Zinv is components x voxels-in-mask.
	Zinv *mat.Dense
	// Mask is the flattened binary voxel mask over the full volume grid,
	// C order. Nonzero entries select the voxels Zinv's columns refer to.
	Mask []float64

	nMasked int
}

// LoadProjector reads Zinv.npy and mask.npy from a directory and validates
// that the mask selects exactly as many voxels as Zinv has columns.
func LoadProjector(dir string) (*Projector, error) {
	zinv, err := npyio.ReadMatrix(filepath.Join(dir, ZinvFile))
	if err != nil {
		return nil, err
	}
	mask, err := npyio.ReadVector(filepath.Join(dir, MaskFile))
	if err != nil {
		return nil, err
	}

	nMasked := 0
	for _, v := range mask {
		if v != 0 {
			nMasked++
		}
	}
	_, cols := zinv.Dims()
	if nMasked != cols {
		return nil, errors.NewDimensionError("LoadProjector", cols, nMasked, 1)
	}

	return &Projector{Zinv: zinv, Mask: mask, nMasked: nMasked}, nil
}

// NewProjector builds a projector from in-memory arrays, with the same
// validation as LoadProjector. Tests and the augmentation helpers use it.
func NewProjector(zinv *mat.Dense, mask []float64) (*Projector, error) {
	nMasked := 0
	for _, v := range mask {
		if v != 0 {
			nMasked++
		}
	}
	_, cols := zinv.Dims()
	if nMasked != cols {
		return nil, errors.NewDimensionError("NewProjector", cols, nMasked, 1)
	}
	return &Projector{Zinv: zinv, Mask: mask, nMasked: nMasked}, nil
}

// NComponents returns the number of atlas components, i.e. the width of the
// projected feature matrix.
func (p *Projector) NComponents() int {
	rows, _ := p.Zinv.Dims()
	return rows
}

// NVoxels returns the length of the flattened voxel grid the mask covers.
func (p *Projector) NVoxels() int {
	return len(p.Mask)
}

// ProjectVolume projects one flattened volume (C order, full grid) onto the
// atlas basis, returning one feature row of length NComponents.
func (p *Projector) ProjectVolume(volume []float64) ([]float64, error) {
	if len(volume) != len(p.Mask) {
		return nil, errors.NewDimensionError("ProjectVolume", len(p.Mask), len(volume), 0)
	}

	masked := mat.NewVecDense(p.nMasked, nil)
	j := 0
	for i, m := range p.Mask {
		if m != 0 {
			masked.SetVec(j, volume[i])
			j++
		}
	}

	row := mat.NewVecDense(p.NComponents(), nil)
	row.MulVec(p.Zinv, masked)

	features := make([]float64, row.Len())
	copy(features, row.RawVector().Data)
	return features, nil
}

// Project loads every NIfTI volume in paths, projects it, and assembles the
// n_images x n_components feature matrix, row-aligned with the input order.
//
// Volumes are processed by a worker pool of up to nJobs goroutines (nJobs <= 0
// means one worker per CPU); the first error cancels the remaining work and is
// returned.
func (p *Projector) Project(ctx context.Context, paths []string, nJobs int) (*mat.Dense, error) {
	if len(paths) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "difumo: Project")
	}
	if nJobs <= 0 {
		nJobs = runtime.NumCPU()
	}

	logger := log.GetLoggerWithName("difumo")
	logger.Info("projecting volumes",
		log.SamplesKey, len(paths),
		log.FeaturesKey, p.NComponents(),
		"n_jobs", nJobs,
	)

	features := mat.NewDense(len(paths), p.NComponents(), nil)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nJobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := p.projectFile(path)
			if err != nil {
				return err
			}
			// Rows are disjoint, so concurrent writes do not contend.
			features.SetRow(i, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return features, nil
}

// projectFile loads one NIfTI volume and projects it. Only the first time
// point of a volume is used; the pipeline operates on static contrast maps.
func (p *Projector) projectFile(path string) ([]float64, error) {
	flat, err := loadVolume(path, p.NVoxels())
	if err != nil {
		return nil, err
	}
	row, err := p.ProjectVolume(flat)
	if err != nil {
		return nil, errors.Wrapf(err, "difumo: volume %s does not match the mask grid", path)
	}
	return row, nil
}

// loadVolume reads a NIfTI volume and flattens it in C order (x fastest).
func loadVolume(path string, nVoxels int) ([]float64, error) {
	var img nifti.Nifti1Image
	err := errors.SafeExecute("difumo.loadVolume", func() error {
		img.LoadImage(path, true)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "difumo: failed to load volume %s", path)
	}

	header := img.GetHeader()
	nx, ny, nz := int(header.Dim[1]), int(header.Dim[2]), int(header.Dim[3])
	if nx*ny*nz != nVoxels {
		return nil, errors.NewDimensionError("loadVolume", nVoxels, nx*ny*nz, 0)
	}

	flat := make([]float64, 0, nVoxels)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				flat = append(flat, float64(img.GetAt(uint32(x), uint32(y), uint32(z), 0)))
			}
		}
	}
	return flat, nil
}

// SaveFeatures persists a projected feature matrix as .npy. This file is the
// hand-off contract between the pre-projection driver and the training
// driver: its row order must match the sample table's row order exactly.
func SaveFeatures(path string, features *mat.Dense) error {
	return npyio.WriteMatrix(path, features)
}

// LoadFeatures reads a projected feature matrix saved by SaveFeatures.
func LoadFeatures(path string) (*mat.Dense, error) {
	return npyio.ReadMatrix(path)
}
