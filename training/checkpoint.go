package training

import (
	"fmt"
	"time"

	"github.com/cedricrommel/AISIP-MBDA-1/core/model"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// Checkpoint is the unit persisted after each (model, split) fit: the fitted
// classifier plus enough metadata to identify the run it came from. The
// pipeline itself never reads checkpoints back; they exist for offline
// inspection.
type Checkpoint struct {
	ModelName  string
	MethodName string
	Split      int
	CreatedAt  time.Time
	Model      model.Classifier
}

// CheckpointPath derives the conventional checkpoint location for a split:
// <base>_<splitIndex>.gob.
func CheckpointPath(base string, split int) string {
	return fmt.Sprintf("%s_%d.gob", base, split)
}

// SaveCheckpoint gob-encodes the checkpoint, overwriting any previous file
// for the same (base, split).
func SaveCheckpoint(cp *Checkpoint, base string, split int) error {
	if cp.Model == nil {
		return errors.NewValueError("SaveCheckpoint", "checkpoint has no model")
	}
	path := CheckpointPath(base, split)
	if err := model.SaveModel(cp, path); err != nil {
		return errors.Wrapf(err, "training: writing checkpoint %s", path)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(base string, split int) (*Checkpoint, error) {
	path := CheckpointPath(base, split)
	cp := &Checkpoint{}
	if err := model.LoadModel(cp, path); err != nil {
		return nil, errors.Wrapf(err, "training: reading checkpoint %s", path)
	}
	return cp, nil
}
