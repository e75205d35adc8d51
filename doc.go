// Package mbda is a neuroimaging classification pipeline: brain-imaging
// volumes are projected once onto the DiFuMo functional atlas basis, then
// classifiers are trained and scored under repeated subject-level
// train/test splits.
//
// # Pipeline
//
// The pre-projection step (cmd/preproject) walks a data directory, loads
// each NIfTI volume, applies the atlas projector (Zinv + voxel mask) and
// writes the resulting feature matrix as .npy next to a labels.csv table.
//
// The classification step (cmd/classify) consumes that hand-off: for every
// model of the fixed catalog and every subject-level shuffle split it fits
// the classifier (through an optional data-augmentation function),
// checkpoints the fitted model, scores on the held-out subjects, and
// finally writes the aggregate score table in one shot.
//
// # Packages
//
//   - dataset: the images/subject/contrast sample table
//   - preprocessing: contrast-label encoding with a typed unknown-label error
//   - fetching: data-directory discovery into a sample table
//   - difumo: atlas projector loading and parallel volume projection
//   - classifier: LDA, random forest, logistic regression, grid search
//   - augment: augmentation contract plus reference implementations
//   - training: shuffle splits, split evaluator, driver, checkpoints, exports
//   - metrics: classification metrics backing every Score method
//   - core/model, core/parallel, pkg/errors, pkg/log: shared infrastructure
package mbda
