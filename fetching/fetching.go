// Package fetching discovers imaging volumes on disk and returns them as a
// sample table.
//
// A data directory is expected to hold the NIfTI volumes plus an index.csv
// manifest with an images,subject,contrast header; image paths in the
// manifest are relative to the directory. The manifest's row order becomes
// the canonical sample order for the whole pipeline.
package fetching

import (
	"os"
	"path/filepath"

	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

// IndexFile is the manifest name expected inside a data directory.
const IndexFile = "index.csv"

// FetchNV loads the sample table of a data directory.
//
// Rows are returned in manifest order, capped at maxImages when maxImages > 0.
// Every referenced volume must exist; a broken manifest fails immediately
// rather than surfacing later as a projection error. Verbose only raises the
// log detail.
func FetchNV(dataDir string, maxImages int, verbose bool) (*dataset.SampleTable, error) {
	logger := log.GetLoggerWithName("fetching")

	indexPath := filepath.Join(dataDir, IndexFile)
	table, err := dataset.LoadCSV(indexPath)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching: failed to load manifest %s", indexPath)
	}

	if maxImages > 0 && table.Len() > maxImages {
		mask := make([]bool, table.Len())
		for i := 0; i < maxImages; i++ {
			mask[i] = true
		}
		table, err = table.Subset(mask)
		if err != nil {
			return nil, err
		}
	}

	// Manifest paths are relative to the data directory.
	for i, image := range table.Images {
		path := filepath.Join(dataDir, image)
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "fetching: manifest references missing volume %s", image)
		}
		table.Images[i] = path
		if verbose {
			logger.Debug("found volume",
				"image", path,
				"subject", table.Subjects[i],
				"contrast", table.Contrasts[i],
			)
		}
	}

	logger.Info("loaded sample table",
		log.SamplesKey, table.Len(),
		log.SubjectsKey, len(table.UniqueSubjects()),
		"data_dir", dataDir,
	)
	return table, nil
}
