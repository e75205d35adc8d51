// Command preproject projects a directory of NIfTI volumes onto the DiFuMo
// atlas basis once, writing the feature matrix (.npy) and the label table
// (labels.csv) that the classification step consumes.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/cedricrommel/AISIP-MBDA-1/difumo"
	"github.com/cedricrommel/AISIP-MBDA-1/fetching"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
)

func main() {
	var (
		dataDir      = flag.String("data-dir", ".", "directory holding the volumes and index.csv")
		projectorDir = flag.String("projector-dir", ".", "directory holding Zinv.npy and mask.npy")
		output       = flag.String("output", "difumo_data.npy", "output path of the feature matrix")
		maxImages    = flag.Int("max-images", 0, "cap on the number of volumes (0 = all)")
		verbose      = flag.Bool("verbose", false, "raise log detail")
		nJobs        = flag.Int("njobs", 1, "concurrent projection workers")
	)
	flag.BoolVar(verbose, "v", false, "raise log detail (shorthand)")
	flag.IntVar(nJobs, "j", 1, "concurrent projection workers (shorthand)")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.LevelDebug)
		log.SetupLogger("debug")
	} else {
		log.SetupLogger("info")
	}
	log.CaptureWarnings()
	logger := log.GetLoggerWithName("preproject")

	err := errors.SafeExecute("preproject", func() error {
		return run(*dataDir, *projectorDir, *output, *maxImages, *nJobs, *verbose)
	})
	if err != nil {
		logger.Error("pre-projection failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

func run(dataDir, projectorDir, output string, maxImages, nJobs int, verbose bool) error {
	logger := log.GetLoggerWithName("preproject")

	table, err := fetching.FetchNV(dataDir, maxImages, verbose)
	if err != nil {
		return err
	}

	projector, err := difumo.LoadProjector(projectorDir)
	if err != nil {
		return err
	}
	logger.Info("projector loaded",
		"components", projector.NComponents(),
		"voxels", projector.NVoxels(),
	)

	features, err := projector.Project(context.Background(), table.Images, nJobs)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating output dir %s", dir)
		}
	}
	if err := difumo.SaveFeatures(output, features); err != nil {
		return err
	}

	labelsPath := filepath.Join(filepath.Dir(output), "labels.csv")
	if err := table.WriteCSV(labelsPath); err != nil {
		return err
	}

	rows, cols := features.Dims()
	logger.Info("pre-projection complete",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"features_path", output,
		"labels_path", labelsPath,
	)
	return nil
}
