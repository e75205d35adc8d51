// Command classify runs the cross-validated classification over a
// pre-projected feature matrix: subject-level shuffle splits, the fixed
// model catalog, per-split checkpoints, and the aggregate score table.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/cedricrommel/AISIP-MBDA-1/augment"
	"github.com/cedricrommel/AISIP-MBDA-1/dataset"
	"github.com/cedricrommel/AISIP-MBDA-1/difumo"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/log"
	"github.com/cedricrommel/AISIP-MBDA-1/training"
)

// envDefault reads an environment default, typically loaded from .env.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	// .env is optional; flags always win over it.
	_ = godotenv.Load()

	var (
		labelsPath   = flag.String("labels", envDefault("MBDA_LABELS", "labels.csv"), "label table CSV")
		featuresPath = flag.String("features", envDefault("MBDA_FEATURES", training.DefaultFeaturesPath), "pre-projected feature matrix (.npy)")
		projectorDir = flag.String("projector-dir", envDefault("MBDA_PROJECTOR_DIR", ""), "projector directory (optional, enables dimension checks and path augmentation)")
		outputPath   = flag.String("output", envDefault("MBDA_OUTPUT", "scores.csv"), "aggregate score table CSV")
		modelsDir    = flag.String("models-dir", envDefault("MBDA_MODELS_DIR", "models"), "checkpoint directory")
		methodName   = flag.String("method-name", envDefault("MBDA_METHOD", "none"), "augmentation method label for the score table")
		augmentation = flag.String("augmentation", envDefault("MBDA_AUGMENTATION", "none"), "augmentation: none or jitter")
		trainSize    = flag.Float64("train-size", envFloat("MBDA_TRAIN_SIZE", 0.8), "train share of subjects: (0,1) fraction or >=1 absolute count")
		nSplits      = flag.Int("splits", 10, "number of shuffle splits")
		seed         = flag.Int64("seed", 0, "split and model seed")
		nJobs        = flag.Int("njobs", 1, "jobs hint for projection and forest fitting")
		jitterSigma  = flag.Float64("jitter-sigma", 0.1, "noise standard deviation for jitter augmentation")
		jitterCopies = flag.Int("jitter-copies", 1, "noisy duplicates per sample for jitter augmentation")
		plotPath     = flag.String("plot", "", "optional score plot output (PNG)")
		xlsxPath     = flag.String("xlsx", "", "optional score spreadsheet output")
		logLevel     = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.IntVar(nJobs, "j", 1, "jobs hint (shorthand)")
	flag.Parse()

	switch *logLevel {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
	log.SetupLogger(*logLevel)
	log.CaptureWarnings()

	runID := uuid.NewString()
	logger := log.GetLoggerWithName("classify").With(log.RunIDKey, runID)
	logger.Info("starting run",
		log.MethodNameKey, *methodName,
		log.TrainSizeKey, *trainSize,
		log.RandomSeedKey, *seed,
	)

	err := errors.SafeExecute("classify", func() error {
		table, err := dataset.LoadCSV(*labelsPath)
		if err != nil {
			return err
		}

		var projector *difumo.Projector
		if *projectorDir != "" {
			projector, err = difumo.LoadProjector(*projectorDir)
			if err != nil {
				return err
			}
		}

		f, err := buildAugmentation(*augmentation, projector, *nJobs, *jitterSigma, *jitterCopies, *seed)
		if err != nil {
			return err
		}

		cfg := training.Config{
			FeaturesPath: *featuresPath,
			OutputPath:   *outputPath,
			ModelsDir:    *modelsDir,
			MethodName:   *methodName,
			NSplits:      *nSplits,
			TrainSize:    *trainSize,
			Seed:         *seed,
			NJobs:        *nJobs,
			PlotPath:     *plotPath,
			XLSXPath:     *xlsxPath,
		}
		records, err := training.DoClassif(table, projector, f, cfg)
		if err != nil {
			return err
		}
		logger.Info("run complete", "n_scores", len(records), "output", *outputPath)
		return nil
	})
	if err != nil {
		logger.Error("run failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

// buildAugmentation maps the CLI choice to an augmentation function. Both
// choices start from ProjectOnly: the train side of every split carries raw
// volume paths, so features must be materialized before any synthesis.
func buildAugmentation(name string, projector *difumo.Projector, nJobs int, sigma float64, copies int, seed int64) (augment.Func, error) {
	if projector == nil {
		return nil, errors.NewValueError("classify",
			"augmentation requires --projector-dir to materialize train features")
	}
	switch name {
	case "none":
		return augment.ProjectOnly(projector, nJobs), nil
	case "jitter":
		return augment.Compose(
			augment.ProjectOnly(projector, nJobs),
			augment.Jitter(sigma, copies, seed),
		), nil
	default:
		return nil, errors.NewValidationError("augmentation", "must be none or jitter", name)
	}
}
