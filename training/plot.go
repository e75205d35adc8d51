package training

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// PlotScores renders a per-model box plot of split scores to a PNG.
func PlotScores(path string, records []ScoreRecord) error {
	if len(records) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "training: plotting scores")
	}

	byAlgo := make(map[string]plotter.Values)
	for _, r := range records {
		byAlgo[r.Algo] = append(byAlgo[r.Algo], r.Score)
	}
	algos := make([]string, 0, len(byAlgo))
	for algo := range byAlgo {
		algos = append(algos, algo)
	}
	sort.Strings(algos)

	p := plot.New()
	p.Title.Text = "Cross-validated scores"
	p.Y.Label.Text = "accuracy"
	p.Y.Min, p.Y.Max = 0, 1

	for i, algo := range algos {
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), byAlgo[algo])
		if err != nil {
			return errors.Wrapf(err, "training: box plot for %s", algo)
		}
		p.Add(box)
	}
	p.NominalX(algos...)

	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "training: saving plot %s", path)
	}
	return nil
}
