package training

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// ScoreRecord is one row of the aggregate score table.
type ScoreRecord struct {
	MethodName string
	Algo       string
	Score      float64
	Split      int
}

var scoreHeader = []string{"method_name", "algo", "score", "split"}

// WriteScoresCSV writes the score table in one shot: header
// method_name,algo,score,split followed by one row per record.
func WriteScoresCSV(path string, records []ScoreRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "training: creating score table %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(scoreHeader); err != nil {
		return errors.Wrap(err, "training: writing score header")
	}
	for _, r := range records {
		row := []string{
			r.MethodName,
			r.Algo,
			strconv.FormatFloat(r.Score, 'g', -1, 64),
			strconv.Itoa(r.Split),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "training: writing score row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "training: flushing score table")
}

// ReadScoresCSV reads a table written by WriteScoresCSV.
func ReadScoresCSV(path string) ([]ScoreRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "training: opening score table %s", path)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "training: reading score table")
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "training: score table")
	}
	records := make([]ScoreRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(scoreHeader) {
			return nil, errors.NewValueError("ReadScoresCSV", "malformed score row")
		}
		score, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.Wrap(err, "training: parsing score")
		}
		split, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, errors.Wrap(err, "training: parsing split index")
		}
		records = append(records, ScoreRecord{
			MethodName: row[0],
			Algo:       row[1],
			Score:      score,
			Split:      split,
		})
	}
	return records, nil
}

// WriteScoresXLSX exports the score table as a spreadsheet with the same
// column layout as the CSV.
func WriteScoresXLSX(path string, records []ScoreRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrap(err, "training: creating scores sheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "training: dropping default sheet")
	}

	for col, name := range scoreHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "training: header cell name")
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "training: writing header cell")
		}
	}
	for i, r := range records {
		values := []any{r.MethodName, r.Algo, r.Score, r.Split}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return errors.Wrap(err, "training: score cell name")
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "training: writing score cell")
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "training: saving %s", path)
	}
	return nil
}
