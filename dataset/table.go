// Package dataset holds the sample table shared by the fetching, projection
// and training stages: one row per imaging sample, with the volume path, the
// subject the sample was recorded from, and the contrast (task condition)
// label used as classification target.
//
// Row order is canonical. The projected feature matrix produced by the
// pre-projection stage is row-aligned with this table, so any operation that
// reorders rows would silently misalign features and labels.
package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// Column names expected in a sample manifest CSV.
const (
	ImagesColumn   = "images"
	SubjectColumn  = "subject"
	ContrastColumn = "contrast"
)

// SampleTable is a row-per-sample table with three parallel columns.
// The columns are always equal length; index i across all three describes
// sample i.
type SampleTable struct {
	Images    []string
	Subjects  []string
	Contrasts []string
}

// NewSampleTable builds a table from parallel column slices.
// The slices must have equal length.
func NewSampleTable(images, subjects, contrasts []string) (*SampleTable, error) {
	if len(subjects) != len(images) {
		return nil, errors.NewDimensionError("NewSampleTable", len(images), len(subjects), 0)
	}
	if len(contrasts) != len(images) {
		return nil, errors.NewDimensionError("NewSampleTable", len(images), len(contrasts), 0)
	}
	return &SampleTable{Images: images, Subjects: subjects, Contrasts: contrasts}, nil
}

// Len returns the number of samples (rows).
func (t *SampleTable) Len() int {
	return len(t.Images)
}

// UniqueSubjects returns the distinct subject identifiers in
// first-occurrence order.
func (t *SampleTable) UniqueSubjects() []string {
	seen := make(map[string]bool, len(t.Subjects))
	subjects := make([]string, 0)
	for _, s := range t.Subjects {
		if !seen[s] {
			seen[s] = true
			subjects = append(subjects, s)
		}
	}
	return subjects
}

// MaskBySubjects returns a boolean row mask: mask[i] is true iff row i
// belongs to one of the given subjects. Masks built from disjoint subject
// sets are disjoint, and their union covers exactly the rows of those
// subjects, which is what makes subject-level splitting leakage-free.
func (t *SampleTable) MaskBySubjects(subjects map[string]bool) []bool {
	mask := make([]bool, len(t.Subjects))
	for i, s := range t.Subjects {
		mask[i] = subjects[s]
	}
	return mask
}

// Subset returns a new table containing the rows for which mask[i] is true,
// preserving row order. The mask length must match the table length.
func (t *SampleTable) Subset(mask []bool) (*SampleTable, error) {
	if len(mask) != t.Len() {
		return nil, errors.NewDimensionError("Subset", t.Len(), len(mask), 0)
	}
	sub := &SampleTable{}
	for i, keep := range mask {
		if !keep {
			continue
		}
		sub.Images = append(sub.Images, t.Images[i])
		sub.Subjects = append(sub.Subjects, t.Subjects[i])
		sub.Contrasts = append(sub.Contrasts, t.Contrasts[i])
	}
	return sub, nil
}

// LoadCSV reads a sample table from a CSV file with an
// images,subject,contrast header. Column order in the file does not matter;
// extra columns are ignored.
func LoadCSV(path string) (*SampleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// ReadCSV reads a sample table from CSV content.
func ReadCSV(r io.Reader) (*SampleTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "dataset: failed to read CSV header")
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{ImagesColumn, SubjectColumn, ContrastColumn} {
		if _, ok := cols[required]; !ok {
			return nil, errors.NewValidationError("header", "missing required column", required)
		}
	}

	t := &SampleTable{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "dataset: failed to read CSV record")
		}
		t.Images = append(t.Images, record[cols[ImagesColumn]])
		t.Subjects = append(t.Subjects, record[cols[SubjectColumn]])
		t.Contrasts = append(t.Contrasts, record[cols[ContrastColumn]])
	}
	return t, nil
}

// WriteCSV writes the table as CSV with an images,subject,contrast header.
func (t *SampleTable) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset: failed to create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{ImagesColumn, SubjectColumn, ContrastColumn}); err != nil {
		return errors.Wrap(err, "dataset: failed to write CSV header")
	}
	for i := range t.Images {
		row := []string{t.Images[i], t.Subjects[i], t.Contrasts[i]}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "dataset: failed to write CSV record")
		}
	}
	w.Flush()
	return errors.WithStack(w.Error())
}
