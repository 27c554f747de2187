package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// Record is one labeled value of the bubble chart.
type Record struct {
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// RowError reports a data row that could not be used.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e RowError) Unwrap() error { return e.Err }

// ReadRecords reads CSV rows with a header. Columns picks the label,
// category and value columns by header name. Rows whose value does not
// parse are returned as RowErrors and left out; a header missing one of
// the columns fails the whole read.
func ReadRecords(r io.Reader, cols scene.Columns) ([]Record, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "csv is empty")
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}
	idx, err := columnIndex(header, cols)
	if err != nil {
		return nil, nil, err
	}

	var records []Record
	var skipped []RowError
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv")
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, idx)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// ReadRecordsFile reads a CSV file.
func ReadRecordsFile(path string, cols scene.Columns) ([]Record, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadRecords(f, cols)
}

type columns struct{ label, category, value int }

func columnIndex(header []string, cols scene.Columns) (columns, error) {
	find := func(name string) (int, error) {
		for i, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
				return i, nil
			}
		}
		return 0, errors.New(errors.ErrCodeInvalidInput, "csv header has no column %q", name)
	}
	var c columns
	var err error
	if c.label, err = find(cols.Label); err != nil {
		return c, err
	}
	if c.category, err = find(cols.Category); err != nil {
		return c, err
	}
	if c.value, err = find(cols.Value); err != nil {
		return c, err
	}
	return c, nil
}

func parseRow(row []string, c columns) (Record, error) {
	for _, i := range []int{c.label, c.category, c.value} {
		if i >= len(row) {
			return Record{}, errors.New(errors.ErrCodeInvalidInput, "row has %d fields", len(row))
		}
	}
	raw := strings.ReplaceAll(strings.TrimSpace(row[c.value]), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "value %q", row[c.value])
	}
	if err := errors.ValidateNonNegative("value", v); err != nil {
		return Record{}, err
	}
	return Record{
		Label:    strings.TrimSpace(row[c.label]),
		Category: strings.TrimSpace(row[c.category]),
		Value:    v,
	}, nil
}

// Categories returns the distinct categories in first-seen order.
func Categories(records []Record) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}
