package tabledata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

// Row maps a column name to the cell value of one CSV record.
type Row map[string]string

// TableModel is the in-memory representation of one parsed CSV source.
// It is replaced wholesale on every successful parse, never patched.
type TableModel struct {
	Columns []string
	Rows    []Row
}

// FilterSet maps a column name to a substring needle. Empty needles are
// ignored, and keys naming columns that no longer exist are inert.
type FilterSet map[string]string

// Orientation selects how the chart renderer lays out the bars. It is a
// pass-through for presentation and never affects the projected series.
type Orientation int

const (
	OrientationVertical Orientation = iota
	OrientationHorizontal
)

func (o Orientation) String() string {
	if o == OrientationHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Selection is the user's chart axis choice. It lives independently of
// the TableModel: either column may name a column that is not present,
// in which case projection yields empty labels and zero values.
type Selection struct {
	XColumn     string
	YColumn     string
	Orientation Orientation
}

// ChartSeries is the chart-ready projection of the filtered view.
// Coerced counts how many Y cells failed numeric parsing and were
// plotted as 0; callers can surface that to avoid silent data loss.
type ChartSeries struct {
	Labels  []string
	Values  []float64
	Coerced int
}

// Parse reads CSV from r, treating the first record as the header row.
// Fully empty lines are skipped by the reader. On any parser error
// (ragged record, unterminated quote, ...) the first error is returned
// and no model is produced, so the caller's previous model stays valid.
func Parse(r io.Reader) (*TableModel, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("csv parse: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv parse: %w", err)
	}
	// De-duplicate header names preserving first occurrence; rows are
	// keyed by name, so a duplicate could only shadow an earlier column.
	// keep marks the header indices whose cells feed the model.
	columns := make([]string, 0, len(header))
	keep := make([]bool, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, c := range header {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		keep[i] = true
		columns = append(columns, c)
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parse: %w", err)
		}
		row := make(Row, len(columns))
		for i, c := range header {
			if !keep[i] {
				continue
			}
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		// Every row carries exactly the model's columns; cells the
		// record did not provide are empty strings.
		for _, c := range columns {
			if _, ok := row[c]; !ok {
				row[c] = ""
			}
		}
		rows = append(rows, row)
	}
	return &TableModel{Columns: columns, Rows: rows}, nil
}

// ParseString parses raw pasted CSV text.
func ParseString(s string) (*TableModel, error) {
	return Parse(strings.NewReader(s))
}

// FilteredRows applies fs to tm and returns the passing rows in their
// original order. A row passes when every non-empty needle is a
// case-insensitive substring of the row's cell in that column; a
// missing cell compares as the empty string. The result is derived
// fresh on every call so it can never go stale against tm or fs.
func FilteredRows(tm *TableModel, fs FilterSet) []Row {
	if tm == nil {
		return nil
	}
	if len(fs) == 0 {
		return tm.Rows
	}
	out := make([]Row, 0, len(tm.Rows))
	for _, row := range tm.Rows {
		if rowMatches(row, fs) {
			out = append(out, row)
		}
	}
	return out
}

func rowMatches(row Row, fs FilterSet) bool {
	for col, needle := range fs {
		if needle == "" {
			continue
		}
		cell := row[col] // missing key yields "", which is intended
		if !strings.Contains(strings.ToLower(cell), strings.ToLower(needle)) {
			return false
		}
	}
	return true
}

// Project maps the filtered rows and the axis selection onto a bar
// series: labels from the X column, values from the Y column. Values
// that do not parse as a finite number become 0 rather than an error,
// keeping the chart renderable over partially non-numeric columns.
func Project(rows []Row, sel Selection) ChartSeries {
	series := ChartSeries{
		Labels: make([]string, len(rows)),
		Values: make([]float64, len(rows)),
	}
	for i, row := range rows {
		series.Labels[i] = row[sel.XColumn]
		v, ok := coerceNumeric(row[sel.YColumn])
		if !ok {
			series.Coerced++
		}
		series.Values[i] = v
	}
	return series
}

// coerceNumeric parses a cell as a float64. NaN and ±Inf parse but are
// not drawable, so they fall back to 0 like any other unusable value.
func coerceNumeric(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ColumnSummary aggregates the numeric cells of one column.
type ColumnSummary struct {
	Column string
	Count  int // cells that parsed as a finite number
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// ColumnStats summarizes the cells of col that parse as finite numbers.
// Count is 0 when the column holds no numeric data; the remaining
// fields are meaningless in that case and callers should not print them.
func ColumnStats(rows []Row, col string) ColumnSummary {
	sum := ColumnSummary{Column: col}
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := coerceNumeric(row[col]); ok {
			vals = append(vals, v)
		}
	}
	sum.Count = len(vals)
	if sum.Count == 0 {
		return sum
	}
	// stats errors only on empty input, which is excluded above.
	sum.Min, _ = stats.Min(vals)
	sum.Max, _ = stats.Max(vals)
	sum.Mean, _ = stats.Mean(vals)
	sum.Median, _ = stats.Median(vals)
	return sum
}

// FormatSummary renders a ColumnSummary as the one-line caption shown
// under the chart.
func FormatSummary(s ColumnSummary) string {
	if s.Count == 0 {
		return fmt.Sprintf("%s: no numeric values", s.Column)
	}
	return fmt.Sprintf("%s: n=%d min=%s max=%s mean=%s median=%s",
		s.Column, s.Count,
		trimFloat(s.Min), trimFloat(s.Max), trimFloat(s.Mean), trimFloat(s.Median))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
