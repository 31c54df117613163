// Package dataset holds the parsed tabular data the summarizer works on and the
// descriptive statistics derived from it.
package dataset

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
)

// Cell is one value of a row. A missing cell has no value.
type Cell struct {
	Value   string `json:"v,omitempty"`
	Missing bool   `json:"m,omitempty"`
}

func Value(v string) Cell {
	return Cell{Value: v}
}

func Missing() Cell {
	return Cell{Missing: true}
}

// Float reports the numeric value of the cell, if it has one.
func (c Cell) Float() (float64, bool) {
	if c.Missing {
		return 0, false
	}
	trimmed := strings.TrimSpace(c.Value)
	if trimmed == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(trimmed)
	if err != nil {
		return 0, false
	}
	return f, true
}

type Dataset struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// New builds a dataset and checks that it is structurally sound.
func New(columns []string, rows [][]Cell) (*Dataset, error) {
	d := &Dataset{Columns: columns, Rows: rows}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate rejects ragged rows and duplicate column names. Zero rows or zero columns are valid.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Columns))
	for _, name := range d.Columns {
		if _, dup := seen[name]; dup {
			return outcome.InvalidInput("列名重复: %q", name)
		}
		seen[name] = struct{}{}
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return outcome.InvalidInput("第 %d 行有 %d 个值, 但数据有 %d 列", i+1, len(row), len(d.Columns))
		}
	}
	return nil
}

func (d *Dataset) Shape() (rows, columns int) {
	return len(d.Rows), len(d.Columns)
}

func (d *Dataset) Empty() bool {
	return len(d.Rows) == 0 || len(d.Columns) == 0
}

func (d *Dataset) MissingCount() int {
	missing := 0
	for _, row := range d.Rows {
		for _, cell := range row {
			if cell.Missing {
				missing++
			}
		}
	}
	return missing
}

// MissingRate is missing cells over total cells, 0 for an empty dataset.
func (d *Dataset) MissingRate() float64 {
	rows, cols := d.Shape()
	if rows == 0 || cols == 0 {
		return 0
	}
	return float64(d.MissingCount()) / float64(rows*cols)
}

// Head returns a dataset sharing the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return &Dataset{Columns: d.Columns, Rows: d.Rows[:n]}
}

// Column returns the cells of column i.
func (d *Dataset) Column(i int) []Cell {
	out := make([]Cell, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row[i]
	}
	return out
}

// IsNumeric reports whether every present value of column i parses as a number.
// A column with no present values counts as numeric.
func (d *Dataset) IsNumeric(i int) bool {
	for _, row := range d.Rows {
		if row[i].Missing {
			continue
		}
		if _, ok := row[i].Float(); !ok {
			return false
		}
	}
	return true
}

// NumericColumns lists the indexes of numeric columns in column order.
func (d *Dataset) NumericColumns() []int {
	var idx []int
	for i := range d.Columns {
		if d.IsNumeric(i) {
			idx = append(idx, i)
		}
	}
	return idx
}
