package dataprocessing

import (
	"math"
	"slices"
)

// Column is one named column of an input table. Missing cells are NaN.
type Column struct {
	Name   string
	Values []float64

	// InvalidCells counts cells that were neither numeric nor a missing
	// value token; FirstInvalid holds the first such cell verbatim.
	InvalidCells int
	FirstInvalid string
}

// Valid reports whether every cell parsed as a number or a missing value.
func (c Column) Valid() bool {
	return c.InvalidCells == 0
}

// DropMissing returns the non-missing values in their original order.
func (c Column) DropMissing() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Table is an input table: columns addressed by header name.
type Table struct {
	headers []string
	columns map[string]*Column
	rows    int
}

// Headers returns the distinct header names in file order.
func (t *Table) Headers() []string {
	return slices.Clone(t.headers)
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	return t.rows
}

// Column looks a column up by exact header name.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.columns[name]
	if !ok {
		return Column{}, false
	}
	return *c, true
}
