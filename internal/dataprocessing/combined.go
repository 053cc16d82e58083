package dataprocessing

import (
	"math"
	"slices"
	"sort"

	"github.com/alejandrokeller/allan-plot/internal/allan"
	"github.com/alejandrokeller/allan-plot/internal/exporter"
)

// Header suffixes of the per-column error and sample count columns.
const (
	ErrSuffix   = "_err"
	CountSuffix = "_n"
	TauHeader   = "tau"
)

// tauTolerance is the relative difference under which two taus are equal.
const tauTolerance = 1e-9

type resultColumn struct {
	devs []float64
	errs []float64
	// ns holds -1 where the column has no point at that tau.
	ns []int
}

// CombinedTable is the per-file output table: one row per tau of the first
// added result, then value, error and count columns per added name.
type CombinedTable struct {
	taus    []float64
	names   []string
	columns map[string]*resultColumn
}

// NewCombinedTable returns an empty table.
func NewCombinedTable() *CombinedTable {
	return &CombinedTable{columns: make(map[string]*resultColumn)}
}

// Add merges r under name. The first call fixes the tau column. Later
// results are aligned to it by tau value: taus r lacks are left missing and
// taus only r has are dropped. The number of dropped points is returned.
// Adding an existing name replaces its values in place.
func (t *CombinedTable) Add(name string, r allan.Result) int {
	if t.taus == nil {
		t.taus = slices.Clone(r.Taus)
	}

	col := &resultColumn{
		devs: make([]float64, len(t.taus)),
		errs: make([]float64, len(t.taus)),
		ns:   make([]int, len(t.taus)),
	}
	for i := range t.taus {
		col.devs[i] = math.NaN()
		col.errs[i] = math.NaN()
		col.ns[i] = -1
	}

	dropped := 0
	for j, tau := range r.Taus {
		i, ok := t.indexOf(tau)
		if !ok {
			dropped++
			continue
		}
		col.devs[i] = r.Devs[j]
		col.errs[i] = r.Errs[j]
		col.ns[i] = r.Ns[j]
	}

	if _, exists := t.columns[name]; !exists {
		t.names = append(t.names, name)
	}
	t.columns[name] = col
	return dropped
}

func (t *CombinedTable) indexOf(tau float64) (int, bool) {
	i := sort.SearchFloat64s(t.taus, tau*(1-tauTolerance))
	if i < len(t.taus) && math.Abs(t.taus[i]-tau) <= tauTolerance*math.Abs(tau) {
		return i, true
	}
	return 0, false
}

// Empty reports whether no result was added.
func (t *CombinedTable) Empty() bool {
	return len(t.names) == 0
}

// Len returns the number of rows.
func (t *CombinedTable) Len() int {
	return len(t.taus)
}

// Names returns the added column names in the order they were first added.
func (t *CombinedTable) Names() []string {
	return slices.Clone(t.names)
}

// Headers returns tau followed by <name>, <name>_err, <name>_n per column.
func (t *CombinedTable) Headers() []string {
	headers := make([]string, 0, 1+3*len(t.names))
	headers = append(headers, TauHeader)
	for _, name := range t.names {
		headers = append(headers, name, name+ErrSuffix, name+CountSuffix)
	}
	return headers
}

// Records renders the rows as strings. Missing points are empty cells.
func (t *CombinedTable) Records() [][]string {
	records := make([][]string, len(t.taus))
	for i, tau := range t.taus {
		row := make([]string, 0, 1+3*len(t.names))
		row = append(row, exporter.FormatFloat(tau))
		for _, name := range t.names {
			col := t.columns[name]
			n := ""
			if col.ns[i] >= 0 {
				n = exporter.FormatCount(col.ns[i])
			}
			row = append(row, exporter.FormatFloat(col.devs[i]), exporter.FormatFloat(col.errs[i]), n)
		}
		records[i] = row
	}
	return records
}
