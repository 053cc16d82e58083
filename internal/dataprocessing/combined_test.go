package dataprocessing

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrokeller/allan-plot/internal/allan"
)

func result(taus []float64, ns []int) allan.Result {
	r := allan.Result{Taus: taus, Ns: ns}
	for _, tau := range taus {
		r.Devs = append(r.Devs, tau/10)
		r.Errs = append(r.Errs, tau/100)
	}
	return r
}

func TestCombinedTable_Headers(t *testing.T) {
	table := NewCombinedTable()
	assert.True(t, table.Empty())
	assert.Equal(t, []string{"tau"}, table.Headers())

	table.Add("a", result([]float64{1, 2}, []int{9, 4}))
	table.Add("b", result([]float64{1, 2}, []int{9, 4}))

	assert.False(t, table.Empty())
	assert.Equal(t, []string{"tau", "a", "a_err", "a_n", "b", "b_err", "b_n"}, table.Headers())
	assert.Equal(t, []string{"a", "b"}, table.Names())
	assert.Equal(t, [][]string{
		{"1", "0.1", "0.01", "9", "0.1", "0.01", "9"},
		{"2", "0.2", "0.02", "4", "0.2", "0.02", "4"},
	}, table.Records())
}

func TestCombinedTable_FirstColumnFixesTau(t *testing.T) {
	table := NewCombinedTable()
	table.Add("a", result([]float64{1, 2, 4}, []int{9, 7, 3}))

	// a shorter column lacks the last tau
	dropped := table.Add("b", result([]float64{1, 2}, []int{7, 5}))
	assert.Equal(t, 0, dropped)

	records := table.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "0.1", "0.01", "9", "0.1", "0.01", "7"}, records[0])
	assert.Equal(t, []string{"4", "0.4", "0.04", "3", "", "", ""}, records[2])

	// taus the first column lacks are dropped
	dropped = table.Add("c", result([]float64{1, 2, 4, 8}, []int{20, 18, 14, 6}))
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, table.Len())
}

func TestCombinedTable_ReplaceKeepsPosition(t *testing.T) {
	table := NewCombinedTable()
	table.Add("a", result([]float64{1}, []int{9}))
	table.Add("b", result([]float64{1}, []int{9}))
	table.Add("a", allan.Result{Taus: []float64{1}, Devs: []float64{5}, Errs: []float64{1}, Ns: []int{3}})

	assert.Equal(t, []string{"a", "b"}, table.Names())
	assert.Equal(t, [][]string{{"1", "5", "1", "3", "0.1", "0.01", "9"}}, table.Records())
}

func TestCombinedTable_TauStrictlyIncreasing(t *testing.T) {
	series := make([]float64, 300)
	for i := range series {
		series[i] = math.Sin(float64(i) / 7)
	}

	for _, policy := range []allan.TauPolicy{allan.TauAll, allan.TauOctave, allan.TauDecade} {
		res, err := allan.Compute(series, 1, allan.Overlapping, policy)
		require.NoError(t, err)

		table := NewCombinedTable()
		table.Add("s", res)

		records := table.Records()
		require.Len(t, records, res.Len())
		prev := 0.0
		for i, record := range records {
			require.Len(t, record, len(table.Headers()))
			tau, err := strconv.ParseFloat(record[0], 64)
			require.NoError(t, err)
			assert.Greater(t, tau, prev, "policy %s row %d", policy, i)
			prev = tau
		}
	}
}
