package plot

import (
	"math"

	"gonum.org/v1/plot/plotter"
)

// Fixed presentation text.
const (
	Title  = "Allan Deviation vs Averaging Time"
	XLabel = "Averaging Time (τ) [s]"
	YLabel = "Allan Deviation"
)

// BandFloor bounds the lower edge of an error band to this fraction of the
// deviation, so bands wider than the value stay drawable on a log axis.
const BandFloor = 0.01

// BandAlpha is the opacity of the error band fill.
const BandAlpha = 0.2

// Series is one column's result as handed to the plot.
type Series struct {
	Name string
	Taus []float64
	Devs []float64
	Errs []float64
}

// Trace is a drawable series: the deviation line and the closed ±error
// band around it.
type Trace struct {
	Label string
	Line  plotter.XYs
	Band  plotter.XYs
	Index int
}

// Figure describes everything drawn in one image.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Traces []Trace

	XMin, XMax float64
	YMin, YMax float64
}

// Empty reports whether the figure has no drawable points.
func (f Figure) Empty() bool {
	for _, t := range f.Traces {
		if len(t.Line) > 0 {
			return false
		}
	}
	return true
}

// NewFigure lays out series in order. Points that cannot be shown on log
// axes (non-positive or non-finite) are dropped.
func NewFigure(series []Series) Figure {
	fig := Figure{
		Title:  Title,
		XLabel: XLabel,
		YLabel: YLabel,
	}

	b := newBounds()
	for i, s := range series {
		tr := newTrace(s, i)
		if len(tr.Line) == 0 {
			continue
		}
		b.include(tr.Line)
		b.include(tr.Band)
		fig.Traces = append(fig.Traces, tr)
	}
	fig.XMin, fig.XMax, fig.YMin, fig.YMax = b.resolve()
	return fig
}

func newTrace(s Series, index int) Trace {
	n := min(len(s.Taus), len(s.Devs))
	tr := Trace{Label: s.Name, Index: index}

	var upper, lower plotter.XYs
	for k := 0; k < n; k++ {
		tau, dev := s.Taus[k], s.Devs[k]
		if !positive(tau) || !positive(dev) {
			continue
		}
		tr.Line = append(tr.Line, plotter.XY{X: tau, Y: dev})

		e := 0.0
		if k < len(s.Errs) && s.Errs[k] >= 0 && !math.IsInf(s.Errs[k], 0) {
			e = s.Errs[k]
		}
		upper = append(upper, plotter.XY{X: tau, Y: dev + e})
		lower = append(lower, plotter.XY{X: tau, Y: math.Max(dev-e, dev*BandFloor)})
	}

	if len(upper) >= 2 {
		tr.Band = make(plotter.XYs, 0, 2*len(upper))
		tr.Band = append(tr.Band, upper...)
		for k := len(lower) - 1; k >= 0; k-- {
			tr.Band = append(tr.Band, lower[k])
		}
	}
	return tr
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

type bounds struct {
	xmin, xmax, ymin, ymax float64
}

func newBounds() *bounds {
	return &bounds{
		xmin: math.Inf(1), xmax: math.Inf(-1),
		ymin: math.Inf(1), ymax: math.Inf(-1),
	}
}

func (b *bounds) include(xys plotter.XYs) {
	for _, p := range xys {
		b.xmin = math.Min(b.xmin, p.X)
		b.xmax = math.Max(b.xmax, p.X)
		b.ymin = math.Min(b.ymin, p.Y)
		b.ymax = math.Max(b.ymax, p.Y)
	}
}

// resolve returns strictly positive, non-degenerate axis ranges.
func (b *bounds) resolve() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = logRange(b.xmin, b.xmax, 1, 10)
	ymin, ymax = logRange(b.ymin, b.ymax, 0.1, 1)
	return xmin, xmax, ymin, ymax
}

func logRange(lo, hi, defLo, defHi float64) (float64, float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return defLo, defHi
	}
	if lo == hi {
		return lo / 2, hi * 2
	}
	return lo, hi
}
