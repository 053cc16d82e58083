package plot

import (
	"fmt"
	"image/color"
	"os"

	gonum "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Renderer writes a figure to an image file.
type Renderer interface {
	Render(fig Figure, path string) error
}

// PNGRenderer renders figures as PNG images of a fixed size.
type PNGRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer returns a renderer producing 10x6 inch images.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
}

// Render draws fig and writes it to path. The file is closed on every path
// out of the call.
func Render(fig Figure, path string) error {
	return NewPNGRenderer().Render(fig, path)
}

// Render implements Renderer.
func (r *PNGRenderer) Render(fig Figure, path string) error {
	p, err := build(fig)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to create canvas: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := wt.WriteTo(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func build(fig Figure) (*gonum.Plot, error) {
	p := gonum.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	p.X.Scale = gonum.LogScale{}
	p.Y.Scale = gonum.LogScale{}
	p.X.Tick.Marker = gonum.LogTicks{Prec: -1}
	p.Y.Tick.Marker = gonum.LogTicks{Prec: -1}
	grid := plotter.NewGrid()
	gridColor := color.NRGBA{A: 128}
	dashes := []vg.Length{vg.Points(4), vg.Points(3)}
	grid.Vertical.Color, grid.Horizontal.Color = gridColor, gridColor
	grid.Vertical.Dashes, grid.Horizontal.Dashes = dashes, dashes
	p.Add(grid)

	for _, tr := range fig.Traces {
		c := plotutil.Color(tr.Index)

		if len(tr.Band) > 0 {
			band, err := plotter.NewPolygon(tr.Band)
			if err != nil {
				return nil, fmt.Errorf("failed to build error band for %q: %w", tr.Label, err)
			}
			band.Color = withAlpha(c, BandAlpha)
			band.LineStyle.Width = 0
			p.Add(band)
		}

		line, err := plotter.NewLine(tr.Line)
		if err != nil {
			return nil, fmt.Errorf("failed to build line for %q: %w", tr.Label, err)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(tr.Label, line)
	}

	p.Legend.Top = true

	// Add widens the axes to the plotted data; pin them to the figure bounds.
	p.X.Min, p.X.Max = fig.XMin, fig.XMax
	p.Y.Min, p.Y.Max = fig.YMin, fig.YMax
	return p, nil
}

func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(alpha * 255),
	}
}
