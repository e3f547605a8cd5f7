package render

import (
	"bytes"
	"fmt"
	"image/color"

	"ipc-charts/internal/chart"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	DefaultDPI          = 300
	DefaultWidthInches  = 7.0
	DefaultHeightInches = 5.0
)

type PNGOptions struct {
	DPI          int
	WidthInches  float64
	HeightInches float64
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.WidthInches <= 0 {
		o.WidthInches = DefaultWidthInches
	}
	if o.HeightInches <= 0 {
		o.HeightInches = DefaultHeightInches
	}
	return o
}

// PNGRenderer draws line charts with gonum/plot and rasterizes them to PNG.
type PNGRenderer struct {
	opts PNGOptions
}

func NewPNGRenderer(opts PNGOptions) *PNGRenderer {
	return &PNGRenderer{opts: opts.withDefaults()}
}

func (r *PNGRenderer) Extension() string {
	return ".png"
}

func (r *PNGRenderer) Render(c chart.Chart) ([]byte, error) {
	p, err := r.newPlot(c)
	if err != nil {
		return nil, err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) newPlot(c chart.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = color.White
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Title.Padding = vg.Points(10)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = vg.Points(8)
	p.Legend.YOffs = vg.Points(-8)

	p.Add(plotter.NewGrid())

	ticks := make([]plot.Tick, len(c.XValues))
	for i, x := range c.XValues {
		ticks[i] = plot.Tick{Value: x, Label: formatCoordinate(x)}
	}
	if len(ticks) > 0 {
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
		p.X.Min, p.X.Max = bounds(c.XValues)
	}

	for i, s := range c.Series {
		pts := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			pts[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		line.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		points.Color = line.Color
		p.Add(line, points)
		p.Legend.Add(s.Label, line, points)
	}

	return p, nil
}
