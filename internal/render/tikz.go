package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"ipc-charts/internal/chart"
	plotTemplate "ipc-charts/internal/render/templates"
)

// TikZRenderer emits a pgfplots picture that can be \input into a LaTeX
// document.
type TikZRenderer struct {
	tmpl *template.Template
	now  func() time.Time
}

func NewTikZRenderer() (*TikZRenderer, error) {
	tmpl, err := template.New("plot").Parse(plotTemplate.PlotTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plot template: %w", err)
	}
	return &TikZRenderer{tmpl: tmpl, now: time.Now}, nil
}

func (r *TikZRenderer) Extension() string {
	return ".tikz"
}

func (r *TikZRenderer) Render(c chart.Chart) ([]byte, error) {
	data := r.preparePlotData(c)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute plot template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *TikZRenderer) preparePlotData(c chart.Chart) *plotTemplate.PlotData {
	xMin, xMax := bounds(c.XValues)

	ticks := make([]string, len(c.XValues))
	for i, x := range c.XValues {
		ticks[i] = formatCoordinate(x)
	}

	plots := make([]plotTemplate.PlotSeries, 0, len(c.Series))
	for idx, s := range c.Series {
		series := plotTemplate.PlotSeries{
			Style:       GetSeriesStyle(idx).ToTikzOptions(),
			LegendEntry: escapeTeX(s.Label),
			Coordinates: make([]string, 0, len(s.Points)),
		}
		for _, p := range s.Points {
			series.Coordinates = append(series.Coordinates,
				fmt.Sprintf("(%s,%s)", formatCoordinate(p.X), formatCoordinate(p.Y)))
		}
		plots = append(plots, series)
	}

	return &plotTemplate.PlotData{
		GeneratedDate: r.now().Format(time.RFC3339),
		Title:         escapeTeX(c.Title),
		XLabel:        escapeTeX(c.XLabel),
		YLabel:        escapeTeX(c.YLabel),
		XMin:          formatCoordinate(xMin),
		XMax:          formatCoordinate(xMax),
		XTicks:        strings.Join(ticks, ","),
		Plots:         plots,
	}
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
	`^`, `\^{}`,
	`~`, `\~{}`,
	`µ`, `$\mu$`,
)

func escapeTeX(s string) string {
	return texReplacer.Replace(s)
}
