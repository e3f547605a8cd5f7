package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"ipc-charts/internal/chart"
	plotTemplate "ipc-charts/internal/render/templates"
)

const FigureSuffix = "_figure.tex"

// FigureWriter writes, next to a TikZ chart, a LaTeX figure that inputs
// the chart with a caption and a label derived from its file name.
type FigureWriter struct {
	tmpl      *template.Template
	persister chart.Persister
	now       func() time.Time
}

func NewFigureWriter(persister chart.Persister) (*FigureWriter, error) {
	tmpl, err := template.New("wrapper").Parse(plotTemplate.WrapperTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wrapper template: %w", err)
	}
	return &FigureWriter{tmpl: tmpl, persister: persister, now: time.Now}, nil
}

// FigurePath returns where the figure of the chart at plotPath is written.
func FigurePath(plotPath string) string {
	return strings.TrimSuffix(plotPath, filepath.Ext(plotPath)) + FigureSuffix
}

func (w *FigureWriter) Write(a chart.Artifact) (string, error) {
	path := FigurePath(a.Path)
	base := strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))

	data := &plotTemplate.WrapperData{
		GeneratedDate: w.now().Format(time.RFC3339),
		PlotFileName:  filepath.Base(a.Path),
		ShortCaption:  escapeTeX(fmt.Sprintf("%s vs %s", a.Chart.YLabel, a.Chart.XLabel)),
		Caption:       escapeTeX(a.Chart.Title),
		Label:         "fig:" + strings.ToLower(strings.ReplaceAll(base, "_", "-")),
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return "", &chart.RenderError{Path: path, Err: fmt.Errorf("failed to execute wrapper template: %w", err)}
	}
	if err := w.persister.Persist(buf.Bytes(), path); err != nil {
		return "", &chart.RenderError{Path: path, Err: err}
	}
	return path, nil
}
