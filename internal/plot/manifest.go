package plot

import (
	"encoding/json"
	"time"

	"ipc-charts/internal/chart"
)

const ManifestFileName = "manifest.json"

// Manifest records every chart of a run together with the inputs it was
// rendered from.
type Manifest struct {
	Version   int              `json:"version"`
	Report    string           `json:"report"`
	CreatedAt time.Time        `json:"created_at"`
	Families  []ManifestFamily `json:"families"`

	// ConfigContent is the report file the charts were rendered from.
	ConfigContent string `json:"config_content,omitempty"`
}

type ManifestFamily struct {
	Family    string          `json:"family"`
	Metric    string          `json:"metric"`
	Artifacts []ManifestChart `json:"artifacts"`
}

type ManifestChart struct {
	Path    string           `json:"path"`
	Figure  string           `json:"figure,omitempty"`
	Held    float64          `json:"held"`
	Title   string           `json:"title"`
	XLabel  string           `json:"x_label"`
	YLabel  string           `json:"y_label"`
	XValues []float64        `json:"x_values"`
	Series  []ManifestSeries `json:"series"`
}

type ManifestSeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

func BuildManifest(report string, results []*FamilyResult) *Manifest {
	m := &Manifest{
		Version:   1,
		Report:    report,
		CreatedAt: time.Now().UTC(),
		Families:  make([]ManifestFamily, 0, len(results)),
	}
	for _, r := range results {
		family := ManifestFamily{
			Family:    r.Family,
			Metric:    r.Metric,
			Artifacts: make([]ManifestChart, 0, len(r.Artifacts)),
		}
		for i, a := range r.Artifacts {
			mc := manifestChart(a)
			if i < len(r.Figures) {
				mc.Figure = r.Figures[i]
			}
			family.Artifacts = append(family.Artifacts, mc)
		}
		m.Families = append(m.Families, family)
	}
	return m
}

func manifestChart(a chart.Artifact) ManifestChart {
	mc := ManifestChart{
		Path:    a.Path,
		Held:    a.Held,
		Title:   a.Chart.Title,
		XLabel:  a.Chart.XLabel,
		YLabel:  a.Chart.YLabel,
		XValues: a.Chart.XValues,
		Series:  make([]ManifestSeries, 0, len(a.Chart.Series)),
	}
	for _, s := range a.Chart.Series {
		values := make([]float64, len(s.Points))
		for i, p := range s.Points {
			values[i] = p.Y
		}
		mc.Series = append(mc.Series, ManifestSeries{Label: s.Label, Values: values})
	}
	return mc
}

// WriteManifest encodes m and hands it to persister.
func WriteManifest(persister chart.Persister, path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return persister.Persist(append(data, '\n'), path)
}
