package config

import "sort"

type ReportConfig struct {
	Report     ReportInfo                 `yaml:"report"`
	Strategies []StrategyConfig           `yaml:"strategies"`
	Dimensions map[string]DimensionConfig `yaml:"dimensions"`
	Families   map[string]FamilyConfig    `yaml:"families"`
}

type ReportInfo struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Prefix       string  `yaml:"prefix"`
	OutputDir    string  `yaml:"output_dir"`
	Format       string  `yaml:"format"`
	DPI          int     `yaml:"dpi"`
	WidthInches  float64 `yaml:"width_in"`
	HeightInches float64 `yaml:"height_in"`
	Parallelism  int     `yaml:"parallelism"`
	LogLevel     string  `yaml:"log_level"`
	Manifest     bool    `yaml:"manifest"`
	Figures      bool    `yaml:"figures"`
}

type StrategyConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type DimensionConfig struct {
	Label  string    `yaml:"label"`
	Values []float64 `yaml:"values"`
}

// FamilyConfig describes one chart matrix: a metric plotted along the
// varying dimension, one chart per value of the held dimension.
type FamilyConfig struct {
	KeyName  string `yaml:"-"`
	Metric   string `yaml:"metric"`
	Varying  string `yaml:"varying"`
	Held     string `yaml:"held"`
	YLabel   string `yaml:"y_label"`
	Title    string `yaml:"title"`
	Filename string `yaml:"filename"`

	// Strategies restricts and orders the plotted strategies. Nil plots
	// every report strategy; an empty list yields empty charts.
	Strategies []string `yaml:"strategies"`

	Source SourceConfig `yaml:"source"`

	// Data maps held value -> strategy id -> one sample per varying value.
	Data map[string]map[string][]float64 `yaml:"data,omitempty"`
}

type SourceType string

const (
	SourceInline   SourceType = "inline"
	SourceSQLite   SourceType = "sqlite"
	SourceInfluxDB SourceType = "influxdb"
	SourceSpool    SourceType = "spool"
)

type SourceConfig struct {
	Type        SourceType `yaml:"type"`
	Path        string     `yaml:"path,omitempty"`
	Measurement string     `yaml:"measurement,omitempty"`
}

// GetFamiliesSorted returns the families ordered by key name.
func (c *ReportConfig) GetFamiliesSorted() []FamilyConfig {
	families := make([]FamilyConfig, 0, len(c.Families))
	for _, f := range c.Families {
		families = append(families, f)
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].KeyName < families[j].KeyName
	})
	return families
}

// StrategyIDs returns the strategies a family plots, in legend order.
func (c *ReportConfig) StrategyIDs(f FamilyConfig) []string {
	if f.Strategies != nil {
		return append([]string{}, f.Strategies...)
	}
	ids := make([]string, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		ids = append(ids, s.ID)
	}
	return ids
}

func (c *ReportConfig) StrategyLabels() map[string]string {
	labels := make(map[string]string, len(c.Strategies))
	for _, s := range c.Strategies {
		labels[s.ID] = s.Label
	}
	return labels
}
