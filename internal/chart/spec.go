package chart

import (
	"bytes"
	"strings"
	"text/template"
)

// SpecOptions is the declarative input of NewSpec.
type SpecOptions struct {
	Prefix           string
	Metric           string
	XLabel           string
	YLabel           string
	TitleTemplate    string
	FilenameTemplate string
	StrategyLabels   map[Strategy]string
}

// Spec describes one chart family. It is immutable once built.
type Spec struct {
	prefix   string
	metric   string
	xLabel   string
	yLabel   string
	title    *template.Template
	filename *template.Template
	labels   map[Strategy]string
}

type templateData struct {
	Prefix string
	Metric string
	Held   string
}

func NewSpec(opts SpecOptions) (*Spec, error) {
	if strings.TrimSpace(opts.Metric) == "" {
		return nil, configErrorf("metric name is required")
	}
	if strings.TrimSpace(opts.FilenameTemplate) == "" {
		return nil, configErrorf("metric %q: filename template is required", opts.Metric)
	}

	title, err := template.New("title").Option("missingkey=error").Parse(opts.TitleTemplate)
	if err != nil {
		return nil, configErrorf("metric %q: title template: %v", opts.Metric, err)
	}
	filename, err := template.New("filename").Option("missingkey=error").Parse(opts.FilenameTemplate)
	if err != nil {
		return nil, configErrorf("metric %q: filename template: %v", opts.Metric, err)
	}

	labels := make(map[Strategy]string, len(opts.StrategyLabels))
	for s, l := range opts.StrategyLabels {
		labels[s] = l
	}

	return &Spec{
		prefix:   opts.Prefix,
		metric:   opts.Metric,
		xLabel:   opts.XLabel,
		yLabel:   opts.YLabel,
		title:    title,
		filename: filename,
		labels:   labels,
	}, nil
}

func (s *Spec) Metric() string { return s.metric }
func (s *Spec) XLabel() string { return s.xLabel }
func (s *Spec) YLabel() string { return s.yLabel }

func (s *Spec) TitleFor(held float64) (string, error) {
	return s.expand(s.title, held)
}

// FilenameFor returns the artifact base name for a held value, without
// directory or extension.
func (s *Spec) FilenameFor(held float64) (string, error) {
	name, err := s.expand(s.filename, held)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", configErrorf("metric %q: filename template expands to an empty name for held value %s", s.metric, formatValue(held))
	}
	return name, nil
}

// LabelFor returns the legend text of a strategy.
func (s *Spec) LabelFor(strategy Strategy) string {
	if l, ok := s.labels[strategy]; ok && l != "" {
		return l
	}
	return string(strategy)
}

func (s *Spec) expand(tmpl *template.Template, held float64) (string, error) {
	var buf bytes.Buffer
	data := templateData{Prefix: s.prefix, Metric: s.metric, Held: formatValue(held)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", configErrorf("metric %q: %s template: %v", s.metric, tmpl.Name(), err)
	}
	return buf.String(), nil
}
