package chart

import (
	"context"
	"path/filepath"

	"ipc-charts/internal/logging"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Point struct {
	X float64
	Y float64
}

type Series struct {
	Label  string
	Points []Point
}

// Chart is the complete set of rendering inputs for one artifact.
type Chart struct {
	Title   string
	XLabel  string
	YLabel  string
	XValues []float64
	Series  []Series
}

// Artifact is a chart written to Path for one held value.
type Artifact struct {
	Path  string
	Held  float64
	Chart Chart
}

// Renderer draws a chart and rasterizes it.
type Renderer interface {
	Render(c Chart) ([]byte, error)
	Extension() string
}

// Persister writes rendered bytes to path, releasing the file on every
// exit path.
type Persister interface {
	Persist(data []byte, path string) error
}

type Option func(*Builder)

func WithOutputDir(dir string) Option {
	return func(b *Builder) { b.outputDir = dir }
}

// WithParallelism bounds the number of charts rendered concurrently.
// Values below 2 keep the build sequential.
func WithParallelism(n int) Option {
	return func(b *Builder) { b.parallelism = n }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// Builder produces one chart per held value for a single metric. It keeps
// no state between builds.
type Builder struct {
	renderer    Renderer
	persister   Persister
	outputDir   string
	parallelism int
	logger      *logrus.Logger
}

func NewBuilder(renderer Renderer, persister Persister, opts ...Option) *Builder {
	b := &Builder{
		renderer:    renderer,
		persister:   persister,
		outputDir:   ".",
		parallelism: 1,
		logger:      logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type plannedChart struct {
	held  float64
	path  string
	chart Chart
}

// Build renders the chart matrix of spec over grid. Configuration and
// lookup problems are reported before anything is written. On a render
// failure the artifacts already persisted are returned with the error.
func (b *Builder) Build(ctx context.Context, ds *Dataset, grid AxisGrid, spec *Spec, strategies []Strategy) ([]Artifact, error) {
	if ds == nil {
		return nil, configErrorf("dataset is nil")
	}
	if spec == nil {
		return nil, configErrorf("chart spec is nil")
	}
	if len(grid.Held.Values) == 0 {
		return nil, configErrorf("metric %q: held dimension %q has no values", spec.Metric(), grid.Held.Name)
	}
	if len(grid.Varying.Values) == 0 {
		return nil, configErrorf("metric %q: varying dimension %q has no values", spec.Metric(), grid.Varying.Name)
	}

	seen := make(map[Strategy]bool, len(strategies))
	for _, s := range strategies {
		if seen[s] {
			return nil, configErrorf("metric %q: strategy %q listed twice", spec.Metric(), s)
		}
		seen[s] = true
	}

	paths, err := b.artifactPaths(grid, spec)
	if err != nil {
		return nil, err
	}

	plan := make([]plannedChart, 0, len(grid.Held.Values))
	for i, held := range grid.Held.Values {
		c, err := b.assemble(ds, grid, spec, strategies, held)
		if err != nil {
			return nil, err
		}
		plan = append(plan, plannedChart{held: held, path: paths[i], chart: c})
	}

	b.logger.WithFields(logrus.Fields{
		"metric":     spec.Metric(),
		"held":       grid.Held.Name,
		"charts":     len(plan),
		"strategies": len(strategies),
	}).Info("Rendering chart matrix")

	if b.parallelism > 1 {
		return b.emitParallel(ctx, plan)
	}
	return b.emitSequential(ctx, plan)
}

// artifactPaths expands the filename template for every held value and
// rejects collisions.
func (b *Builder) artifactPaths(grid AxisGrid, spec *Spec) ([]string, error) {
	ext := b.renderer.Extension()
	owner := make(map[string]float64, len(grid.Held.Values))
	paths := make([]string, 0, len(grid.Held.Values))
	for _, held := range grid.Held.Values {
		name, err := spec.FilenameFor(held)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(b.outputDir, name+ext)
		if prev, dup := owner[path]; dup {
			return nil, configErrorf("metric %q: held values %s and %s both map to %s",
				spec.Metric(), formatValue(prev), formatValue(held), path)
		}
		owner[path] = held
		paths = append(paths, path)
	}
	return paths, nil
}

func (b *Builder) assemble(ds *Dataset, grid AxisGrid, spec *Spec, strategies []Strategy, held float64) (Chart, error) {
	title, err := spec.TitleFor(held)
	if err != nil {
		return Chart{}, err
	}

	c := Chart{
		Title:   title,
		XLabel:  spec.XLabel(),
		YLabel:  spec.YLabel(),
		XValues: append([]float64(nil), grid.Varying.Values...),
		Series:  make([]Series, 0, len(strategies)),
	}
	for _, s := range strategies {
		values, err := ds.SeriesFor(held, s)
		if err != nil {
			return Chart{}, err
		}
		if len(values) != len(grid.Varying.Values) {
			return Chart{}, configErrorf("metric %q: strategy %q at %s has %d samples for %d %s values",
				spec.Metric(), s, formatValue(held), len(values), len(grid.Varying.Values), grid.Varying.Name)
		}
		points := make([]Point, len(values))
		for i, v := range values {
			points[i] = Point{X: grid.Varying.Values[i], Y: v}
		}
		c.Series = append(c.Series, Series{Label: spec.LabelFor(s), Points: points})
	}
	return c, nil
}

func (b *Builder) emit(p plannedChart) (Artifact, error) {
	data, err := b.renderer.Render(p.chart)
	if err != nil {
		return Artifact{}, &RenderError{Path: p.path, Err: err}
	}
	if err := b.persister.Persist(data, p.path); err != nil {
		return Artifact{}, &RenderError{Path: p.path, Err: err}
	}
	b.logger.WithFields(logrus.Fields{
		"path":   p.path,
		"series": len(p.chart.Series),
		"bytes":  len(data),
	}).Debug("Chart written")
	return Artifact{Path: p.path, Held: p.held, Chart: p.chart}, nil
}

func (b *Builder) emitSequential(ctx context.Context, plan []plannedChart) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(plan))
	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}
		a, err := b.emit(p)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

func (b *Builder) emitParallel(ctx context.Context, plan []plannedChart) ([]Artifact, error) {
	results := make([]*Artifact, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, p := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := b.emit(p)
			if err != nil {
				return err
			}
			results[i] = &a
			return nil
		})
	}
	err := g.Wait()

	artifacts := make([]Artifact, 0, len(plan))
	for _, a := range results {
		if a != nil {
			artifacts = append(artifacts, *a)
		}
	}
	return artifacts, err
}
