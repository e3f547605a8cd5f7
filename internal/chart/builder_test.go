package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	mu      sync.Mutex
	charts  []Chart
	failFor string
}

func (r *recordingRenderer) Render(c Chart) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor != "" && c.Title == r.failFor {
		return nil, errors.New("backend exploded")
	}
	r.charts = append(r.charts, c)
	return []byte(c.Title), nil
}

func (r *recordingRenderer) Extension() string { return ".png" }

type memoryPersister struct {
	mu       sync.Mutex
	files    map[string][]byte
	failPath string
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{files: make(map[string][]byte)}
}

func (p *memoryPersister) Persist(data []byte, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if path == p.failPath {
		return errors.New("read-only file system")
	}
	p.files[path] = data
	return nil
}

func (p *memoryPersister) paths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.files))
	for path := range p.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func cacheMissSpec(t *testing.T, filename string) *Spec {
	t.Helper()
	spec, err := NewSpec(SpecOptions{
		Prefix:           "MT25078",
		Metric:           "latency",
		XLabel:           "Message Size (bytes)",
		YLabel:           "Latency (µs)",
		TitleTemplate:    "Latency vs Message Size (Threads = {{.Held}})",
		FilenameTemplate: filename,
	})
	require.NoError(t, err)
	return spec
}

func fullDataset(t *testing.T, grid AxisGrid, strategies []Strategy) *Dataset {
	t.Helper()
	ds := NewDataset(grid)
	for hi, held := range grid.Held.Values {
		for si, s := range strategies {
			values := make([]float64, len(grid.Varying.Values))
			for vi := range values {
				values[vi] = float64(hi*100 + si*10 + vi)
			}
			require.NoError(t, ds.Add(held, s, values))
		}
	}
	return ds
}

var threeStrategies = []Strategy{"A1", "A2", "A3"}

func TestBuilder_BuildsOneChartPerThreadCount(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "{{.Prefix}}_{{.Metric}}_T{{.Held}}")

	renderer := &recordingRenderer{}
	persister := newMemoryPersister()
	b := NewBuilder(renderer, persister, WithOutputDir("out"), WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	require.NoError(t, err)
	require.Len(t, artifacts, 4)

	for i, held := range []float64{1, 2, 4, 8} {
		a := artifacts[i]
		require.Equal(t, held, a.Held)
		require.Equal(t, filepath.Join("out", fmt.Sprintf("MT25078_latency_T%v.png", held)), a.Path)
		require.Equal(t, fmt.Sprintf("Latency vs Message Size (Threads = %v)", held), a.Chart.Title)
		require.Equal(t, "Message Size (bytes)", a.Chart.XLabel)
		require.Equal(t, []float64{32, 128, 512, 2048}, a.Chart.XValues)
		require.Len(t, a.Chart.Series, 3)
		for si, s := range a.Chart.Series {
			require.Equal(t, string(threeStrategies[si]), s.Label)
			require.Len(t, s.Points, 4)
			for vi, p := range s.Points {
				require.Equal(t, grid.Varying.Values[vi], p.X)
				require.Equal(t, float64(i*100+si*10+vi), p.Y)
			}
		}
	}
	require.Len(t, persister.paths(), 4)
	require.Len(t, renderer.charts, 4)
}

func TestBuilder_EmptyStrategiesYieldEmptyCharts(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	persister := newMemoryPersister()
	b := NewBuilder(&recordingRenderer{}, persister, WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, []Strategy{})
	require.NoError(t, err)
	require.Len(t, artifacts, 4)
	for _, a := range artifacts {
		require.Empty(t, a.Chart.Series)
		require.NotEmpty(t, a.Chart.Title)
	}
	require.Len(t, persister.paths(), 4)
}

func TestBuilder_MissingSeriesAbortsWithoutWrites(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, []Strategy{"A1", "A2"})
	require.NoError(t, ds.Add(1, "A3", []float64{1, 2, 3, 4}))
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	renderer := &recordingRenderer{}
	persister := newMemoryPersister()
	b := NewBuilder(renderer, persister, WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	require.Empty(t, artifacts)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	require.Equal(t, 2.0, lookupErr.Held)
	require.Equal(t, Strategy("A3"), lookupErr.Strategy)
	require.Empty(t, persister.paths())
	require.Empty(t, renderer.charts)
}

func TestBuilder_FilenameCollision(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "{{.Prefix}}_{{.Metric}}")

	persister := newMemoryPersister()
	b := NewBuilder(&recordingRenderer{}, persister, WithLogger(quietLogger()))

	_, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Contains(t, cfgErr.Reason, "both map to")
	require.Empty(t, persister.paths())
}

func TestBuilder_ConfigurationErrors(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")
	b := NewBuilder(&recordingRenderer{}, newMemoryPersister(), WithLogger(quietLogger()))
	ctx := context.Background()

	noHeld := grid
	noHeld.Held.Values = nil

	for name, build := range map[string]func() error{
		"empty held dimension": func() error {
			_, err := b.Build(ctx, ds, noHeld, spec, threeStrategies)
			return err
		},
		"duplicate strategy": func() error {
			_, err := b.Build(ctx, ds, grid, spec, []Strategy{"A1", "A1"})
			return err
		},
		"nil spec": func() error {
			_, err := b.Build(ctx, ds, grid, nil, threeStrategies)
			return err
		},
		"nil dataset": func() error {
			_, err := b.Build(ctx, nil, grid, spec, threeStrategies)
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			var cfgErr *ConfigurationError
			require.ErrorAs(t, build(), &cfgErr)
		})
	}
}

func TestBuilder_OrderFollowsGridNotDataset(t *testing.T) {
	grid := testGrid(t)
	reversed := grid
	reversed.Held.Values = []float64{8, 4, 2, 1}

	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")
	b := NewBuilder(&recordingRenderer{}, newMemoryPersister(), WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, reversed, spec, threeStrategies)
	require.NoError(t, err)
	held := make([]float64, len(artifacts))
	for i, a := range artifacts {
		held[i] = a.Held
	}
	require.Equal(t, []float64{8, 4, 2, 1}, held)
}

func TestBuilder_Idempotent(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")
	ctx := context.Background()

	first, err := NewBuilder(&recordingRenderer{}, newMemoryPersister(), WithOutputDir("run1"), WithLogger(quietLogger())).
		Build(ctx, ds, grid, spec, threeStrategies)
	require.NoError(t, err)
	second, err := NewBuilder(&recordingRenderer{}, newMemoryPersister(), WithOutputDir("run2"), WithLogger(quietLogger())).
		Build(ctx, ds, grid, spec, threeStrategies)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Chart, second[i].Chart)
		require.Equal(t, first[i].Held, second[i].Held)
		require.NotEqual(t, first[i].Path, second[i].Path)
	}
}

func TestBuilder_RenderErrorKeepsEarlierArtifacts(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	renderer := &recordingRenderer{failFor: "Latency vs Message Size (Threads = 4)"}
	persister := newMemoryPersister()
	b := NewBuilder(renderer, persister, WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	require.Equal(t, "lat_T4.png", renderErr.Path)
	require.Len(t, artifacts, 2)
	require.Equal(t, []string{"lat_T1.png", "lat_T2.png"}, persister.paths())
}

func TestBuilder_PersistErrorCarriesPath(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	persister := newMemoryPersister()
	persister.failPath = filepath.Join("ro", "lat_T1.png")
	b := NewBuilder(&recordingRenderer{}, persister, WithOutputDir("ro"), WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	require.Equal(t, persister.failPath, renderErr.Path)
	require.EqualError(t, errors.Unwrap(err), "read-only file system")
	require.Empty(t, artifacts)
}

func TestBuilder_ParallelKeepsHeldOrder(t *testing.T) {
	held := make([]float64, 32)
	for i := range held {
		held[i] = float64(i + 1)
	}
	grid, err := NewAxisGrid(
		Dimension{Name: "msg_size", Values: []float64{32, 128, 512, 2048}},
		Dimension{Name: "threads", Values: held},
	)
	require.NoError(t, err)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	persister := newMemoryPersister()
	b := NewBuilder(&recordingRenderer{}, persister, WithParallelism(4), WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	require.NoError(t, err)
	require.Len(t, artifacts, len(held))
	for i, a := range artifacts {
		require.Equal(t, held[i], a.Held)
	}
	require.Len(t, persister.paths(), len(held))
}

func TestBuilder_ParallelCollisionWritesNothing(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "same")

	persister := newMemoryPersister()
	b := NewBuilder(&recordingRenderer{}, persister, WithParallelism(4), WithLogger(quietLogger()))

	_, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Empty(t, persister.paths())
}

func TestBuilder_ParallelRenderError(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	renderer := &recordingRenderer{failFor: "Latency vs Message Size (Threads = 2)"}
	b := NewBuilder(renderer, newMemoryPersister(), WithParallelism(2), WithLogger(quietLogger()))

	artifacts, err := b.Build(context.Background(), ds, grid, spec, threeStrategies)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	require.Equal(t, "lat_T2.png", renderErr.Path)
	for _, a := range artifacts {
		require.NotEqual(t, 2.0, a.Held)
	}
}

func TestBuilder_CanceledContext(t *testing.T) {
	grid := testGrid(t)
	ds := fullDataset(t, grid, threeStrategies)
	spec := cacheMissSpec(t, "lat_T{{.Held}}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	persister := newMemoryPersister()
	artifacts, err := NewBuilder(&recordingRenderer{}, persister, WithLogger(quietLogger())).
		Build(ctx, ds, grid, spec, threeStrategies)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, artifacts)
	require.Empty(t, persister.paths())
}
