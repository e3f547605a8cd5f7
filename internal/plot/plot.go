package plot

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"ipc-charts/internal/chart"
	"ipc-charts/internal/config"
	"ipc-charts/internal/database"
	"ipc-charts/internal/logging"
	"ipc-charts/internal/render"

	"github.com/sirupsen/logrus"
)

// Options override report settings from the command line or environment.
// Zero values keep the report's own setting.
type Options struct {
	OutputDir   string
	Format      string
	Parallelism int
	Manifest    bool
	Figures     bool
	InfluxDB    config.InfluxDBConfig

	// ConfigContent is the raw report, recorded in the manifest.
	ConfigContent string
}

// FamilyResult is the chart matrix produced for one family.
type FamilyResult struct {
	Family    string
	Metric    string
	Artifacts []chart.Artifact
	// Figures holds the LaTeX figure written for each artifact, if any.
	Figures []string
}

type PlotManager struct {
	config    *config.ReportConfig
	renderer  chart.Renderer
	persister chart.Persister
	outputDir string
	parallel  int
	manifest  bool
	content   string
	figures   *render.FigureWriter
	influxDB  config.InfluxDBConfig
	logger    *logrus.Logger

	openStore func(src config.SourceConfig) (database.SampleStore, error)
}

func NewPlotManager(cfg *config.ReportConfig, opts Options) (*PlotManager, error) {
	logger := logging.GetLogger()

	formatName := cfg.Report.Format
	if opts.Format != "" {
		formatName = opts.Format
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	renderer, err := render.NewRenderer(format, render.PNGOptions{
		DPI:          cfg.Report.DPI,
		WidthInches:  cfg.Report.WidthInches,
		HeightInches: cfg.Report.HeightInches,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	persister := render.NewFilePersister()
	pm := &PlotManager{
		config:    cfg,
		renderer:  renderer,
		persister: persister,
		outputDir: cfg.Report.OutputDir,
		parallel:  cfg.Report.Parallelism,
		manifest:  cfg.Report.Manifest || opts.Manifest,
		content:   opts.ConfigContent,
		influxDB:  opts.InfluxDB,
		logger:    logger,
	}
	if opts.OutputDir != "" {
		pm.outputDir = opts.OutputDir
	}
	if opts.Parallelism > 0 {
		pm.parallel = opts.Parallelism
	}
	if cfg.Report.Figures || opts.Figures {
		if format != render.FormatTikZ {
			return nil, fmt.Errorf("figure wrappers require tikz output, format is %s", format)
		}
		pm.figures, err = render.NewFigureWriter(persister)
		if err != nil {
			return nil, err
		}
	}
	pm.openStore = pm.defaultOpenStore
	return pm, nil
}

func (pm *PlotManager) OutputDir() string {
	return pm.outputDir
}

func (pm *PlotManager) family(name string) (config.FamilyConfig, error) {
	f, ok := pm.config.Families[name]
	if !ok {
		return config.FamilyConfig{}, fmt.Errorf("unknown chart family %q", name)
	}
	return f, nil
}

// Grid builds the axis grid of a family from the report dimensions.
func (pm *PlotManager) Grid(f config.FamilyConfig) (chart.AxisGrid, error) {
	varying := pm.config.Dimensions[f.Varying]
	held := pm.config.Dimensions[f.Held]
	return chart.NewAxisGrid(
		chart.Dimension{Name: f.Varying, Label: varying.Label, Values: varying.Values},
		chart.Dimension{Name: f.Held, Label: held.Label, Values: held.Values},
	)
}

func (pm *PlotManager) Spec(f config.FamilyConfig) (*chart.Spec, error) {
	labels := make(map[chart.Strategy]string)
	for id, label := range pm.config.StrategyLabels() {
		labels[chart.Strategy(id)] = label
	}
	return chart.NewSpec(chart.SpecOptions{
		Prefix:           pm.config.Report.Prefix,
		Metric:           f.Metric,
		XLabel:           pm.config.Dimensions[f.Varying].Label,
		YLabel:           f.YLabel,
		TitleTemplate:    f.Title,
		FilenameTemplate: f.Filename,
		StrategyLabels:   labels,
	})
}

func (pm *PlotManager) strategies(f config.FamilyConfig) []chart.Strategy {
	ids := pm.config.StrategyIDs(f)
	out := make([]chart.Strategy, len(ids))
	for i, id := range ids {
		out[i] = chart.Strategy(id)
	}
	return out
}

// Dataset loads the samples of a family from its configured source.
func (pm *PlotManager) Dataset(ctx context.Context, f config.FamilyConfig, grid chart.AxisGrid) (*chart.Dataset, error) {
	if f.Source.Type == config.SourceInline {
		return inlineDataset(f, grid)
	}

	store, err := pm.openStore(f.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", f.Source.Type, err)
	}
	defer store.Close()

	samples, err := store.QuerySamples(ctx, f.Metric)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples for %s: %w", f.Metric, err)
	}
	pm.logger.WithFields(logrus.Fields{
		"family":  f.KeyName,
		"source":  f.Source.Type,
		"samples": len(samples),
	}).Debug("Loaded samples")
	return database.AssembleDataset(grid, samples, pm.logger)
}

func inlineDataset(f config.FamilyConfig, grid chart.AxisGrid) (*chart.Dataset, error) {
	keys := make([]string, 0, len(f.Data))
	for key := range f.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ds := chart.NewDataset(grid)
	owner := make(map[float64]string, len(keys))
	for _, key := range keys {
		held, err := config.ParseHeldKey(key)
		if err != nil {
			return nil, err
		}
		if prev, dup := owner[held]; dup {
			return nil, fmt.Errorf("data keys %q and %q both name held value %v", prev, key, held)
		}
		owner[held] = key
		for id, values := range f.Data[key] {
			if err := ds.Add(held, chart.Strategy(id), values); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

func (pm *PlotManager) defaultOpenStore(src config.SourceConfig) (database.SampleStore, error) {
	switch src.Type {
	case config.SourceSQLite:
		return database.OpenSQLite(src.Path)
	case config.SourceSpool:
		return database.OpenSpool(src.Path)
	case config.SourceInfluxDB:
		return database.NewInfluxDBStore(pm.influxDB, src.Measurement, pm.logger)
	default:
		return nil, fmt.Errorf("source type %q has no store", src.Type)
	}
}

// GenerateFamily renders the chart matrix of one family.
func (pm *PlotManager) GenerateFamily(ctx context.Context, name string) (*FamilyResult, error) {
	f, err := pm.family(name)
	if err != nil {
		return nil, err
	}

	pm.logger.WithFields(logrus.Fields{
		"family":  name,
		"metric":  f.Metric,
		"varying": f.Varying,
		"held":    f.Held,
	}).Info("Generating chart family")

	grid, err := pm.Grid(f)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", name, err)
	}
	spec, err := pm.Spec(f)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", name, err)
	}
	ds, err := pm.Dataset(ctx, f, grid)
	if err != nil {
		return nil, fmt.Errorf("family %s: %w", name, err)
	}

	builder := chart.NewBuilder(pm.renderer, pm.persister,
		chart.WithOutputDir(pm.outputDir),
		chart.WithParallelism(pm.parallel),
		chart.WithLogger(pm.logger),
	)
	artifacts, err := builder.Build(ctx, ds, grid, spec, pm.strategies(f))
	result := &FamilyResult{Family: name, Metric: f.Metric, Artifacts: artifacts}
	if err != nil {
		return result, fmt.Errorf("family %s: %w", name, err)
	}

	if pm.figures != nil {
		for _, a := range artifacts {
			path, err := pm.figures.Write(a)
			if err != nil {
				return result, fmt.Errorf("family %s: %w", name, err)
			}
			result.Figures = append(result.Figures, path)
		}
	}

	pm.logger.WithFields(logrus.Fields{
		"family": name,
		"charts": len(artifacts),
	}).Info("Chart family generated successfully")
	return result, nil
}

// GenerateAll renders the given families, or every family in name order
// when names is empty. It stops at the first failing family.
func (pm *PlotManager) GenerateAll(ctx context.Context, names []string) ([]*FamilyResult, error) {
	if len(names) == 0 {
		for _, f := range pm.config.GetFamiliesSorted() {
			names = append(names, f.KeyName)
		}
	}

	var results []*FamilyResult
	for _, name := range names {
		result, err := pm.GenerateFamily(ctx, name)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			return results, err
		}
	}

	if pm.manifest {
		path := filepath.Join(pm.outputDir, ManifestFileName)
		m := BuildManifest(pm.config.Report.Name, results)
		m.ConfigContent = pm.content
		if err := WriteManifest(pm.persister, path, m); err != nil {
			return results, fmt.Errorf("failed to write manifest: %w", err)
		}
		pm.logger.WithField("path", path).Info("Manifest written")
	}
	return results, nil
}

// Import copies the inline datasets of the given families (all inline
// families when names is empty) into store.
func (pm *PlotManager) Import(ctx context.Context, store database.SampleStore, names []string) (int, error) {
	if len(names) == 0 {
		for _, f := range pm.config.GetFamiliesSorted() {
			if f.Source.Type == config.SourceInline {
				names = append(names, f.KeyName)
			}
		}
	}

	total := 0
	for _, name := range names {
		f, err := pm.family(name)
		if err != nil {
			return total, err
		}
		if f.Source.Type != config.SourceInline {
			return total, fmt.Errorf("family %s: only inline data can be imported, source is %s", name, f.Source.Type)
		}
		grid, err := pm.Grid(f)
		if err != nil {
			return total, fmt.Errorf("family %s: %w", name, err)
		}
		ds, err := inlineDataset(f, grid)
		if err != nil {
			return total, fmt.Errorf("family %s: %w", name, err)
		}
		samples := database.SamplesFromDataset(f.Metric, ds, ds.Strategies())
		if err := store.WriteSamples(ctx, samples); err != nil {
			return total, fmt.Errorf("family %s: %w", name, err)
		}
		pm.logger.WithFields(logrus.Fields{
			"family":  name,
			"metric":  f.Metric,
			"samples": len(samples),
		}).Info("Imported samples")
		total += len(samples)
	}
	return total, nil
}
