package database

import (
	"context"
	"fmt"

	"ipc-charts/internal/chart"

	"github.com/sirupsen/logrus"
)

// Sample is one stored measurement: the value of metric for a strategy at
// a (held, varying) coordinate of the benchmark grid.
type Sample struct {
	Metric   string  `json:"metric"`
	Strategy string  `json:"strategy"`
	Held     float64 `json:"held"`
	Varying  float64 `json:"varying"`
	Value    float64 `json:"value"`
}

// SampleStore is a database that can hold benchmark samples.
type SampleStore interface {
	QuerySamples(ctx context.Context, metric string) ([]Sample, error)
	WriteSamples(ctx context.Context, samples []Sample) error
	Close() error
}

type sampleKey struct {
	held     float64
	strategy string
}

// AssembleDataset groups samples into the series of a Dataset. A series
// missing any varying value is left out so that the chart builder reports
// the gap as a lookup failure instead of plotting a partial line.
// Samples outside the grid are ignored; a repeated coordinate keeps the
// last sample.
func AssembleDataset(grid chart.AxisGrid, samples []Sample, logger *logrus.Logger) (*chart.Dataset, error) {
	varyingIndex := make(map[float64]int, len(grid.Varying.Values))
	for i, v := range grid.Varying.Values {
		varyingIndex[v] = i
	}
	declaredHeld := make(map[float64]bool, len(grid.Held.Values))
	for _, h := range grid.Held.Values {
		declaredHeld[h] = true
	}

	series := make(map[sampleKey][]*float64)
	var order []sampleKey
	ignored := 0
	for _, s := range samples {
		idx, ok := varyingIndex[s.Varying]
		if !ok || !declaredHeld[s.Held] {
			ignored++
			continue
		}
		key := sampleKey{held: s.Held, strategy: s.Strategy}
		slots, ok := series[key]
		if !ok {
			slots = make([]*float64, len(grid.Varying.Values))
			series[key] = slots
			order = append(order, key)
		}
		v := s.Value
		slots[idx] = &v
	}
	if ignored > 0 {
		logger.WithField("samples", ignored).Debug("Ignoring samples outside the axis grid")
	}

	ds := chart.NewDataset(grid)
	for _, key := range order {
		values, complete := collect(series[key])
		if !complete {
			logger.WithFields(logrus.Fields{
				"strategy": key.strategy,
				"held":     key.held,
			}).Warn("Skipping incomplete series")
			continue
		}
		if err := ds.Add(key.held, chart.Strategy(key.strategy), values); err != nil {
			return nil, fmt.Errorf("failed to assemble dataset: %w", err)
		}
	}
	return ds, nil
}

func collect(slots []*float64) ([]float64, bool) {
	values := make([]float64, len(slots))
	for i, v := range slots {
		if v == nil {
			return nil, false
		}
		values[i] = *v
	}
	return values, true
}

// SamplesFromDataset flattens the stored series of strategies into samples
// of metric, in grid order. Pairs the dataset has no series for are skipped.
func SamplesFromDataset(metric string, ds *chart.Dataset, strategies []chart.Strategy) []Sample {
	grid := ds.Grid()
	var samples []Sample
	for _, held := range grid.Held.Values {
		for _, s := range strategies {
			values, err := ds.SeriesFor(held, s)
			if err != nil {
				continue
			}
			for i, v := range values {
				samples = append(samples, Sample{
					Metric:   metric,
					Strategy: string(s),
					Held:     held,
					Varying:  grid.Varying.Values[i],
					Value:    v,
				})
			}
		}
	}
	return samples
}
