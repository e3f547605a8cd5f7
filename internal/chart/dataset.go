package chart

import (
	"math"
	"sort"
)

// Dataset holds one metric's samples indexed by held value and strategy.
// Each stored series is aligned index-for-index with the grid's varying
// values. A missing pair is a lookup failure, never an implicit zero.
type Dataset struct {
	grid    AxisGrid
	samples map[float64]map[Strategy][]float64
}

func NewDataset(grid AxisGrid) *Dataset {
	return &Dataset{
		grid:    grid,
		samples: make(map[float64]map[Strategy][]float64),
	}
}

// Add stores the series of strategy s for one held value, replacing any
// previous series for the same pair.
func (d *Dataset) Add(held float64, s Strategy, values []float64) error {
	if s == "" {
		return configErrorf("strategy must not be empty")
	}
	if _, ok := d.grid.heldIndex(held); !ok {
		return configErrorf("held value %s is not declared in dimension %q", formatValue(held), d.grid.Held.Name)
	}
	if len(values) != len(d.grid.Varying.Values) {
		return configErrorf("strategy %q at %s=%s has %d samples, want %d (one per %s value)",
			s, d.grid.Held.Name, formatValue(held), len(values), len(d.grid.Varying.Values), d.grid.Varying.Name)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("strategy %q at %s=%s has non-finite sample at index %d",
				s, d.grid.Held.Name, formatValue(held), i)
		}
	}

	byStrategy, ok := d.samples[held]
	if !ok {
		byStrategy = make(map[Strategy][]float64)
		d.samples[held] = byStrategy
	}
	byStrategy[s] = append([]float64(nil), values...)
	return nil
}

// SeriesFor returns a copy of the samples for (held, s).
func (d *Dataset) SeriesFor(held float64, s Strategy) ([]float64, error) {
	series, ok := d.samples[held][s]
	if !ok {
		return nil, &LookupError{Held: held, Strategy: s}
	}
	return append([]float64(nil), series...), nil
}

func (d *Dataset) Grid() AxisGrid {
	return d.grid
}

// Strategies lists every strategy with at least one stored series, sorted.
func (d *Dataset) Strategies() []Strategy {
	seen := make(map[Strategy]bool)
	for _, byStrategy := range d.samples {
		for s := range byStrategy {
			seen[s] = true
		}
	}
	out := make([]Strategy, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
