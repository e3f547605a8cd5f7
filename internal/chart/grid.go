package chart

import "math"

// Strategy identifies one of the compared data-transfer variants. The same
// identifier is used to look up samples and, unless a spec overrides it,
// as the legend text.
type Strategy string

// Dimension is one benchmark variable, e.g. message size or thread count.
type Dimension struct {
	Name   string
	Label  string
	Values []float64
}

// AxisGrid pairs the dimension plotted along the x-axis with the dimension
// that selects a chart within the matrix.
type AxisGrid struct {
	Varying Dimension
	Held    Dimension
}

func NewAxisGrid(varying, held Dimension) (AxisGrid, error) {
	for _, dim := range []Dimension{varying, held} {
		if err := validateDimension(dim); err != nil {
			return AxisGrid{}, err
		}
	}
	return AxisGrid{
		Varying: cloneDimension(varying),
		Held:    cloneDimension(held),
	}, nil
}

// Swap returns the grid with the varying and held roles exchanged.
func (g AxisGrid) Swap() AxisGrid {
	return AxisGrid{Varying: g.Held, Held: g.Varying}
}

func (g AxisGrid) heldIndex(v float64) (int, bool) {
	for i, h := range g.Held.Values {
		if h == v {
			return i, true
		}
	}
	return -1, false
}

func validateDimension(dim Dimension) error {
	if len(dim.Values) == 0 {
		return configErrorf("dimension %q has no values", dim.Name)
	}
	seen := make(map[float64]bool, len(dim.Values))
	for _, v := range dim.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("dimension %q contains non-finite value %v", dim.Name, v)
		}
		if seen[v] {
			return configErrorf("dimension %q contains duplicate value %s", dim.Name, formatValue(v))
		}
		seen[v] = true
	}
	return nil
}

func cloneDimension(dim Dimension) Dimension {
	dim.Values = append([]float64(nil), dim.Values...)
	return dim
}
