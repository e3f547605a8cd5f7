package chart

import (
	"fmt"
	"strconv"
)

// LookupError reports a (held value, strategy) pair the dataset has no
// samples for.
type LookupError struct {
	Held     float64
	Strategy Strategy
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no samples for strategy %q at held value %s", e.Strategy, formatValue(e.Held))
}

// ConfigurationError is returned before any rendering starts when the
// inputs of a build cannot produce a well-defined chart matrix.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid chart configuration: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// RenderError wraps a failure of the rendering backend or of the persist
// step for a single artifact.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// formatValue prints a dimension value the way it appears in titles and
// file names: 4 instead of 4.000000, 0.5 stays 0.5.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
