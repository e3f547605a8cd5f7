package render

import (
	"fmt"
	"strings"

	"ipc-charts/internal/chart"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatTikZ Format = "tikz"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatTikZ:
		return f, nil
	case "":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want png or tikz)", s)
	}
}

// NewRenderer returns the backend for format. PNG options are ignored by
// the TikZ backend.
func NewRenderer(format Format, opts PNGOptions) (chart.Renderer, error) {
	switch format {
	case FormatPNG, "":
		return NewPNGRenderer(opts), nil
	case FormatTikZ:
		return NewTikZRenderer()
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
