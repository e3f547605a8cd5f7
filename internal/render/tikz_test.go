package render

import (
	"strings"
	"testing"
	"time"
)

func TestTikZRenderer_Render(t *testing.T) {
	r, err := NewTikZRenderer()
	if err != nil {
		t.Fatalf("NewTikZRenderer: %v", err)
	}
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	out, err := r.Render(sampleChart())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"% Generated on 2026-01-02T03:04:05Z",
		"title={ Throughput vs Message Size (Threads = 4) }",
		"xmin=32, xmax=2048",
		"xtick={ 32,128,512,2048 }",
		"xmajorgrids",
		"ymajorgrids",
		"(2048,45.24)",
		`\addlegendentry{ A3 Zero-copy }`,
		"mark=square*",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
	if n := strings.Count(text, `\addplot+`); n != 3 {
		t.Fatalf("expected 3 plots, got %d", n)
	}
}

func TestTikZRenderer_EmptyChart(t *testing.T) {
	r, err := NewTikZRenderer()
	if err != nil {
		t.Fatalf("NewTikZRenderer: %v", err)
	}
	c := sampleChart()
	c.Series = nil

	out, err := r.Render(c)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), `\addplot`) {
		t.Fatalf("expected no plots in empty chart")
	}
	if !strings.Contains(string(out), `\end{axis}`) {
		t.Fatalf("expected a complete axis environment")
	}
}

func TestEscapeTeX(t *testing.T) {
	cases := map[string]string{
		"Latency (µs) 50% a_b": `Latency ($\mu$s) 50\% a\_b`,
		"{A1} 2^10 ~fast":      `\{A1\} 2\^{}10 \~{}fast`,
		`C:\bench & run #1 $5`: `C:\textbackslash{}bench \& run \#1 \$5`,
	}
	for in, want := range cases {
		if got := escapeTeX(in); got != want {
			t.Errorf("escapeTeX(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTikZRenderer_EscapesBracesInLabels(t *testing.T) {
	r, err := NewTikZRenderer()
	if err != nil {
		t.Fatalf("NewTikZRenderer: %v", err)
	}
	c := sampleChart()
	c.Title = "Throughput {2^k bytes}"
	c.Series[0].Label = "A1 ~two-copy~"

	data, err := r.Render(c)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := string(data)
	for _, want := range []string{`Throughput \{2\^{}k bytes\}`, `A1 \~{}two-copy\~{}`} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q", want)
		}
	}
	if strings.Contains(out, "{2^k") {
		t.Errorf("unescaped title leaked into output")
	}
}

func TestGetSeriesStyle_Wraps(t *testing.T) {
	if GetSeriesStyle(len(SeriesStyles)) != GetSeriesStyle(0) {
		t.Fatalf("expected style table to wrap around")
	}
	if GetSeriesStyle(-1) != GetSeriesStyle(0) {
		t.Fatalf("expected negative index to map to the first style")
	}
	opts := GetSeriesStyle(0).ToTikzOptions()
	if !strings.HasPrefix(opts, "blue,solid,thick,mark=*") {
		t.Fatalf("unexpected tikz options %q", opts)
	}
}
