package templates

const PlotTemplate = `% Generated on {{.GeneratedDate}}
%
% {{.Title}}
% Series: {{len .Plots}}
%
\begin{tikzpicture}
\begin{axis}[
title={ {{.Title}} },
xlabel={ {{.XLabel}} },
ylabel={ {{.YLabel}} },
width=\textwidth,
height=0.7\textwidth,
xmin={{.XMin}}, xmax={{.XMax}},
xtick={ {{.XTicks}} },
scaled ticks=false,
xmajorgrids,
ymajorgrids,
grid style=dashed,
legend pos=north west,
legend cell align=left,
legend style={font=\small},
]
{{range .Plots}}
\addplot+[{{.Style}}]
  coordinates {
{{range .Coordinates}}    {{.}}
{{end}}  };
\addlegendentry{ {{.LegendEntry}} }
{{end}}
\end{axis}
\end{tikzpicture}
`

type PlotData struct {
	GeneratedDate string
	Title         string
	XLabel        string
	YLabel        string
	XMin          string
	XMax          string
	XTicks        string
	Plots         []PlotSeries
}

type PlotSeries struct {
	Style       string
	LegendEntry string
	Coordinates []string
}
