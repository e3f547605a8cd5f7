package templates

const WrapperTemplate = `% Generated on {{.GeneratedDate}}
% Plot: {{.PlotFileName}}
\begin{figure}[H]
    \centering
    \resizebox{1\linewidth}{!}{\input{./{{.PlotFileName}} }}
    \caption[{{.ShortCaption}}]{ {{.Caption}} }
    \label{ {{- .Label -}} }
\end{figure}
`

type WrapperData struct {
	GeneratedDate string
	PlotFileName  string
	ShortCaption  string
	Caption       string
	Label         string
}
