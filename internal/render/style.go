package render

// SeriesStyle is the pgfplots styling of one strategy line.
type SeriesStyle struct {
	Color       string
	LineStyle   string
	LineWidth   string
	Mark        string
	MarkOptions string
}

// Solid lines first so the three transfer strategies of a default report
// differ by color and marker alone; later entries add dash patterns.
var SeriesStyles = []SeriesStyle{
	{Color: "blue", LineStyle: "solid", LineWidth: "thick", Mark: "*", MarkOptions: "scale=0.6,fill=blue"},
	{Color: "orange", LineStyle: "solid", LineWidth: "thick", Mark: "square*", MarkOptions: "scale=0.5,fill=orange"},
	{Color: "green!70!black", LineStyle: "solid", LineWidth: "thick", Mark: "triangle*", MarkOptions: "scale=0.6,fill=green!70!black"},
	{Color: "red", LineStyle: "solid", LineWidth: "thick", Mark: "diamond*", MarkOptions: "scale=0.6,fill=red"},
	{Color: "purple", LineStyle: "densely dashed", LineWidth: "thick", Mark: "pentagon*", MarkOptions: "scale=0.5,fill=purple"},
	{Color: "brown", LineStyle: "densely dashed", LineWidth: "thick", Mark: "x", MarkOptions: "scale=0.6"},
	{Color: "black", LineStyle: "densely dotted", LineWidth: "thick", Mark: "o", MarkOptions: "scale=0.5"},
	{Color: "cyan", LineStyle: "dashdotted", LineWidth: "thick", Mark: "star", MarkOptions: "scale=0.6"},
}

func GetSeriesStyle(index int) SeriesStyle {
	if index < 0 {
		index = 0
	}
	return SeriesStyles[index%len(SeriesStyles)]
}

func (s SeriesStyle) ToTikzOptions() string {
	options := s.Color
	if s.LineStyle != "" {
		options += "," + s.LineStyle
	}
	if s.LineWidth != "" {
		options += "," + s.LineWidth
	}
	if s.Mark != "none" && s.Mark != "" {
		options += ",mark=" + s.Mark
		if s.MarkOptions != "" {
			options += ",mark options={" + s.MarkOptions + "}"
		}
	}
	return options
}
