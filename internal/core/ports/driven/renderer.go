package driven

// Series is a named sequence of (label, value) points for plotting.
type Series struct {
	Name   string
	Labels []string
	Values []float64
}

// ChartRenderer draws charts to PNG files. This is a pure presentation
// collaborator: it only needs a stable render(data) -> image contract.
type ChartRenderer interface {
	// Bar renders a bar chart of a single series.
	Bar(title string, s Series, outPath string) error

	// Lines renders a line chart of one or more series sharing labels.
	Lines(title string, series []Series, outPath string) error

	// Scatter renders a scatter plot of paired values with point labels.
	Scatter(title, xLabel, yLabel string, xs, ys []float64, labels []string, outPath string) error
}
