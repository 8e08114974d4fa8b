// Package chart renders deploy frequency as an HTML bar chart.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	defaultWidth  = "900px"
	defaultHeight = "500px"
	seriesName    = "Deploys"
)

// Palette is cycled across bars, one color per day
var Palette = []string{
	"#FC6255", // red
	"#83C167", // green
	"#58C4DD", // blue
	"#FFFF00", // yellow
	"#FF862F", // orange
	"#9A72AC", // purple
	"#888888", // gray
}

// Series is the chart input: bar names and a count per name
type Series interface {
	Labels() []string
	Counts() map[string]int
}

// Options configures a chart
type Options struct {
	Title    string
	Subtitle string
	Width    string
	Height   string
}

// NewBar builds a bar chart with one bar per label, in label order
func NewBar(series Series, o Options) *charts.Bar {
	width, height := o.Width, o.Height
	if width == "" {
		width = defaultWidth
	}
	if height == "" {
		height = defaultHeight
	}

	labels := series.Labels()
	counts := series.Counts()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     width,
			Height:    height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: o.Subtitle,
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Deploys"}),
	)
	bar.SetXAxis(labels)

	data := make([]opts.BarData, len(labels))
	for i, label := range labels {
		data[i] = opts.BarData{
			Name:      label,
			Value:     counts[label],
			ItemStyle: &opts.ItemStyle{Color: Palette[i%len(Palette)]},
		}
	}
	bar.AddSeries(seriesName, data)

	return bar
}

// Render writes a self-contained HTML page with the chart to w
func Render(w io.Writer, series Series, o Options) error {
	if err := NewBar(series, o).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
