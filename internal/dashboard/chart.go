package dashboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentiment-dashboard/internal/sentiment"
)

// ErrNoChartData is returned when there is nothing to plot.
var ErrNoChartData = errors.New("no chart data")

const (
	chartHeight  = 320
	barWidth     = 40
	barSpacing   = 24
	minBarsWidth = 480
)

var primaryColor = drawing.Color{R: 59, G: 130, B: 246, A: 255}

func classColor(label sentiment.Label) drawing.Color {
	r, g, b := label.Class().RGB()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

// RenderSentimentPie writes the class distribution as a PNG pie chart.
// Empty classes are left out; each slice is labelled "<name> <pct>".
func RenderSentimentPie(w io.Writer, slices []Slice) error {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(s.Value),
			Label: fmt.Sprintf("%s %s", s.Name, s.PercentLabel),
			Style: chart.Style{
				FillColor:   classColor(s.Label),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
				FontColor:   drawing.ColorWhite,
				FontSize:    11,
			},
		})
	}
	if len(values) == 0 {
		return ErrNoChartData
	}
	// PieChart draws nothing for a lone value, so a single class is a full disc.
	if len(values) == 1 {
		if err := renderDisc(w, values[0]); err != nil {
			return fmt.Errorf("render sentiment chart: %w", err)
		}
		return nil
	}

	pie := chart.PieChart{
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render sentiment chart: %w", err)
	}
	return nil
}

func renderDisc(w io.Writer, v chart.Value) error {
	r, err := chart.PNG(chartHeight, chartHeight)
	if err != nil {
		return err
	}
	r.SetDPI(chart.DefaultDPI)

	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(chartHeight, 0)
	r.LineTo(chartHeight, chartHeight)
	r.LineTo(0, chartHeight)
	r.Close()
	r.Fill()

	center := chartHeight / 2
	r.SetFillColor(v.Style.FillColor)
	r.SetStrokeColor(v.Style.StrokeColor)
	r.SetStrokeWidth(v.Style.StrokeWidth)
	r.Circle(float64(center-8), center, center)
	r.FillStroke()

	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)
	r.SetFontColor(v.Style.FontColor)
	r.SetFontSize(v.Style.FontSize)
	box := r.MeasureText(v.Label)
	r.Text(v.Label, center-box.Width()/2, center+box.Height()/2)
	return r.Save(w)
}

// RenderSourcesBar writes the source histogram as a PNG bar chart.
func RenderSourcesBar(w io.Writer, sources []SourceCount) error {
	if len(sources) == 0 {
		return ErrNoChartData
	}
	bars := make([]chart.Value, 0, len(sources))
	maxCount := 1
	for _, s := range sources {
		if s.Count > maxCount {
			maxCount = s.Count
		}
		bars = append(bars, chart.Value{
			Value: float64(s.Count),
			Label: s.Source,
			Style: chart.Style{FillColor: primaryColor, StrokeColor: primaryColor, StrokeWidth: 1},
		})
	}

	width := len(bars)*(barWidth+barSpacing) + 120
	if width < minBarsWidth {
		width = minBarsWidth
	}
	bar := chart.BarChart{
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		Bars: bars,
	}
	if err := bar.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render sources chart: %w", err)
	}
	return nil
}
