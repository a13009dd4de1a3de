package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var categoryColors = map[string]drawing.Color{
	"Survival": drawing.ColorFromHex("4caf50"),
	"Optional": drawing.ColorFromHex("fbc02d"),
	"Culture":  drawing.ColorFromHex("1e88e5"),
	"Extra":    drawing.ColorFromHex("e53935"),
}

// CategoryChart renders the category split of s as a PNG pie chart. It
// returns nil when there is nothing to draw.
func CategoryChart(s Summary) ([]byte, error) {
	if s.Total <= 0 || len(s.All) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(s.All))
	for _, c := range s.All {
		v := chart.Value{
			Label: fmt.Sprintf("%s %d%%", c.Category, c.Percent),
			Value: float64(c.Amount),
		}
		if color, ok := categoryColors[c.Category]; ok {
			v.Style = chart.Style{FillColor: color, StrokeColor: chart.ColorWhite}
		}
		values = append(values, v)
	}

	pie := chart.PieChart{
		Title:  "Weekly spending " + s.Week.Range(),
		Width:  800,
		Height: 600,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   40,
				Right:  40,
				Bottom: 40,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buf := bytes.NewBuffer(nil)
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render category chart: %w", err)
	}
	return buf.Bytes(), nil
}
