package markalert

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// RenderChart renders the new distribution of a change as a PNG bar chart.
// Each bar is labeled with the grade text and the current count; grades
// whose count grew against the old snapshot additionally carry the delta.
func RenderChart(change Change) ([]byte, error) {
	if len(change.New) == 0 {
		return nil, fmt.Errorf("distribution for %s is empty", change.Exam.Key())
	}

	oldCounts := make(map[string]int)
	for _, g := range change.Old {
		oldCounts[g.GradeText] = g.Count
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(change.New))
	for _, g := range change.New {
		label := fmt.Sprintf("%s (%d)", g.GradeText, g.Count)
		if diff := g.Count - oldCounts[g.GradeText]; diff > 0 {
			label = fmt.Sprintf("%s (%d, +%d)", g.GradeText, g.Count, diff)
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(g.Count)})
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}

	graph := chart.BarChart{
		Title:    change.Exam.Key(),
		Width:    900,
		Height:   500,
		BarWidth: 70,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{TextRotationDegrees: 0},
		// An explicit range avoids render failures for single-valued or
		// all-zero distributions.
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart for %s: %w", change.Exam.Key(), err)
	}
	return buf.Bytes(), nil
}
