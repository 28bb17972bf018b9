package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/large-farva/tickscope/internal/window"
)

const waitingText = "waiting for data..."

// renderChart draws the window as a braille line chart of width x height
// cells. Samples are spaced evenly in arrival order.
func renderChart(points []window.Sample, width, height int) string {
	if width < 4 || height < 2 {
		return ""
	}
	if len(points) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styleDim.Render(waitingText))
	}

	values := make([]float64, 0, max(len(points), 2))
	for _, p := range points {
		values = append(values, p.Value)
	}
	// A single sample still needs two points to draw a line.
	if len(values) == 1 {
		values = append(values, values[0])
	}

	line := plot.Red
	if !lipgloss.DefaultRenderer().HasDarkBackground() {
		line = plot.Black
	}

	c := plot.NewCanvas(width, height)
	c.NumDataPoints = len(values)
	c.ShowAxis = false
	c.LineColors = []plot.Color{line}
	c.Fill([][]float64{values})
	return c.String()
}

// summary describes the window in one line: last value, range and fill.
func summary(points []window.Sample, capacity int) string {
	if len(points) == 0 {
		return styleDim.Render(fmt.Sprintf("0/%d samples", capacity))
	}
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	last := points[len(points)-1]

	parts := []string{
		styleLabel.Render("last ") + styleValue.Render(formatValue(last.Value)),
		styleLabel.Render("min ") + formatValue(lo),
		styleLabel.Render("max ") + formatValue(hi),
		styleLabel.Render("at ") + last.Time().Local().Format("15:04:05.000"),
		styleDim.Render(fmt.Sprintf("%d/%d samples", len(points), capacity)),
	}
	return strings.Join(parts, "  ")
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
