package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Zarux/tictactd/pkg/tictactoe"
)

type CurvePoint struct {
	Episode  int
	WinRate  float64
	LossRate float64
	TieRate  float64
}

// Curve averages outcomes over consecutive windows of episodes.
type Curve struct {
	window int
	points []CurvePoint

	seen               int
	wins, losses, ties int
}

func NewCurve(window int) *Curve {
	if window <= 0 {
		panic("window must be positive")
	}

	return &Curve{window: window}
}

func (c *Curve) Observe(o tictactoe.Outcome) {
	c.seen++
	switch o {
	case tictactoe.Win:
		c.wins++
	case tictactoe.Loss:
		c.losses++
	default:
		c.ties++
	}

	if c.seen%c.window != 0 {
		return
	}

	n := float64(c.window)
	c.points = append(c.points, CurvePoint{
		Episode:  c.seen,
		WinRate:  float64(c.wins) / n,
		LossRate: float64(c.losses) / n,
		TieRate:  float64(c.ties) / n,
	})
	c.wins, c.losses, c.ties = 0, 0, 0
}

func (c *Curve) Points() []CurvePoint {
	return c.points
}

// Render writes the curve as a standalone HTML line chart.
func (c *Curve) Render(w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "TD agent vs random opponent",
			Subtitle: fmt.Sprintf("outcome rates per %d episodes", c.window),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rate"}),
	)

	steps := make([]string, 0, len(c.points))
	wins := make([]opts.LineData, 0, len(c.points))
	losses := make([]opts.LineData, 0, len(c.points))
	ties := make([]opts.LineData, 0, len(c.points))
	for _, p := range c.points {
		steps = append(steps, fmt.Sprintf("%d", p.Episode))
		wins = append(wins, opts.LineData{Value: p.WinRate})
		losses = append(losses, opts.LineData{Value: p.LossRate})
		ties = append(ties, opts.LineData{Value: p.TieRate})
	}

	line.SetXAxis(steps).
		AddSeries("win", wins).
		AddSeries("loss", losses).
		AddSeries("tie", ties)

	page := components.NewPage()
	page.AddCharts(line)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render learning curve: %w", err)
	}

	return nil
}
