// Package plot renders snapshot series as line charts, the series value
// on Y against the file index 0..N-1 on X.
package plot

import (
	"errors"
	"fmt"

	gonum "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("plot: empty series")

// Labels names the chart and its axes. Empty values are left blank.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// Size is the image size in inches.
type Size struct {
	Width  float64
	Height float64
}

// DefaultSize matches the usual 640x480 chart at 100 dpi.
var DefaultSize = Size{Width: 6.4, Height: 4.8}

// Result describes a rendered chart.
type Result struct {
	Path   string
	Points int
	Last   float64
	Max    float64
}

// Render draws series into out. The image format follows the file
// extension (png, svg, pdf, jpg, ...).
func Render(series []float64, labels Labels, out string, size Size) (*Result, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	p := gonum.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XLabel
	p.Y.Label.Text = labels.YLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(Points(series))
	if err != nil {
		return nil, fmt.Errorf("plot: build line: %w", err)
	}
	p.Add(line)

	if err := p.Save(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch, out); err != nil {
		return nil, fmt.Errorf("plot: save %s: %w", out, err)
	}

	res := &Result{Path: out, Points: len(series), Last: series[len(series)-1], Max: series[0]}
	for _, v := range series {
		res.Max = max(res.Max, v)
	}
	return res, nil
}

// Points pairs each value with its index.
func Points(series []float64) plotter.XYs {
	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
