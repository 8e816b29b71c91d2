// Package chart renders the dashboard's production and feature-importance
// bar charts as inline SVG.
package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/solar-forecast-service/internal/forecast"
)

var (
	width  = vg.Points(720)
	height = vg.Points(420)

	blue   = rgb(0x34, 0x98, 0xdb)
	green  = rgb(0x2e, 0xcc, 0x71)
	red    = rgb(0xe7, 0x4c, 0x3c)
	orange = rgb(0xf3, 0x9c, 0x12)
	black  = rgb(0, 0, 0)

	locationColors = []color.Color{blue, green, red}
	dashes         = []vg.Length{vg.Points(6), vg.Points(4)}
)

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Production draws one bar per location labelled with its kWh and share of
// the total, a red total bar, and a dashed line at the location average.
func Production(res *forecast.Result) (template.HTML, error) {
	p := plot.New()
	p.Title.Text = res.Label
	p.Y.Label.Text = "kWh"

	names := make([]string, 0, len(res.Locations)+1)
	labels := plotter.XYLabels{}
	peak := res.Total
	for i, loc := range res.Locations {
		b, err := bar(float64(i), loc.Value, locationColors[i%len(locationColors)])
		if err != nil {
			return "", err
		}
		p.Add(b)
		p.Legend.Add(loc.Label, b)
		names = append(names, loc.Label)

		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: loc.Value})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f kWh (%.2f%%)", loc.Value, loc.Share))
		if loc.Value > peak {
			peak = loc.Value
		}
	}

	totalX := float64(len(res.Locations))
	total, err := bar(totalX, res.Total, red)
	if err != nil {
		return "", err
	}
	p.Add(total)
	p.Legend.Add(res.Label, total)
	names = append(names, "Total")
	labels.XYs = append(labels.XYs, plotter.XY{X: totalX, Y: res.Total})
	labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f kWh", res.Total))

	avg, err := hline(-0.5, float64(len(res.Locations))-0.5, res.Average, orange)
	if err != nil {
		return "", err
	}
	p.Add(avg)
	p.Legend.Add(fmt.Sprintf("Average: %.2f kWh", res.Average), avg)

	if err := addLabels(p, labels); err != nil {
		return "", err
	}

	p.NominalX(names...)
	p.Y.Min = 0
	p.Y.Max = yMax(peak)
	p.Legend.Top = true
	return render(p)
}

// Importance draws feature importances as percentages sorted descending.
// Bars above 20% are green, above 10% blue, the rest red.
func Importance(importances []float64, names []string, title string) (template.HTML, error) {
	if len(importances) != len(names) {
		return "", fmt.Errorf("%d importances for %d features", len(importances), len(names))
	}

	type feature struct {
		name string
		pct  float64
	}
	features := make([]feature, len(names))
	var sum float64
	for i, name := range names {
		features[i] = feature{name: name, pct: importances[i] * 100}
		sum += features[i].pct
	}
	sort.SliceStable(features, func(i, j int) bool { return features[i].pct > features[j].pct })

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Importance (%)"

	sorted := make([]string, len(features))
	labels := plotter.XYLabels{}
	var peak float64
	for i, f := range features {
		b, err := bar(float64(i), f.pct, importanceColor(f.pct))
		if err != nil {
			return "", err
		}
		p.Add(b)
		sorted[i] = f.name
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: f.pct})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f%%", f.pct))
		if f.pct > peak {
			peak = f.pct
		}
	}

	if n := len(features); n > 0 {
		mean, err := hline(-0.5, float64(n)-0.5, sum/float64(n), black)
		if err != nil {
			return "", err
		}
		p.Add(mean)
		p.Legend.Add("Average importance", mean)
	}
	if err := addLabels(p, labels); err != nil {
		return "", err
	}

	p.NominalX(sorted...)
	p.Y.Min = 0
	p.Y.Max = yMax(peak)
	p.Legend.Top = true
	return render(p)
}

func importanceColor(pct float64) color.Color {
	switch {
	case pct > 20:
		return green
	case pct > 10:
		return blue
	default:
		return red
	}
}

func bar(x, v float64, c color.Color) (*plotter.BarChart, error) {
	b, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(48))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	b.XMin = x
	b.Color = c
	b.LineStyle.Width = 0
	return b, nil
}

func hline(x0, x1, y float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(2)
	l.LineStyle.Dashes = dashes
	return l, nil
}

func addLabels(p *plot.Plot, xyl plotter.XYLabels) error {
	if len(xyl.Labels) == 0 {
		return nil
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	p.Add(labels)
	return nil
}

// yMax leaves 20% headroom above the tallest bar.
func yMax(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	return peak * 1.2
}

func render(p *plot.Plot) (template.HTML, error) {
	w, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return "", fmt.Errorf("svg writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("render svg: %w", err)
	}
	svg := buf.String()
	// Drop the XML prolog so the markup can be inlined in HTML.
	if i := strings.Index(svg, "<svg"); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg), nil //nolint:gosec // generated by gonum/plot from numeric data and fixed names
}
