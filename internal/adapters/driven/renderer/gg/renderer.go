// Package gg renders charts to PNG files using the fogleman/gg 2D
// graphics library.
package gg

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
	"github.com/finsight-labs/finsight-cli/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.ChartRenderer = (*Renderer)(nil)

// Canvas geometry.
const (
	width   = 1000
	height  = 600
	margin  = 80.0
	tickLen = 6.0
)

// Line/point colors cycled across series.
var palette = [][3]float64{
	{0.12, 0.47, 0.71},
	{1.00, 0.50, 0.05},
	{0.17, 0.63, 0.17},
	{0.84, 0.15, 0.16},
}

// Renderer draws bar, line, and scatter charts.
type Renderer struct {
	fontPath string
	fontSize float64
}

// New creates a chart renderer. fontPath is the path to a TTF font used
// for titles and axis labels; when empty or unloadable the charts are
// rendered without text.
func New(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath, fontSize: 14}
}

// Bar renders a bar chart of a single series.
func (r *Renderer) Bar(title string, s driven.Series, outPath string) error {
	if len(s.Values) == 0 {
		return fmt.Errorf("bar chart %q: no values", title)
	}

	dc := r.newCanvas(title)

	maxVal := maxOf(s.Values)
	if maxVal <= 0 {
		maxVal = 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	slot := plotW / float64(len(s.Values))
	barW := slot * 0.7

	dc.SetRGB(palette[0][0], palette[0][1], palette[0][2])
	for i, v := range s.Values {
		h := (v / maxVal) * plotH
		x := margin + float64(i)*slot + (slot-barW)/2
		y := float64(height) - margin - h
		dc.DrawRectangle(x, y, barW, h)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	for i, label := range s.Labels {
		if i >= len(s.Values) {
			break
		}
		x := margin + float64(i)*slot + slot/2
		r.drawLabel(dc, label, x, float64(height)-margin+20)
	}

	r.drawAxes(dc)
	return writePNG(dc, outPath)
}

// Lines renders a line chart of one or more series sharing labels.
func (r *Renderer) Lines(title string, series []driven.Series, outPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("line chart %q: no series", title)
	}

	dc := r.newCanvas(title)

	var all []float64
	n := 0
	for _, s := range series {
		all = append(all, s.Values...)
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	if n < 2 {
		return fmt.Errorf("line chart %q: need at least two points", title)
	}
	lo, hi := minOf(all), maxOf(all)
	if hi == lo {
		hi = lo + 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin

	for si, s := range series {
		c := palette[si%len(palette)]
		dc.SetRGB(c[0], c[1], c[2])
		dc.SetLineWidth(2)
		for i := 1; i < len(s.Values); i++ {
			x0 := margin + plotW*float64(i-1)/float64(n-1)
			y0 := float64(height) - margin - plotH*(s.Values[i-1]-lo)/(hi-lo)
			x1 := margin + plotW*float64(i)/float64(n-1)
			y1 := float64(height) - margin - plotH*(s.Values[i]-lo)/(hi-lo)
			dc.DrawLine(x0, y0, x1, y1)
			dc.Stroke()
		}
		// Series name next to its last point.
		if len(s.Values) > 0 {
			x := margin + plotW*float64(len(s.Values)-1)/float64(n-1)
			y := float64(height) - margin - plotH*(s.Values[len(s.Values)-1]-lo)/(hi-lo)
			r.drawLabel(dc, s.Name, math.Min(x, float64(width)-margin), y-10)
		}
	}

	dc.SetRGB(0, 0, 0)
	labels := series[0].Labels
	step := 1
	if len(labels) > 10 {
		step = len(labels) / 10
	}
	for i := 0; i < len(labels); i += step {
		x := margin + plotW*float64(i)/float64(n-1)
		r.drawLabel(dc, labels[i], x, float64(height)-margin+20)
	}

	r.drawAxes(dc)
	return writePNG(dc, outPath)
}

// Scatter renders a scatter plot of paired values with point labels.
func (r *Renderer) Scatter(title, xLabel, yLabel string, xs, ys []float64, labels []string, outPath string) error {
	if len(xs) == 0 || len(xs) != len(ys) {
		return fmt.Errorf("scatter %q: need matching x/y values, got %d/%d", title, len(xs), len(ys))
	}

	dc := r.newCanvas(title)

	xlo, xhi := minOf(xs), maxOf(xs)
	ylo, yhi := minOf(ys), maxOf(ys)
	if xhi == xlo {
		xhi = xlo + 1
	}
	if yhi == ylo {
		yhi = ylo + 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin

	c := palette[0]
	dc.SetRGB(c[0], c[1], c[2])
	for i := range xs {
		x := margin + plotW*(xs[i]-xlo)/(xhi-xlo)
		y := float64(height) - margin - plotH*(ys[i]-ylo)/(yhi-ylo)
		dc.DrawCircle(x, y, 5)
		dc.Fill()
		if i < len(labels) {
			dc.SetRGB(0, 0, 0)
			r.drawLabel(dc, labels[i], x, y-12)
			dc.SetRGB(c[0], c[1], c[2])
		}
	}

	dc.SetRGB(0, 0, 0)
	r.drawLabel(dc, xLabel, float64(width)/2, float64(height)-margin/3)
	r.drawLabel(dc, yLabel, margin/3, float64(height)/2)

	r.drawAxes(dc)
	return writePNG(dc, outPath)
}

// newCanvas prepares a white canvas with the title drawn when a font is
// available.
func (r *Renderer) newCanvas(title string) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, r.fontSize+4); err != nil {
			logger.Warn("cannot load font %s, rendering without text: %v", r.fontPath, err)
		} else {
			dc.DrawStringAnchored(title, float64(width)/2, margin/2, 0.5, 0.5)
			// Smaller face for labels.
			if err := dc.LoadFontFace(r.fontPath, r.fontSize); err != nil {
				logger.Warn("cannot reload font %s: %v", r.fontPath, err)
			}
		}
	}
	return dc
}

// drawLabel draws centred text when a font is loaded; silently skipped
// otherwise.
func (r *Renderer) drawLabel(dc *gg.Context, text string, x, y float64) {
	if r.fontPath == "" || text == "" {
		return
	}
	dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
}

// drawAxes draws the x and y axis lines with outward ticks.
func (r *Renderer) drawAxes(dc *gg.Context) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	dc.DrawLine(margin, margin, margin, float64(height)-margin)
	dc.DrawLine(margin, float64(height)-margin, float64(width)-margin, float64(height)-margin)
	dc.DrawLine(margin, float64(height)-margin, margin, float64(height)-margin+tickLen)
	dc.Stroke()
}

func writePNG(dc *gg.Context, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0700); err != nil {
		return fmt.Errorf("creating graph directory: %w", err)
	}
	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	logger.Debug("chart saved to %s", outPath)
	return nil
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}
