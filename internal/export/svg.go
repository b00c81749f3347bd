// Package export renders stored runs as SVG line plots.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/odekit/internal/experiment"
)

// Axis selects what a plot axis shows. Time is the sample time; any
// other value is a state component index.
type Axis int

const Time Axis = -1

type Options struct {
	Width, Height int
	Stroke        string
	RefStroke     string
	// Reference adds the closed-form path when the run has one.
	Reference bool
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 400, Stroke: "#00ff88", RefStroke: "#888899", Reference: true}
}

type point struct{ x, y float64 }

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) add(pts []point) {
	for _, p := range pts {
		b.minX = math.Min(b.minX, p.x)
		b.maxX = math.Max(b.maxX, p.x)
		b.minY = math.Min(b.minY, p.y)
		b.maxY = math.Max(b.maxY, p.y)
	}
}

// pad widens the box by 10% and keeps degenerate ranges drawable.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func series(times []float64, states [][]float64, x, y Axis) []point {
	pick := func(a Axis, k int) (float64, bool) {
		if a == Time {
			return times[k], true
		}
		s := states[k]
		if s == nil {
			return 0, false
		}
		return s[a], true
	}
	pts := make([]point, 0, len(times))
	for k := range times {
		px, okX := pick(x, k)
		py, okY := pick(y, k)
		if !okX || !okY || math.IsNaN(px) || math.IsNaN(py) || math.IsInf(px, 0) || math.IsInf(py, 0) {
			continue
		}
		pts = append(pts, point{px, py})
	}
	return pts
}

// SVG writes y against x for rep.
func SVG(w io.Writer, rep *experiment.Report, x, y Axis, opts Options) error {
	if len(rep.States) == 0 {
		return fmt.Errorf("export: empty trajectory")
	}
	dim := len(rep.States[0])
	for _, a := range []Axis{x, y} {
		if a != Time && (a < 0 || int(a) >= dim) {
			return fmt.Errorf("export: component %d out of range (dimension %d)", a, dim)
		}
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export: size %dx%d", opts.Width, opts.Height)
	}

	num := series(rep.Times, rep.States, x, y)
	if len(num) < 2 {
		return fmt.Errorf("export: need at least 2 finite samples, have %d", len(num))
	}
	var ref []point
	if opts.Reference && rep.HasReference() {
		ref = series(rep.Times, rep.Reference, x, y)
	}

	b := bounds{minX: num[0].x, maxX: num[0].x, minY: num[0].y, maxY: num[0].y}
	b.add(num)
	b.add(ref)
	b.pad()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height))

	if len(ref) >= 2 {
		writePath(&sb, ref, b, opts, opts.RefStroke, ` stroke-dasharray="4 3"`)
	}
	writePath(&sb, num, b, opts, opts.Stroke, "")
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writePath(sb *strings.Builder, pts []point, b bounds, opts Options, stroke, extra string) {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, stroke, extra))
	for i, p := range pts {
		px := (p.x - b.minX) / rangeX * float64(opts.Width)
		py := float64(opts.Height) - (p.y-b.minY)/rangeY*float64(opts.Height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}
	sb.WriteString("\"/>\n")
}
