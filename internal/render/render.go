// Package render draws timegrapher-style charts from a decoded session
// and a planned cutoff. The session is read-only; the cutoff shapes the
// axes and nothing else.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/danmuck/seikoctl/internal/cutoff"
	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

// ErrModeUnsupported rejects graph requests for print mode C, whose
// data is served by the tabular export path.
var ErrModeUnsupported = errors.New("render: print mode C has no graph form, use the CSV export")

// Palette from the device tool.
var (
	colorOriginal  = color.RGBA{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF}
	colorCorrected = color.RGBA{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF}
	colorOutlier   = color.RGBA{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF}
)

const (
	graphWidth  = 8 * vg.Inch
	graphHeight = 6 * vg.Inch
)

// Graph renders the session as a PNG artifact.
func Graph(w io.Writer, s *session.Session, spec cutoff.Spec) error {
	if s.PrintMode == protocol.PrintModeC {
		return ErrModeUnsupported
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Mode %s - %s", s.PrintMode, s.RateMode)
	p.Add(plotter.NewGrid())

	var err error
	switch s.Mode {
	case session.ModeA:
		err = buildModeA(p, s, spec)
	case session.ModeB:
		err = buildModeB(p, s, spec)
	}
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(graphWidth, graphHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// buildModeA plots the accumulated rate of a mechanical watch, the
// classic timegrapher trace. A horizontal cutoff wraps the day axis; a
// vertical cutoff clips the accumulated seconds.
func buildModeA(p *plot.Plot, s *session.Session, spec cutoff.Spec) error {
	p.X.Label.Text = "Days"
	p.Y.Label.Text = "Cumulated seconds"

	wrapDays := math.Inf(1)
	if spec.Orientation == cutoff.Horizontal && !spec.Limit.Unbounded {
		wrapDays = spec.Limit.Value
	}

	cum := 0.0
	points := map[session.Status]plotter.XYs{}
	for i, m := range s.Measurements {
		cum += m.Value
		x := float64(i) / protocol.MeasuresPerDay
		if !math.IsInf(wrapDays, 1) {
			x = math.Mod(x, wrapDays)
		}
		points[m.Status] = append(points[m.Status], plotter.XY{X: x, Y: cum})
	}

	if err := addStatusScatters(p, points); err != nil {
		return err
	}

	if spec.Orientation == cutoff.Vertical && !spec.Limit.Unbounded {
		p.Y.Min = -spec.Limit.Value
		p.Y.Max = spec.Limit.Value
	}
	if p.X.Max < 1 {
		p.X.Max = 1 // at least one device day of axis
	}
	p.X.Min = 0
	return nil
}

// buildModeB plots the per-second rate of a quartz watch: one line plus
// per-status markers.
func buildModeB(p *plot.Plot, s *session.Session, spec cutoff.Spec) error {
	p.Y.Label.Text = "Daily Rate (Sec/Day)"

	line := make(plotter.XYs, len(s.Measurements))
	points := map[session.Status]plotter.XYs{}
	for i, m := range s.Measurements {
		xy := plotter.XY{X: float64(i), Y: m.Value}
		line[i] = xy
		points[m.Status] = append(points[m.Status], xy)
	}

	l, err := plotter.NewLine(line)
	if err != nil {
		return err
	}
	p.Add(l)

	if err := addStatusScatters(p, points); err != nil {
		return err
	}

	if spec.Orientation == cutoff.Vertical && !spec.Limit.Unbounded {
		p.Y.Min = -spec.Limit.Value
		p.Y.Max = spec.Limit.Value
	} else {
		// Keep at least a one-second band so a flat trace stays legible.
		if p.Y.Max < 1 {
			p.Y.Max = 1
		}
		if p.Y.Min > -1 {
			p.Y.Min = -1
		}
	}
	return nil
}

func addStatusScatters(p *plot.Plot, points map[session.Status]plotter.XYs) error {
	for _, st := range []session.Status{session.Original, session.CorrectedError, session.Outlier} {
		xys := points[st]
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = statusColor(st)
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
	}
	return nil
}

func statusColor(st session.Status) color.Color {
	switch st {
	case session.CorrectedError:
		return colorCorrected
	case session.Outlier:
		return colorOutlier
	default:
		return colorOriginal
	}
}
