// Package plot draws the stress-strain curves of a tensile test.
//
// The output format is chosen from the file extension: png, svg, pdf, eps, jpg or tif.
package plot

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

// megapascal converts the stresses for the axis.
const megapascal = 1e6

var (
	curveColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	fitColor      = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	offsetColor   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	markerColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	secondary     = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	dashed        = []vg.Length{vg.Points(5), vg.Points(3)}
	markerSymbols = []draw.GlyphDrawer{draw.CircleGlyph{}, draw.TriangleGlyph{}, draw.SquareGlyph{}, draw.CrossGlyph{}}
)

type options struct {
	width, height vg.Length
}

// Option configures the figures.
type Option func(o *options)

// WithSize sets the size of the figure.
func WithSize(width, height vg.Length) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

func newOptions(opts []Option) options {
	o := options{width: 8 * vg.Inch, height: 5 * vg.Inch}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func newPlot(title, xLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "stress (MPa)"
	p.Legend.Top = true
	p.Legend.Left = false
	p.Add(plotter.NewGrid())

	return p
}

func curve(strain, stress []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(strain))
	for i := range strain {
		xys = append(xys, plotter.XY{X: strain[i], Y: stress[i] / megapascal})
	}

	return xys
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, dashes []vg.Length) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(err, "unable to draw %s", name)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	line.Dashes = dashes
	p.Add(line)
	p.Legend.Add(name, line)

	return nil
}

type marker struct {
	name           string
	strain, stress float64
}

// addMarkers draws the characteristic points. Points with NaN values are left out.
func addMarkers(p *plot.Plot, markers []marker) error {
	for i, m := range markers {
		if math.IsNaN(m.strain) || math.IsNaN(m.stress) {
			continue
		}
		scatter, err := plotter.NewScatter(plotter.XYs{{X: m.strain, Y: m.stress / megapascal}})
		if err != nil {
			return errors.Wrapf(err, "unable to draw %s", m.name)
		}
		scatter.GlyphStyle.Color = markerColor
		scatter.GlyphStyle.Radius = vg.Points(4)
		scatter.GlyphStyle.Shape = markerSymbols[i%len(markerSymbols)]
		p.Add(scatter)
		p.Legend.Add(m.name, scatter)
	}

	return nil
}

func save(p *plot.Plot, path string, o options) error {
	err := p.Save(o.width, o.height, path)
	if err != nil {
		return errors.Wrapf(err, "unable to save %s", path)
	}

	return nil
}

// Engineering draws the engineering stress-strain curve, the elastic fit, the offset line
// of the yield and the characteristic points of props.
func Engineering(test *tensile.Test, props *tensile.Properties, title, path string, opts ...Option) error {
	o := newOptions(opts)
	p := newPlot(title, "strain (-)")

	err := addLine(p, "engineering curve", curve(test.Strain, test.Stress), curveColor, nil)
	if err != nil {
		return err
	}

	// the lines stop at the ultimate strength so they do not flatten the curve
	top := props.UltimateStrength
	elastic := func(strain float64) float64 {
		return props.ElasticModulus*strain + props.ElasticIntercept
	}
	fitEnd := (top - props.ElasticIntercept) / props.ElasticModulus
	err = addLine(p, "elastic fit", plotter.XYs{
		{X: 0, Y: elastic(0) / megapascal},
		{X: fitEnd, Y: top / megapascal},
	}, fitColor, dashed)
	if err != nil {
		return err
	}

	err = addLine(p, "offset line", plotter.XYs{
		{X: props.YieldOffset, Y: elastic(0) / megapascal},
		{X: fitEnd + props.YieldOffset, Y: top / megapascal},
	}, offsetColor, dashed)
	if err != nil {
		return err
	}

	err = addMarkers(p, []marker{
		{"proportionality limit", props.ProportionalityStrain, props.ProportionalityStrength},
		{"yield", props.YieldStrain, props.YieldStrength},
		{"ultimate", props.UltimateStrain, props.UltimateStrength},
		{"fracture", props.FractureStrain, props.FractureStrength},
	})
	if err != nil {
		return err
	}
	p.Y.Min = math.Min(0, p.Y.Min)
	p.Y.Max = 1.1 * top / megapascal

	return save(p, path, o)
}

// True draws the true stress-strain curve up to the ultimate strength, over the
// engineering curve.
func True(test *tensile.Test, props *tensile.Properties, title, path string, opts ...Option) error {
	o := newOptions(opts)
	p := newPlot(title, "strain (-)")

	err := addLine(p, "engineering curve", curve(test.Strain, test.Stress), secondary, dashed)
	if err != nil {
		return err
	}

	trueStrain, trueStress := test.TrueCurve()
	err = addLine(p, "true curve", curve(trueStrain, trueStress), curveColor, nil)
	if err != nil {
		return err
	}

	last := len(trueStrain) - 1
	err = addMarkers(p, []marker{
		{"ultimate", props.UltimateStrain, props.UltimateStrength},
		{"true ultimate", trueStrain[last], trueStress[last]},
	})
	if err != nil {
		return err
	}

	return save(p, path, o)
}
