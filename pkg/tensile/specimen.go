package tensile

import (
	"math"

	"github.com/pkg/errors"
)

// Specimen is the geometry of the tested piece.
type Specimen interface {
	// GaugeLength is the initial length over which the displacement is measured, in m.
	GaugeLength() float64
	// Area is the initial cross section area, in m².
	Area() float64
	// Validate checks every dimension is a positive finite number.
	Validate() error
}

// RoundSpecimen is a cylindrical specimen.
type RoundSpecimen struct {
	Length   float64
	Diameter float64
}

func (s RoundSpecimen) GaugeLength() float64 {
	return s.Length
}

func (s RoundSpecimen) Area() float64 {
	return math.Pi * s.Diameter * s.Diameter / 4
}

func (s RoundSpecimen) Validate() error {
	return validateDimensions(map[string]float64{"length": s.Length, "diameter": s.Diameter})
}

// RectangularSpecimen is a flat specimen.
type RectangularSpecimen struct {
	Length    float64
	Width     float64
	Thickness float64
}

func (s RectangularSpecimen) GaugeLength() float64 {
	return s.Length
}

func (s RectangularSpecimen) Area() float64 {
	return s.Width * s.Thickness
}

func (s RectangularSpecimen) Validate() error {
	return validateDimensions(map[string]float64{"length": s.Length, "width": s.Width, "thickness": s.Thickness})
}

func validateDimensions(dims map[string]float64) error {
	for _, name := range []string{"length", "diameter", "width", "thickness"} {
		v, ok := dims[name]
		if !ok {
			continue
		}
		if !(v > 0) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidSpecimen, "%s must be a positive number, got %g", name, v)
		}
	}

	return nil
}

var (
	_ Specimen = RoundSpecimen{}
	_ Specimen = RectangularSpecimen{}
)
