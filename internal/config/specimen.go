package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

const (
	ShapeRound       = "round"
	ShapeRectangular = "rectangular"

	UnitMetre      = "m"
	UnitMillimetre = "mm"
)

// SpecimenConfig describes the specimen shared by every test of a run.
type SpecimenConfig struct {
	Shape     string  `yaml:"shape"`
	Unit      string  `yaml:"unit"`
	Length    float64 `yaml:"length"`
	Diameter  float64 `yaml:"diameter,omitempty"`
	Width     float64 `yaml:"width,omitempty"`
	Thickness float64 `yaml:"thickness,omitempty"`
}

func (s SpecimenConfig) scale() (float64, error) {
	switch strings.ToLower(s.Unit) {
	case UnitMetre:
		return 1, nil
	case UnitMillimetre, "":
		return 1e-3, nil
	default:
		return 0, errors.Wrapf(ErrInvalidConfig, "unknown specimen unit %q", s.Unit)
	}
}

// Build returns the specimen in SI units.
func (s SpecimenConfig) Build() (tensile.Specimen, error) {
	scale, err := s.scale()
	if err != nil {
		return nil, err
	}

	var specimen tensile.Specimen
	switch strings.ToLower(s.Shape) {
	case ShapeRound, "":
		specimen = tensile.RoundSpecimen{Length: s.Length * scale, Diameter: s.Diameter * scale}
	case ShapeRectangular:
		specimen = tensile.RectangularSpecimen{Length: s.Length * scale, Width: s.Width * scale, Thickness: s.Thickness * scale}
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown specimen shape %q", s.Shape)
	}

	err = specimen.Validate()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return specimen, nil
}

// ColumnsConfig describes the CSV files written by the testing machine.
type ColumnsConfig struct {
	Force        string `yaml:"force"`
	Displacement string `yaml:"displacement"`
	// Time can be empty when the files have no time column.
	Time  string `yaml:"time"`
	Comma string `yaml:"comma"`
	// ForceScale converts the force column to N, 1000 for kN.
	ForceScale float64 `yaml:"force_scale"`
	// DisplacementScale converts the displacement column to m, 0.001 for mm.
	DisplacementScale float64 `yaml:"displacement_scale"`
}

// ReadOptions returns the options of tensile.ReadFile.
func (c ColumnsConfig) ReadOptions() []tensile.ReadOption {
	opts := []tensile.ReadOption{
		tensile.WithColumns(c.Force, c.Displacement, c.Time),
		tensile.WithForceScale(c.ForceScale),
		tensile.WithDisplacementScale(c.DisplacementScale),
	}
	if c.Comma != "" {
		opts = append(opts, tensile.WithComma([]rune(c.Comma)[0]))
	}

	return opts
}

// AnalysisConfig mirrors tensile.AnalysisOptions.
type AnalysisConfig struct {
	YieldOffset      float64 `yaml:"yield_offset"`
	Tolerance        float64 `yaml:"tolerance"`
	Consecutive      int     `yaml:"consecutive"`
	MinElasticPoints int     `yaml:"min_elastic_points"`
	ElasticStart     float64 `yaml:"elastic_start"`
}

func defaultAnalysis() AnalysisConfig {
	o := tensile.DefaultAnalysisOptions()

	return AnalysisConfig{
		YieldOffset:      o.YieldOffset,
		Tolerance:        o.Tolerance,
		Consecutive:      o.Consecutive,
		MinElasticPoints: o.MinElasticPoints,
		ElasticStart:     o.ElasticStart,
	}
}

// Options returns the options of tensile.Test.Analyze.
func (a AnalysisConfig) Options() tensile.AnalysisOptions {
	return tensile.AnalysisOptions{
		YieldOffset:      a.YieldOffset,
		Tolerance:        a.Tolerance,
		Consecutive:      a.Consecutive,
		MinElasticPoints: a.MinElasticPoints,
		ElasticStart:     a.ElasticStart,
	}
}
