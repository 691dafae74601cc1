package tensile

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Properties are the material properties derived from a test.
type Properties struct {
	ElasticModulus   float64
	ElasticIntercept float64
	ElasticRSquared  float64

	ProportionalityIndex    int
	ProportionalityStrength float64
	ProportionalityStrain   float64

	// YieldIndex is -1 when the curve never crosses the offset line.
	YieldOffset   float64
	YieldIndex    int
	YieldStrength float64
	YieldStrain   float64

	UltimateIndex    int
	UltimateStrength float64
	UltimateStrain   float64

	FractureStrength float64
	FractureStrain   float64

	ElongationAfterFracture float64
	Resilience              float64
	Toughness               float64

	StrengthCoefficient float64
	HardeningExponent   float64
}

// HasYield reports whether an offset yield point was found.
func (p *Properties) HasYield() bool {
	return p.YieldIndex >= 0 && !math.IsNaN(p.YieldStrength)
}

// Row is a named property with its unit.
type Row struct {
	Name   string
	Symbol string
	Value  float64
	Unit   string
}

// Rows lists the properties in a stable order.
func (p *Properties) Rows() []Row {
	return []Row{
		{"elastic_modulus", "E", p.ElasticModulus, "Pa"},
		{"proportionality_strength", "Sp", p.ProportionalityStrength, "Pa"},
		{"proportionality_strain", "ep", p.ProportionalityStrain, "-"},
		{"yield_strength", "Sy", p.YieldStrength, "Pa"},
		{"yield_strain", "ey", p.YieldStrain, "-"},
		{"ultimate_strength", "Su", p.UltimateStrength, "Pa"},
		{"ultimate_strain", "eu", p.UltimateStrain, "-"},
		{"fracture_strength", "Sf", p.FractureStrength, "Pa"},
		{"fracture_strain", "ef", p.FractureStrain, "-"},
		{"elongation_after_fracture", "A", p.ElongationAfterFracture, "-"},
		{"resilience", "Ur", p.Resilience, "J/m3"},
		{"toughness", "Ut", p.Toughness, "J/m3"},
		{"strength_coefficient", "K", p.StrengthCoefficient, "Pa"},
		{"hardening_exponent", "n", p.HardeningExponent, "-"},
	}
}

// Set assigns the property named like in Rows. It reports whether the name is known.
// The yield index is reset from the yield strength, other indices are left untouched.
func (p *Properties) Set(name string, value float64) bool {
	var field *float64
	switch name {
	case "elastic_modulus":
		field = &p.ElasticModulus
	case "proportionality_strength":
		field = &p.ProportionalityStrength
	case "proportionality_strain":
		field = &p.ProportionalityStrain
	case "yield_strength":
		field = &p.YieldStrength
	case "yield_strain":
		field = &p.YieldStrain
	case "ultimate_strength":
		field = &p.UltimateStrength
	case "ultimate_strain":
		field = &p.UltimateStrain
	case "fracture_strength":
		field = &p.FractureStrength
	case "fracture_strain":
		field = &p.FractureStrain
	case "elongation_after_fracture":
		field = &p.ElongationAfterFracture
	case "resilience":
		field = &p.Resilience
	case "toughness":
		field = &p.Toughness
	case "strength_coefficient":
		field = &p.StrengthCoefficient
	case "hardening_exponent":
		field = &p.HardeningExponent
	default:
		return false
	}
	*field = value
	if name == "yield_strength" {
		p.YieldIndex = -1
		if !math.IsNaN(value) {
			p.YieldIndex = 0
		}
	}

	return true
}

// FormatValue formats a property value, NaN included.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteSummary writes the properties as CSV: property, symbol, value, unit.
func WriteSummary(w io.Writer, p *Properties) error {
	writer := csv.NewWriter(w)
	err := writer.Write([]string{"property", "symbol", "value", "unit"})
	if err != nil {
		return errors.Wrap(err, "unable to write header")
	}
	for _, row := range p.Rows() {
		err = writer.Write([]string{row.Name, row.Symbol, FormatValue(row.Value), row.Unit})
		if err != nil {
			return errors.Wrapf(err, "unable to write %s", row.Name)
		}
	}
	writer.Flush()

	return errors.Wrap(writer.Error(), "unable to flush summary")
}

// SaveSummary writes the summary of the properties to path.
func SaveSummary(path string, p *Properties) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	err = WriteSummary(file, p)
	if err != nil {
		_ = file.Close()

		return err
	}

	return errors.Wrapf(file.Close(), "unable to close %s", path)
}
