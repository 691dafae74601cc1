package tensile

import (
	"math"

	"github.com/pkg/errors"
)

// Analyze derives the material properties of the test.
func (t *Test) Analyze(opts ...AnalysisOption) (*Properties, error) {
	o := DefaultAnalysisOptions()
	for _, opt := range opts {
		opt(&o)
	}
	err := o.Validate()
	if err != nil {
		return nil, err
	}

	ultimate := t.MaxStressIndex()
	if !(t.Stress[ultimate] > 0) {
		return nil, errors.Wrap(ErrElasticRegion, "the stress is never positive")
	}

	fit, err := fitElastic(t.Strain, t.Stress, ultimate, o)
	if err != nil {
		return nil, err
	}

	last := t.Len() - 1
	props := &Properties{
		ElasticModulus:          fit.modulus,
		ElasticIntercept:        fit.intercept,
		ElasticRSquared:         fit.rSquared,
		ProportionalityIndex:    fit.limit,
		ProportionalityStrength: t.Stress[fit.limit],
		ProportionalityStrain:   t.Strain[fit.limit],
		UltimateIndex:           ultimate,
		UltimateStrength:        t.Stress[ultimate],
		UltimateStrain:          t.Strain[ultimate],
		FractureStrength:        t.Stress[last],
		FractureStrain:          t.Strain[last],
		YieldOffset:             o.YieldOffset,
		YieldIndex:              -1,
		YieldStrength:           math.NaN(),
		YieldStrain:             math.NaN(),
		StrengthCoefficient:     math.NaN(),
		HardeningExponent:       math.NaN(),
	}

	props.ElongationAfterFracture = props.FractureStrain - props.FractureStrength/props.ElasticModulus
	props.Toughness = t.toughness()

	idx, strain, stress, found := t.offsetYield(fit, ultimate, o.YieldOffset)
	if found {
		props.YieldIndex = idx
		props.YieldStrain = strain
		props.YieldStrength = stress
		props.Resilience = stress * stress / (2 * fit.modulus)
		props.StrengthCoefficient, props.HardeningExponent = t.hardening(idx, fit.modulus)
	} else {
		props.Resilience = props.ProportionalityStrength * props.ProportionalityStrength / (2 * fit.modulus)
	}

	return props, nil
}

// offsetYield finds the first crossing of the curve with the elastic line shifted by offset,
// between the proportionality limit and the ultimate point. The unloading after the ultimate
// point is not searched: the drop of a brittle fracture would cross the line. The crossing is
// interpolated between the two samples around it and idx is the first sample past the crossing.
func (t *Test) offsetYield(fit elasticFit, ultimate int, offset float64) (idx int, strain, stress float64, found bool) {
	gap := func(i int) float64 {
		return t.Stress[i] - (fit.modulus*(t.Strain[i]-offset) + fit.intercept)
	}

	prev := gap(fit.limit)
	for i := fit.limit + 1; i <= ultimate; i++ {
		curr := gap(i)
		if prev > 0 && curr <= 0 {
			ratio := prev / (prev - curr)
			strain = t.Strain[i-1] + ratio*(t.Strain[i]-t.Strain[i-1])
			stress = t.Stress[i-1] + ratio*(t.Stress[i]-t.Stress[i-1])

			return i, strain, stress, true
		}
		prev = curr
	}

	return -1, math.NaN(), math.NaN(), false
}

// toughness integrates the stress over the strain along the recorded path with the
// trapezoidal rule. The path is not required to be monotonic.
func (t *Test) toughness() float64 {
	var area float64
	for i := 1; i < t.Len(); i++ {
		area += (t.Stress[i] + t.Stress[i-1]) / 2 * (t.Strain[i] - t.Strain[i-1])
	}

	return area
}
