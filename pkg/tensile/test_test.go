package tensile_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

func TestSpecimen(t *testing.T) {
	t.Parallel()

	round := testSpecimen()
	require.NoError(t, round.Validate())
	assert.InEpsilon(t, testLength, round.GaugeLength(), 1e-12)
	assert.InEpsilon(t, math.Pi*testDiameter*testDiameter/4, round.Area(), 1e-12)

	flat := tensile.RectangularSpecimen{Length: 50e-3, Width: 12.5e-3, Thickness: 2e-3}
	require.NoError(t, flat.Validate())
	assert.InEpsilon(t, 25e-6, flat.Area(), 1e-12)

	tcs := map[string]tensile.Specimen{
		"zero diameter":      tensile.RoundSpecimen{Length: 1},
		"negative length":    tensile.RoundSpecimen{Length: -1, Diameter: 1},
		"nan diameter":       tensile.RoundSpecimen{Length: 1, Diameter: math.NaN()},
		"infinite thickness": tensile.RectangularSpecimen{Length: 1, Width: 1, Thickness: math.Inf(1)},
	}
	for name, specimen := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.ErrorIs(t, specimen.Validate(), tensile.ErrInvalidSpecimen)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := syntheticMeasurements()
	test, err := tensile.New("steel", m, testSpecimen())
	require.NoError(t, err)

	area := math.Pi * testDiameter * testDiameter / 4
	maxLocation := test.MaxForceIndex()
	assert.Equal(t, syntheticUltimateIndex, maxLocation)
	assert.Equal(t, maxLocation, test.MaxStressIndex())
	assert.InEpsilon(t, m.Displacement[maxLocation]/testLength, test.Strain[maxLocation], 1e-12)
	assert.InEpsilon(t, m.Force[maxLocation]/area, test.Stress[maxLocation], 1e-12)
	assert.InEpsilon(t, area, test.Area(), 1e-12)

	// the test owns copies of the series
	m.Force[maxLocation] = 0
	assert.NotZero(t, test.Force[maxLocation])
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		m        *tensile.Measurements
		specimen tensile.Specimen
		expected error
	}{
		"nil measurements": {
			specimen: testSpecimen(),
			expected: tensile.ErrNotEnoughData,
		},
		"nil specimen": {
			m:        syntheticMeasurements(),
			expected: tensile.ErrInvalidSpecimen,
		},
		"invalid specimen": {
			m:        syntheticMeasurements(),
			specimen: tensile.RoundSpecimen{Length: 1},
			expected: tensile.ErrInvalidSpecimen,
		},
		"length mismatch": {
			m:        &tensile.Measurements{Force: []float64{1, 2}, Displacement: []float64{1}, Time: []float64{1, 2}},
			specimen: testSpecimen(),
			expected: tensile.ErrLengthMismatch,
		},
		"single sample": {
			m:        &tensile.Measurements{Force: []float64{1}, Displacement: []float64{1}, Time: []float64{1}},
			specimen: testSpecimen(),
			expected: tensile.ErrNotEnoughData,
		},
		"infinite force": {
			m:        &tensile.Measurements{Force: []float64{1, math.Inf(1)}, Displacement: []float64{1, 2}, Time: []float64{1, 2}},
			specimen: testSpecimen(),
			expected: tensile.ErrInvalidValue,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := tensile.New("test", tc.m, tc.specimen)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeMeasurements(t, t.TempDir(), "tensile_steel_1045.csv", syntheticMeasurements())

	test, err := tensile.Load(path, testSpecimen())
	require.NoError(t, err)
	assert.Equal(t, "tensile_steel_1045", test.Name)
	assert.Equal(t, syntheticUltimateIndex, test.MaxForceIndex())
	assert.InEpsilon(t, syntheticUltimate, test.Stress[test.MaxStressIndex()], 1e-9)

	_, err = tensile.Load(filepath.Join(t.TempDir(), "nope.csv"), testSpecimen())
	assert.Error(t, err)
}

func TestTestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "steel", tensile.TestName("/data/tensile/steel.csv"))
	assert.Equal(t, "steel.v2", tensile.TestName("steel.v2.csv"))
	assert.Equal(t, "steel", tensile.TestName("steel"))
}

func TestTrueCurve(t *testing.T) {
	t.Parallel()

	test, err := tensile.New("steel", syntheticMeasurements(), testSpecimen())
	require.NoError(t, err)

	strain, stress := test.TrueCurve()
	require.Len(t, strain, syntheticUltimateIndex+1)
	require.Len(t, stress, syntheticUltimateIndex+1)

	last := syntheticUltimateIndex
	assert.InEpsilon(t, math.Log(1+test.Strain[last]), strain[last], 1e-12)
	assert.InEpsilon(t, test.Stress[last]*(1+test.Strain[last]), stress[last], 1e-12)
	assert.Greater(t, stress[last], test.Stress[last])
	assert.Less(t, strain[last], test.Strain[last])
}
