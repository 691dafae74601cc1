package tensile_test

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/pkg/tensile"
)

// The synthetic material is linear elastic up to 400 MPa at 0.2% strain, hardens linearly
// up to 696 MPa at 15% strain, then necks linearly down to 600 MPa at 20% strain.
const (
	testLength   = 75.00e-3
	testDiameter = 10.00e-3

	syntheticModulus          = 200e9
	syntheticProportionality  = 400e6
	syntheticHardeningModulus = 2e9
	syntheticUltimate         = 696e6
	syntheticFracture         = 600e6
	syntheticElasticPoints    = 201
	syntheticUltimateIndex    = 496
)

func testSpecimen() tensile.RoundSpecimen {
	return tensile.RoundSpecimen{Length: testLength, Diameter: testDiameter}
}

func syntheticCurve() (strain, stress []float64) {
	for i := 0; i < syntheticElasticPoints; i++ {
		e := float64(i) * 1e-5
		strain = append(strain, e)
		stress = append(stress, syntheticModulus*e)
	}
	for k := 1; k <= 396; k++ {
		e := 0.002 + float64(k)*5e-4
		s := syntheticProportionality + syntheticHardeningModulus*(e-0.002)
		if k > 296 {
			s = syntheticUltimate + (syntheticFracture-syntheticUltimate)*(e-0.15)/0.05
		}
		strain = append(strain, e)
		stress = append(stress, s)
	}

	return strain, stress
}

func measurementsFromCurve(strain, stress []float64) *tensile.Measurements {
	area := testSpecimen().Area()
	m := &tensile.Measurements{}
	for i := range strain {
		m.Force = append(m.Force, stress[i]*area)
		m.Displacement = append(m.Displacement, strain[i]*testLength)
		m.Time = append(m.Time, float64(i)*0.1)
	}

	return m
}

func syntheticMeasurements() *tensile.Measurements {
	return measurementsFromCurve(syntheticCurve())
}

func writeMeasurements(t *testing.T, dir, name string, m *tensile.Measurements) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("time,displacement,force\n")
	for i := range m.Force {
		fmt.Fprintf(&b, "%s,%s,%s\n",
			tensile.FormatValue(m.Time[i]), tensile.FormatValue(m.Displacement[i]), tensile.FormatValue(m.Force[i]))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	return path
}

func syntheticYield() (strain, stress float64) {
	strain = 0.002 + syntheticProportionality/(syntheticModulus-syntheticHardeningModulus)
	stress = syntheticProportionality + syntheticHardeningModulus*(strain-0.002)

	return strain, stress
}

func syntheticToughness() float64 {
	elastic := syntheticProportionality * 0.002 / 2
	hardening := (syntheticProportionality + syntheticUltimate) / 2 * 0.148
	necking := (syntheticUltimate + syntheticFracture) / 2 * 0.05

	return elastic + hardening + necking
}

func isNaN(v float64) bool {
	return math.IsNaN(v)
}
