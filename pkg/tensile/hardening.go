package tensile

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// fitHollomon fits σ = K·εpⁿ in log-log space. Points with a non positive strain or stress
// are skipped. It returns NaN values when fewer than three points remain.
func fitHollomon(plasticStrain, stress []float64) (k, n float64) {
	logStrain := make([]float64, 0, len(plasticStrain))
	logStress := make([]float64, 0, len(stress))
	for i := range plasticStrain {
		if plasticStrain[i] <= 0 || stress[i] <= 0 {
			continue
		}
		logStrain = append(logStrain, math.Log(plasticStrain[i]))
		logStress = append(logStress, math.Log(stress[i]))
	}
	if len(logStrain) < 3 {
		return math.NaN(), math.NaN()
	}

	intercept, slope := stat.LinearRegression(logStrain, logStress, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return math.NaN(), math.NaN()
	}

	return math.Exp(intercept), slope
}

// hardening fits the Hollomon law on the true curve between from and the ultimate point.
func (t *Test) hardening(from int, modulus float64) (k, n float64) {
	trueStrain, trueStress := t.TrueCurve()
	if from < 0 || from >= len(trueStrain) {
		return math.NaN(), math.NaN()
	}

	plastic := make([]float64, 0, len(trueStrain)-from)
	stress := make([]float64, 0, len(trueStrain)-from)
	for i := from; i < len(trueStrain); i++ {
		plastic = append(plastic, trueStrain[i]-trueStress[i]/modulus)
		stress = append(stress, trueStress[i])
	}

	return fitHollomon(plastic, stress)
}
