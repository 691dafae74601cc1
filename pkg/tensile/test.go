package tensile

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Test is a tensile test: the recorded series and the curves derived from the specimen.
type Test struct {
	Name     string
	Specimen Specimen

	Force        []float64
	Displacement []float64
	Time         []float64

	// Strain is the engineering strain, displacement over gauge length.
	Strain []float64
	// Stress is the engineering stress, force over initial area, in Pa.
	Stress []float64
}

// New builds a test from measurements. The series are copied.
func New(name string, m *Measurements, specimen Specimen) (*Test, error) {
	if m == nil {
		return nil, errors.Wrap(ErrNotEnoughData, "measurements must be set")
	}
	if specimen == nil {
		return nil, errors.Wrap(ErrInvalidSpecimen, "specimen must be set")
	}
	err := specimen.Validate()
	if err != nil {
		return nil, err
	}

	n := len(m.Force)
	if len(m.Displacement) != n || len(m.Time) != n {
		return nil, errors.Wrapf(ErrLengthMismatch, "force %d, displacement %d, time %d", n, len(m.Displacement), len(m.Time))
	}
	if n < 2 {
		return nil, errors.Wrapf(ErrNotEnoughData, "%d samples", n)
	}
	for _, series := range [][]float64{m.Force, m.Displacement, m.Time} {
		if !allFinite(series) {
			return nil, errors.Wrap(ErrInvalidValue, "series contain NaN or infinite values")
		}
	}

	test := &Test{
		Name:         name,
		Specimen:     specimen,
		Force:        append([]float64(nil), m.Force...),
		Displacement: append([]float64(nil), m.Displacement...),
		Time:         append([]float64(nil), m.Time...),
		Strain:       make([]float64, n),
		Stress:       make([]float64, n),
	}

	floats.ScaleTo(test.Strain, 1/specimen.GaugeLength(), test.Displacement)
	floats.ScaleTo(test.Stress, 1/specimen.Area(), test.Force)

	return test, nil
}

// Load reads a CSV file and builds the test, named after the file without its extension.
func Load(path string, specimen Specimen, opts ...ReadOption) (*Test, error) {
	m, err := ReadFile(path, opts...)
	if err != nil {
		return nil, err
	}

	return New(TestName(path), m, specimen)
}

// TestName is the base name of path without extension.
func TestName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Len returns the number of samples.
func (t *Test) Len() int {
	return len(t.Force)
}

// Area returns the initial cross section area of the specimen.
func (t *Test) Area() float64 {
	return t.Specimen.Area()
}

// MaxForceIndex returns the index of the first maximum of the force.
func (t *Test) MaxForceIndex() int {
	return floats.MaxIdx(t.Force)
}

// MaxStressIndex returns the index of the first maximum of the stress.
func (t *Test) MaxStressIndex() int {
	return floats.MaxIdx(t.Stress)
}

// TrueCurve returns the true strain ln(1+ε) and true stress σ(1+ε) up to the ultimate point.
// Past it the specimen necks and the uniform deformation assumption no longer holds.
func (t *Test) TrueCurve() (strain, stress []float64) {
	last := t.MaxStressIndex()
	strain = make([]float64, last+1)
	stress = make([]float64, last+1)
	for i := 0; i <= last; i++ {
		strain[i] = math.Log1p(t.Strain[i])
		stress[i] = t.Stress[i] * (1 + t.Strain[i])
	}

	return strain, stress
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
