package tensile

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

type elasticFit struct {
	modulus   float64
	intercept float64
	rSquared  float64
	start     int
	// limit is the last point of the linear region.
	limit int
}

// linearSums accumulates the sums of a least squares line fit.
type linearSums struct {
	n, x, y, xx, xy float64
}

func (s *linearSums) add(x, y float64) {
	s.n++
	s.x += x
	s.y += y
	s.xx += x * x
	s.xy += x * y
}

func (s *linearSums) line() (slope, intercept float64, ok bool) {
	den := s.n*s.xx - s.x*s.x
	if den == 0 {
		return 0, 0, false
	}
	slope = (s.n*s.xy - s.x*s.y) / den
	intercept = (s.y - slope*s.x) / s.n

	return slope, intercept, true
}

// fitElastic grows a least squares line from the first point above the elastic start.
// Every new point is compared to the line fitted on the previous ones, and the region ends
// at the first run of o.Consecutive points deviating by more than o.Tolerance times the
// ultimate strength. Deviating points followed by a point back on the line are kept: they
// were noise.
func fitElastic(strain, stress []float64, ultimate int, o AnalysisOptions) (elasticFit, error) {
	start := 0
	threshold := o.ElasticStart * stress[ultimate]
	for start < ultimate && stress[start] < threshold {
		start++
	}

	var (
		sums         linearSums
		pending      []int
		limit        = start - 1
		maxDeviation = o.Tolerance * stress[ultimate]
	)

	for i := start; i <= ultimate; i++ {
		if int(sums.n) >= o.MinElasticPoints {
			slope, intercept, ok := sums.line()
			if ok && math.Abs(stress[i]-(slope*strain[i]+intercept)) > maxDeviation {
				pending = append(pending, i)
				if len(pending) >= o.Consecutive {
					break
				}

				continue
			}
		}
		for _, p := range pending {
			sums.add(strain[p], stress[p])
		}
		pending = pending[:0]
		sums.add(strain[i], stress[i])
		limit = i
	}

	if limit-start+1 < o.MinElasticPoints {
		return elasticFit{}, errors.Wrapf(ErrElasticRegion, "%d points in the linear region, %d required", limit-start+1, o.MinElasticPoints)
	}

	x := strain[start : limit+1]
	y := stress[start : limit+1]
	intercept, modulus := stat.LinearRegression(x, y, nil, false)
	if !(modulus > 0) || math.IsInf(modulus, 0) {
		return elasticFit{}, errors.Wrapf(ErrElasticRegion, "elastic modulus %g", modulus)
	}

	return elasticFit{
		modulus:   modulus,
		intercept: intercept,
		rSquared:  stat.RSquared(x, y, nil, intercept, modulus),
		start:     start,
		limit:     limit,
	}, nil
}
