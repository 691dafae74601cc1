package tensile

import (
	"math"

	"github.com/pkg/errors"
)

// AnalysisOptions are the parameters of Analyze.
type AnalysisOptions struct {
	// YieldOffset is the strain offset of the yield line, 0.002 for the 0.2% offset method.
	YieldOffset float64
	// Tolerance is the deviation from the elastic fit, as a fraction of the ultimate strength,
	// above which a point is considered out of the linear region.
	Tolerance float64
	// Consecutive is the number of successive deviating points ending the linear region.
	Consecutive int
	// MinElasticPoints is the minimum number of points of the linear region.
	MinElasticPoints int
	// ElasticStart is the fraction of the ultimate strength below which points are skipped,
	// to leave out the settling of the grips.
	ElasticStart float64
}

// DefaultAnalysisOptions returns the options used when none is given.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		YieldOffset:      0.002,
		Tolerance:        0.01,
		Consecutive:      3,
		MinElasticPoints: 5,
		ElasticStart:     0,
	}
}

// Validate checks the options are usable.
func (o AnalysisOptions) Validate() error {
	switch {
	case !(o.YieldOffset > 0) || math.IsInf(o.YieldOffset, 0):
		return errors.Wrapf(ErrInvalidOption, "yield offset must be positive, got %g", o.YieldOffset)
	case !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0):
		return errors.Wrapf(ErrInvalidOption, "tolerance must be positive, got %g", o.Tolerance)
	case o.Consecutive < 1:
		return errors.Wrapf(ErrInvalidOption, "consecutive must be at least 1, got %d", o.Consecutive)
	case o.MinElasticPoints < 2:
		return errors.Wrapf(ErrInvalidOption, "min elastic points must be at least 2, got %d", o.MinElasticPoints)
	case !(o.ElasticStart >= 0 && o.ElasticStart < 1):
		return errors.Wrapf(ErrInvalidOption, "elastic start must be in [0, 1), got %g", o.ElasticStart)
	}

	return nil
}

// AnalysisOption modifies the options of Analyze.
type AnalysisOption func(o *AnalysisOptions)

// WithOptions replaces every option.
func WithOptions(opts AnalysisOptions) AnalysisOption {
	return func(o *AnalysisOptions) {
		*o = opts
	}
}

func WithYieldOffset(offset float64) AnalysisOption {
	return func(o *AnalysisOptions) {
		o.YieldOffset = offset
	}
}

func WithTolerance(tolerance float64) AnalysisOption {
	return func(o *AnalysisOptions) {
		o.Tolerance = tolerance
	}
}

func WithConsecutive(consecutive int) AnalysisOption {
	return func(o *AnalysisOptions) {
		o.Consecutive = consecutive
	}
}

func WithMinElasticPoints(points int) AnalysisOption {
	return func(o *AnalysisOptions) {
		o.MinElasticPoints = points
	}
}

func WithElasticStart(fraction float64) AnalysisOption {
	return func(o *AnalysisOptions) {
		o.ElasticStart = fraction
	}
}
