package tensile

import "github.com/pkg/errors"

var (
	ErrMissingColumn   = errors.New("missing column")
	ErrInvalidValue    = errors.New("invalid value")
	ErrNotEnoughData   = errors.New("not enough data")
	ErrLengthMismatch  = errors.New("series length mismatch")
	ErrInvalidSpecimen = errors.New("invalid specimen")
	ErrInvalidOption   = errors.New("invalid option")
	ErrElasticRegion   = errors.New("unable to find the elastic region")
)
