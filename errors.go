package unigraph

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the pagers, the loader and storage adapters.
//
// Validation errors are client input errors: they are returned before any
// storage call is made and must not be retried. Storage errors wrap
// connection or query failures reported by a Storage implementation.
var (
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")

	ErrLimitBelowMinimum      = fmt.Errorf("%w: limit below minimum", ErrValidation)
	ErrPageNumberBelowMinimum = fmt.Errorf("%w: page number below minimum", ErrValidation)
	ErrMalformedCursor        = fmt.Errorf("%w: malformed cursor", ErrValidation)
	ErrBackwardWithoutCursor  = fmt.Errorf("%w: backward traversal requires a starting cursor", ErrValidation)

	// ErrMalformedRow is returned by entity mappers for rows missing a
	// required field or carrying a value of an unexpected type.
	ErrMalformedRow = errors.New("malformed row")
)

// IsValidation reports whether err is a client input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStorage reports whether err originates from the storage layer.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
