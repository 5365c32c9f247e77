package unigraph

import "fmt"

const (
	// MinLimit is the smallest page size and slice length a client may ask for.
	MinLimit = 1
	// DefaultLimit is used by API layers when a client omits the page size
	// or the slice length.
	DefaultLimit = 8
	// DefaultPageNumber is the first page.
	DefaultPageNumber = 0
)

func validateLimit(limit int) error {
	if limit < MinLimit {
		return fmt.Errorf("%w: got %d, want at least %d", ErrLimitBelowMinimum, limit, MinLimit)
	}

	return nil
}

func validatePageNumber(number int) error {
	if number < DefaultPageNumber {
		return fmt.Errorf("%w: got %d", ErrPageNumberBelowMinimum, number)
	}

	return nil
}
