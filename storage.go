package unigraph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Storage is the read capability the package needs from a relational store.
// Implementations must be safe for concurrent use; the package never writes.
type Storage interface {
	// FetchOne returns the row whose key field equals key, or nil when there
	// is no such row.
	FetchOne(ctx context.Context, collection, keyField string, key int64) (Row, error)
	// FetchAll returns every row of the collection ordered by key ascending.
	FetchAll(ctx context.Context, collection, keyField string) ([]Row, error)
	// FetchRange returns rows ordered and filtered according to r.
	FetchRange(ctx context.Context, collection, keyField string, r Range) ([]Row, error)
	// FetchMatching returns the rows whose key is one of keys. The order of
	// the result is not specified.
	FetchMatching(ctx context.Context, collection, keyField string, keys []int64) ([]Row, error)
	// Count returns the number of rows in the collection.
	Count(ctx context.Context, collection string) (int64, error)
}

// Range describes an ordered slice of a collection:
//
//	OperatorNone: all keys, ascending unless Order says otherwise
//	OperatorGT:   key > Value, ascending
//	OperatorLT:   key < Value, descending
//
// Limit must be positive. Offset skips rows after filtering and ordering.
type Range struct {
	Operator Operator
	Value    int64
	// Order overrides the ordering implied by Operator. Empty means implied.
	Order  Direction
	Limit  int
	Offset int
}

// Direction returns the key ordering of the range.
func (r Range) Direction() Direction {
	if r.Order != "" {
		return r.Order
	}

	return r.Operator.ForOrdering()
}

// OrderBy returns the ordering of the range over keyField.
func (r Range) OrderBy(keyField string) OrderBy {
	return OrderBy{Column: keyField, Direction: r.Direction()}
}

// fetchRangeWithTotal runs the range query and the count query concurrently.
// The first failure cancels the other query.
func fetchRangeWithTotal(ctx context.Context, st Storage, collection, keyField string, r Range) ([]Row, int64, error) {
	var (
		rows  []Row
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = st.FetchRange(gctx, collection, keyField, r)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = st.Count(gctx, collection)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
