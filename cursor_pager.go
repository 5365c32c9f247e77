package unigraph

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// RawCursorPager is intended for API payloads. For proper code generation, inline it:
//
//	type MyFilter struct {
//	    Paging RawCursorPager `json:",inline"`
//	}
type RawCursorPager struct {
	// Limit - maximum number of records to return in the response.
	Limit int `json:"limit"`
	// StartToken - base64-encoded cursor token obtained via Cursor.String().
	// If empty, the first Limit records of the forward sequence are returned.
	StartToken string `json:"startToken"`
	// Forward - traversal direction. Backward traversal requires StartToken.
	Forward bool `json:"forward"`
}

// Decode converts RawCursorPager into *CursorPager validating every field.
func (p RawCursorPager) Decode() (*CursorPager, error) {
	return DecodeCursorPager(p.Limit, p.StartToken, p.Forward)
}

// CursorPager walks the primary key order of a collection starting strictly
// after (forward) or before (backward) its cursor. It always fetches one
// lookahead record to determine whether the sequence continues.
type CursorPager struct {
	limit     int
	cursor    *Cursor
	direction Direction
}

func NewCursorPager() *CursorPager {
	return &CursorPager{
		limit:     DefaultLimit,
		direction: DirectionASC,
	}
}

// DecodeCursorPager validates client input and builds *CursorPager. The
// checks run in a fixed order: limit, direction of an empty cursor, cursor
// content.
func DecodeCursorPager(limit int, rawStartToken string, forward bool) (*CursorPager, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	// An empty cursor only means "start of the forward sequence".
	if rawStartToken == "" && !forward {
		return nil, ErrBackwardWithoutCursor
	}

	cursor, err := DecodeCursor(rawStartToken)
	if err != nil {
		return nil, err
	}

	return NewCursorPager().
		WithLimit(limit).
		WithCursor(cursor).
		WithForward(forward), nil
}

// WithLimit sets the maximum number of returned records.
func (c *CursorPager) WithLimit(limit int) *CursorPager {
	if c == nil {
		c = NewCursorPager()
	}

	c.limit = limit

	return c
}

// WithCursor sets the cursor explicitly.
func (c *CursorPager) WithCursor(cursor *Cursor) *CursorPager {
	if c == nil {
		c = NewCursorPager()
	}

	c.cursor = cursor

	return c
}

// WithForward sets the traversal direction.
func (c *CursorPager) WithForward(forward bool) *CursorPager {
	if c == nil {
		c = NewCursorPager()
	}

	c.direction = DirectionFor(forward)

	return c
}

// GetLimit returns the limit as it is stored in CursorPager.
func (c *CursorPager) GetLimit() int {
	if c == nil {
		return 0
	}

	return c.limit
}

// GetCursor returns the cursor stored in CursorPager as-is.
func (c *CursorPager) GetCursor() *Cursor {
	if c == nil {
		return nil
	}

	return c.cursor
}

// IsForward reports whether keys are walked in ascending order.
func (c *CursorPager) IsForward() bool {
	if c == nil {
		return true
	}

	return c.direction == DirectionASC
}

// GetDatasetLimit returns the limit adjusted for lookahead: GetLimit() + 1.
func (c *CursorPager) GetDatasetLimit() int {
	return c.GetLimit() + 1
}

// Range returns the storage range for the next slice:
//   - empty cursor → all keys ascending;
//   - forward → key > cursor ascending;
//   - backward → key < cursor descending;
//   - backward from a cursor past every key → all keys descending.
func (c *CursorPager) Range() Range {
	if c.GetCursor().IsEmpty() {
		return Range{
			Operator: OperatorNone,
			Limit:    c.GetDatasetLimit(),
		}
	}

	if c.cursor.IsPastKeys() && !c.IsForward() {
		return Range{
			Operator: OperatorNone,
			Order:    DirectionDESC,
			Limit:    c.GetDatasetLimit(),
		}
	}

	return Range{
		Operator: c.direction.ForOperator(),
		Value:    c.cursor.Key(),
		Limit:    c.GetDatasetLimit(),
	}
}

func (c *CursorPager) validate() error {
	if c == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	if err := validateLimit(c.limit); err != nil {
		return err
	}

	if !c.direction.Valid() {
		return fmt.Errorf("invalid traversal direction '%s'", c.direction)
	}

	if c.cursor.IsEmpty() && c.direction != DirectionASC {
		return ErrBackwardWithoutCursor
	}

	return nil
}

// IsLastPage returns true if the result set fetched with lookahead holds no
// more than Limit records, i.e. nothing follows it in the requested direction.
func IsLastPage[T any](initialPager *CursorPager, resultSet []T) bool {
	return len(resultSet) <= initialPager.GetLimit()
}

// TrimResultSet drops the lookahead record, if it was fetched. Suppose
// Limit = 2 and resultSet = [a, b, c]; the result is [a, b].
func TrimResultSet[T any](initialPager *CursorPager, resultSet []T) []T {
	if len(resultSet) > initialPager.GetLimit() {
		resultSet = resultSet[:initialPager.GetLimit()]
	}

	return resultSet
}

// CursorItem is a record together with the cursor positioned at it.
type CursorItem[T any] struct {
	Item   T
	Cursor *Cursor
}

// CursorPage is one slice of a cursor traversal.
type CursorPage[T any] struct {
	// Total number of records in the collection.
	Total int64
	// Items in traversal order.
	Items []CursorItem[T]
	// NextCursor is positioned at the last returned item regardless of the
	// direction, so it can continue the walk either way. Nil when Items is
	// empty.
	NextCursor *Cursor
	// End is true iff no further records exist in the requested direction.
	End bool
}

// NewCursorPage assembles a CursorPage from a result set fetched with
// initialPager.Range().
func NewCursorPage[T Entity](initialPager *CursorPager, resultSet []T, total int64) *CursorPage[T] {
	ret := &CursorPage[T]{
		Total: total,
		Items: []CursorItem[T]{},
		End:   true,
	}
	if len(resultSet) == 0 {
		return ret
	}

	ret.End = IsLastPage(initialPager, resultSet)
	resultSet = TrimResultSet(initialPager, resultSet)

	ret.Items = lo.Map(resultSet, func(item T, _ int) CursorItem[T] {
		return CursorItem[T]{
			Item:   item,
			Cursor: NewCursor(item.Key()),
		}
	})
	ret.NextCursor = lo.LastOrEmpty(ret.Items).Cursor

	return ret
}

// GetSlice returns the slice of kind described by pager together with the
// collection total. The range query and the count run concurrently.
func GetSlice[T Entity](ctx context.Context, st Storage, kind Kind[T], pager *CursorPager) (*CursorPage[T], error) {
	err := pager.validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate %s: %w", kind.Name(), err)
	}

	rows, total, err := fetchRangeWithTotal(ctx, st, kind.Collection(), kind.KeyField(), pager.Range())
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s slice: %w", kind.Name(), err)
	}

	items, err := kind.FromRows(rows)
	if err != nil {
		return nil, err
	}

	return NewCursorPage(pager, items, total), nil
}
