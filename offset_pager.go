package unigraph

import (
	"context"
	"fmt"
)

// RawOffsetPager is intended for API payloads.
type RawOffsetPager struct {
	// Number - zero based page number.
	Number int `json:"number"`
	// Size - number of records per page.
	Size int `json:"size"`
}

// Decode converts RawOffsetPager into *OffsetPager validating both fields.
func (p RawOffsetPager) Decode() (*OffsetPager, error) {
	return NewOffsetPager(p.Number, p.Size)
}

// OffsetPager selects page Number of Size records from a collection ordered
// by primary key ascending.
type OffsetPager struct {
	number int
	size   int
}

func NewOffsetPager(number, size int) (*OffsetPager, error) {
	if err := validatePageNumber(number); err != nil {
		return nil, err
	}
	if err := validateLimit(size); err != nil {
		return nil, err
	}

	return &OffsetPager{
		number: number,
		size:   size,
	}, nil
}

// GetNumber returns the zero based page number.
func (p *OffsetPager) GetNumber() int {
	if p == nil {
		return DefaultPageNumber
	}

	return p.number
}

// GetSize returns the page size.
func (p *OffsetPager) GetSize() int {
	if p == nil {
		return DefaultLimit
	}

	return p.size
}

// GetOffset returns the number of records preceding the page.
func (p *OffsetPager) GetOffset() int {
	return p.GetNumber() * p.GetSize()
}

// Range returns the storage range of the page.
func (p *OffsetPager) Range() Range {
	return Range{
		Operator: OperatorNone,
		Limit:    p.GetSize(),
		Offset:   p.GetOffset(),
	}
}

func (p *OffsetPager) validate() error {
	if p == nil {
		return fmt.Errorf("offset pager is nil")
	}

	if err := validatePageNumber(p.number); err != nil {
		return err
	}

	return validateLimit(p.size)
}

// Page is one page of an offset traversal.
type Page[T any] struct {
	// Items result elements.
	Items []T
	// Total number of elements in the collection.
	Total int64
}

// GetPage returns the page of kind described by pager. A page past the end
// of the collection is empty and still reports the total.
func GetPage[T Entity](ctx context.Context, st Storage, kind Kind[T], pager *OffsetPager) (*Page[T], error) {
	err := pager.validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate %s: %w", kind.Name(), err)
	}

	rows, total, err := fetchRangeWithTotal(ctx, st, kind.Collection(), kind.KeyField(), pager.Range())
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s page: %w", kind.Name(), err)
	}

	items, err := kind.FromRows(rows)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items: items,
		Total: total,
	}, nil
}

// GetAll returns every record of kind ordered by primary key.
func GetAll[T Entity](ctx context.Context, st Storage, kind Kind[T]) ([]T, error) {
	rows, err := st.FetchAll(ctx, kind.Collection(), kind.KeyField())
	if err != nil {
		return nil, fmt.Errorf("cannot fetch all %s: %w", kind.Name(), err)
	}

	return kind.FromRows(rows)
}

// GetOne returns the record of kind with the given key, or nil if there is
// none.
func GetOne[T Entity](ctx context.Context, st Storage, kind Kind[T], key int64) (*T, error) {
	row, err := st.FetchOne(ctx, kind.Collection(), kind.KeyField(), key)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s %d: %w", kind.Name(), key, err)
	}
	if row == nil {
		return nil, nil
	}

	item, err := kind.FromRow(row)
	if err != nil {
		return nil, err
	}

	return &item, nil
}
