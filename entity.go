package unigraph

import (
	"fmt"
)

// Entity is an immutable record identified by an integer primary key.
type Entity interface {
	Key() int64
}

// Kind describes where records of one entity kind live and how a storage
// row becomes a typed record.
//
// The mapper must be pure and total: it performs no I/O and rejects rows
// missing a required field with ErrMalformedRow instead of producing a
// partially filled record.
type Kind[T Entity] struct {
	name       string
	collection string
	keyField   string
	fromRow    func(Row) (T, error)
}

// NewKind panics if collection or keyField are not plain identifiers, since
// both end up in SQL text.
func NewKind[T Entity](name, collection, keyField string, fromRow func(Row) (T, error)) Kind[T] {
	if err := ValidateIdentifier(collection); err != nil {
		panic(fmt.Errorf("kind %s: invalid collection: %w", name, err))
	}
	if err := ValidateIdentifier(keyField); err != nil {
		panic(fmt.Errorf("kind %s: invalid key field: %w", name, err))
	}
	if fromRow == nil {
		panic(fmt.Errorf("kind %s: nil row mapper", name))
	}

	return Kind[T]{
		name:       name,
		collection: collection,
		keyField:   keyField,
		fromRow:    fromRow,
	}
}

// Name returns the human readable kind name.
func (k Kind[T]) Name() string {
	return k.name
}

// Collection returns the storage collection (table) name.
func (k Kind[T]) Collection() string {
	return k.collection
}

// KeyField returns the primary key column name.
func (k Kind[T]) KeyField() string {
	return k.keyField
}

// FromRow maps a single row.
func (k Kind[T]) FromRow(row Row) (T, error) {
	ret, err := k.fromRow(row)
	if err != nil {
		var empty T
		return empty, fmt.Errorf("cannot map %s row: %w", k.name, err)
	}

	return ret, nil
}

// FromRows maps rows preserving their order.
func (k Kind[T]) FromRows(rows []Row) ([]T, error) {
	ret := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := k.FromRow(row)
		if err != nil {
			return nil, err
		}

		ret = append(ret, item)
	}

	return ret, nil
}
