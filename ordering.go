package unigraph

import (
	"fmt"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

// DirectionFor maps a traversal direction flag to a key ordering.
func DirectionFor(forward bool) Direction {
	return lo.Ternary(forward, DirectionASC, DirectionDESC)
}

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

// OrderBy is an ordering by a single column.
type OrderBy struct {
	Column    string
	Direction Direction
}

var _availableColumnNameSymbols = append([]rune("_."), lo.AlphanumericCharset...)

// Validate checks the direction and guards against SQL injection by
// restricting the characters allowed in the column name.
func (o OrderBy) Validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	return ValidateIdentifier(o.Column)
}

// ToSQL returns "<column> <direction>".
func (o OrderBy) ToSQL() string {
	return fmt.Sprintf("%s %s", o.Column, o.Direction)
}

// ValidateIdentifier checks that a collection or column name is non-empty
// and consists of letters, digits, underscores and dots only.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}

	if !lo.Every(_availableColumnNameSymbols, []rune(name)) {
		return fmt.Errorf("identifier contains forbidden symbols '%s'", name)
	}

	return nil
}
