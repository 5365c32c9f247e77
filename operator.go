package unigraph

import "fmt"

// Operator defines a comparison operator applied to the primary key when a
// range of rows is requested. The zero value means "no key condition".
type Operator string

func (o Operator) Valid() bool {
	return o == OperatorGT || o == OperatorLT
}

// IsNone reports whether the operator does not restrict the key.
func (o Operator) IsNone() bool {
	return o == OperatorNone
}

func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT, OperatorNone:
		return DirectionASC
	case OperatorLT:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

const (
	OperatorNone Operator = ""
	OperatorGT   Operator = ">"
	OperatorLT   Operator = "<"
)
