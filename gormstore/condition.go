package gormstore

import (
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/unigraph"
)

// keyCondition is a single comparison Operator(Column, Value) over the
// primary key column.
type keyCondition struct {
	Column   string
	Value    int64
	Operator unigraph.Operator
}

// toGORMExpression converts the condition into an SQL condition
// "Column Operator ?" represented as a clause.Expression.
//
// Example:
//
//	keyCondition = { Column: "room_id", Operator: ">", Value: 4}
//
// Result:
//
//	clause.Expr{SQL: "room_id > ?", Vars: [4]}
func (c keyCondition) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{c.Value},
	}
}

func (c keyCondition) validate() error {
	if !c.Operator.Valid() {
		return fmt.Errorf("invalid key operator '%s'", c.Operator)
	}

	return unigraph.ValidateIdentifier(c.Column)
}

// matchingCondition builds "Column IN (keys...)". A single key degrades to
// "Column = key".
func matchingCondition(column string, keys []int64) clause.Expression {
	return clause.IN{
		Column: clause.Column{Name: column},
		Values: lo.ToAnySlice(keys),
	}
}

// equalCondition builds "Column = key".
func equalCondition(column string, key int64) clause.Expression {
	return clause.Eq{
		Column: clause.Column{Name: column},
		Value:  key,
	}
}
