package database

import (
	"fmt"
	"strings"
)

type OperatorOfLogic interface {
	OperatorOfEvaluation
	hasAny() bool
}

type OperatorOfEvaluation interface {
	haveDriverRender(renderer *renderer) (statement, error)
}

type simpleOperatorOfLogic struct {
	operatorKeyword     string
	operatorsEvaluation []OperatorOfEvaluation
}

func (o simpleOperatorOfLogic) hasAny() bool {
	return len(o.operatorsEvaluation) > 0
}

func (o simpleOperatorOfLogic) haveDriverRender(renderer *renderer) (statement, error) {
	parts := []string{}
	parameters := map[string]any{}

	for _, x := range o.operatorsEvaluation {
		subStatement, err := x.haveDriverRender(renderer)
		if err != nil {
			return subStatement, err
		}

		parts = append(parts, subStatement.Query)
		for key, value := range subStatement.Parameters {
			parameters[key] = value
		}
	}

	return statement{
		Query:      fmt.Sprintf("(%s)", strings.Join(parts, " "+o.operatorKeyword+" ")),
		Parameters: parameters,
	}, nil
}

func And(operatorsEvaluation ...OperatorOfEvaluation) OperatorOfLogic {
	return simpleOperatorOfLogic{
		operatorKeyword:     "AND",
		operatorsEvaluation: operatorsEvaluation,
	}
}

func Or(operatorsEvaluation ...OperatorOfEvaluation) OperatorOfLogic {
	return simpleOperatorOfLogic{
		operatorKeyword:     "OR",
		operatorsEvaluation: operatorsEvaluation,
	}
}

func Equal(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: "=", Value: value}
}

func NotEqual(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: "<>", Value: value}
}

func GreaterThan(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: ">", Value: value}
}

func GreaterThanOrEqual(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: ">=", Value: value}
}

func LessThan(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: "<", Value: value}
}

func LessThanOrEqual(column string, value any) OperatorOfEvaluation {
	return simpleOperatorOfEquality{Column: column, Operator: "<=", Value: value}
}

func In(column string, values []any) OperatorOfEvaluation {
	return simpleOperatorOfMembership{Column: column, Values: values}
}

type simpleOperatorOfEquality struct {
	Column   string
	Operator string
	Value    any
}

func (o simpleOperatorOfEquality) haveDriverRender(renderer *renderer) (statement, error) {
	key := renderer.parameter()

	return statement{
		Query: fmt.Sprintf("%s %s %s", renderer.driver.quote(o.Column), o.Operator, key),
		Parameters: map[string]any{
			key: o.Value,
		},
	}, nil
}

type simpleOperatorOfMembership struct {
	Column string
	Values []any
}

func (o simpleOperatorOfMembership) haveDriverRender(renderer *renderer) (statement, error) {
	// An empty IN list is invalid SQL but means "matches nothing"
	if len(o.Values) == 0 {
		return statement{Query: "1 = 0", Parameters: map[string]any{}}, nil
	}

	key := renderer.parameter()

	return statement{
		Query: fmt.Sprintf("%s IN (%s)", renderer.driver.quote(o.Column), key),
		Parameters: map[string]any{
			key: o.Values,
		},
	}, nil
}
