package database

import (
	"fmt"
	"regexp"

	"github.com/lunagic/odata/odata"
)

var columnName = regexp.MustCompile(`^\w+$`)

// FromOData converts a decoded OData query into a Query against the given
// table. Column names must be plain identifiers, see Collection for
// restricting them to a known set.
func FromOData(table string, query odata.Query) (Query, error) {
	if err := checkColumnNames(query); err != nil {
		return Query{}, err
	}

	result := Query{
		Select: query.Select,
		From:   table,
	}

	conditions := []OperatorOfEvaluation{}
	for _, clause := range query.Filter {
		condition, err := fromClause(clause)
		if err != nil {
			return Query{}, err
		}

		conditions = append(conditions, condition)
	}

	if len(conditions) > 0 {
		result.Where = And(conditions...)
	}

	for _, orderBy := range query.OrderBy {
		result.OrderBy = append(result.OrderBy, Order{
			Column:     orderBy.Property,
			Descending: orderBy.Direction == odata.Descending,
		})
	}

	if query.Top != nil || query.Skip != nil {
		result.Limit = &Limit{Count: query.Top}
		if query.Skip != nil {
			result.Limit.Offset = *query.Skip
		}
	}

	return result, nil
}

func checkColumnNames(query odata.Query) error {
	names := append([]string{}, query.Select...)
	for _, orderBy := range query.OrderBy {
		names = append(names, orderBy.Property)
	}
	for _, clause := range query.Filter {
		names = append(names, clause.Left)
	}

	for _, name := range names {
		if !columnName.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidColumn, name)
		}
	}

	return nil
}

func fromClause(clause odata.Clause) (OperatorOfEvaluation, error) {
	if clause.Operator == odata.In {
		values := []any{}
		switch right := clause.Right.(type) {
		case odata.List:
			for _, element := range right {
				value, err := operandValue(element)
				if err != nil {
					return nil, err
				}
				values = append(values, value)
			}
		default:
			value, err := operandValue(right)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}

		return In(clause.Left, values), nil
	}

	value, err := operandValue(clause.Right)
	if err != nil {
		return nil, err
	}

	switch clause.Operator {
	case odata.Equal:
		return Equal(clause.Left, value), nil
	case odata.NotEqual:
		return NotEqual(clause.Left, value), nil
	case odata.GreaterThan:
		return GreaterThan(clause.Left, value), nil
	case odata.GreaterOrEqual:
		return GreaterThanOrEqual(clause.Left, value), nil
	case odata.LowerThan:
		return LessThan(clause.Left, value), nil
	case odata.LowerOrEqual:
		return LessThanOrEqual(clause.Left, value), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, clause.Operator)
	}
}

func operandValue(operand odata.Operand) (any, error) {
	switch value := operand.(type) {
	case odata.Integer:
		return int64(value), nil
	case odata.Float:
		return float64(value), nil
	case odata.Text:
		return string(value), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOperand, operand)
	}
}
