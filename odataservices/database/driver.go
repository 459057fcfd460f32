package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRows              = errors.New("no rows found")
	ErrBlankQuery          = errors.New("blank query")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrInvalidColumn       = errors.New("invalid column name")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrUnsupportedOperand  = errors.New("unsupported operand")
)

type Driver interface {
	Open() (*sql.DB, error)
	quote(identifier string) string
	generateLimit(limit Limit) string
	usesNumberedParameters() bool
}

// renderer numbers the named parameters of one statement so the same column
// can appear in several conditions.
type renderer struct {
	driver  Driver
	counter int
}

func (r *renderer) parameter() string {
	r.counter++

	return fmt.Sprintf(":p%d", r.counter)
}

func generateSelect(driver Driver, query Query) (statement, error) {
	selects := []string{}
	for _, column := range query.Select {
		selects = append(selects, driver.quote(column))
	}

	if len(selects) == 0 {
		selects = append(selects, "*")
	}

	where, err := generateWhere(driver, query)
	if err != nil {
		return statement{}, err
	}

	queryString := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), driver.quote(query.From))
	queryString += where.Query

	if len(query.OrderBy) > 0 {
		orders := []string{}
		for _, order := range query.OrderBy {
			direction := "ASC"
			if order.Descending {
				direction = "DESC"
			}
			orders = append(orders, fmt.Sprintf("%s %s", driver.quote(order.Column), direction))
		}
		queryString += " ORDER BY " + strings.Join(orders, ", ")
	}

	if query.Limit != nil {
		if limit := driver.generateLimit(*query.Limit); limit != "" {
			queryString += " " + limit
		}
	}

	return statement{
		Query:      queryString,
		Parameters: where.Parameters,
	}, nil
}

func generateCount(driver Driver, query Query) (statement, error) {
	where, err := generateWhere(driver, query)
	if err != nil {
		return statement{}, err
	}

	return statement{
		Query:      fmt.Sprintf("SELECT COUNT(*) FROM %s", driver.quote(query.From)) + where.Query,
		Parameters: where.Parameters,
	}, nil
}

func generateWhere(driver Driver, query Query) (statement, error) {
	if query.Where == nil || !query.Where.hasAny() {
		return statement{Parameters: map[string]any{}}, nil
	}

	s, err := query.Where.haveDriverRender(&renderer{driver: driver})
	if err != nil {
		return statement{}, err
	}

	return statement{
		Query:      " WHERE " + s.Query,
		Parameters: s.Parameters,
	}, nil
}

func quoteWith(identifier string, quote string) string {
	return quote + strings.ReplaceAll(identifier, quote, quote+quote) + quote
}
