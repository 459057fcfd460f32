package odata

import (
	"net/url"
	"strconv"
	"strings"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func (direction Direction) Valid() bool {
	return direction == Ascending || direction == Descending
}

type OrderBy struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

// Query is the decoded form of an OData query string. A field is only set
// when the matching parameter was present and not blank; Count is only ever
// true or omitted. The filter clauses are a conjunction.
type Query struct {
	Select  []string  `json:"select,omitempty"`
	Count   bool      `json:"count,omitempty"`
	Top     *uint64   `json:"top,omitempty"`
	Skip    *uint64   `json:"skip,omitempty"`
	OrderBy []OrderBy `json:"orderBy,omitempty"`
	Filter  []Clause  `json:"filter,omitempty"`
}

func (query Query) IsZero() bool {
	return len(query.Select) == 0 &&
		!query.Count &&
		query.Top == nil &&
		query.Skip == nil &&
		len(query.OrderBy) == 0 &&
		len(query.Filter) == 0
}

// Values renders the query back into parameters that decode to an equal
// Query with the same configuration.
func (query Query) Values(configFuncs ...DecoderConfigFunc) url.Values {
	keys := ResolveKeys(newDecoderConfig(configFuncs).withDollar)
	values := url.Values{}

	if len(query.Select) > 0 {
		values.Set(keys.Select, strings.Join(query.Select, ","))
	}

	if query.Count {
		values.Set(keys.Count, "true")
	}

	if query.Top != nil {
		values.Set(keys.Top, strconv.FormatUint(*query.Top, 10))
	}

	if query.Skip != nil {
		values.Set(keys.Skip, strconv.FormatUint(*query.Skip, 10))
	}

	if len(query.OrderBy) > 0 {
		items := []string{}
		for _, orderBy := range query.OrderBy {
			items = append(items, orderBy.Property+" "+string(orderBy.Direction))
		}
		values.Set(keys.OrderBy, strings.Join(items, ","))
	}

	if len(query.Filter) > 0 {
		clauses := []string{}
		for _, clause := range query.Filter {
			clauses = append(clauses, clause.String())
		}
		values.Set(keys.Filter, strings.Join(clauses, " "+conjunction+" "))
	}

	return values
}

// Encode is the query string form of Values. Parameters are sorted by key so
// equal queries always encode to the same string.
func (query Query) Encode(configFuncs ...DecoderConfigFunc) string {
	return query.Values(configFuncs...).Encode()
}
