package database

import (
	"context"
	"fmt"
	"slices"

	"github.com/lunagic/odata/odata"
)

// Collection exposes a single table to OData queries.
type Collection struct {
	Name           string          `yaml:"name"`
	Table          string          `yaml:"table"`
	Columns        []string        `yaml:"columns"`
	DefaultOrderBy []odata.OrderBy `yaml:"defaultOrderBy"`
	MaxTop         uint64          `yaml:"maxTop"`
}

// Page is a single page of results. Count is the total number of matching
// rows and is only set when the query asked for it.
type Page struct {
	Count *int64 `json:"@odata.count,omitempty"`
	Rows  []Row  `json:"value"`
}

func (collection Collection) table() string {
	if collection.Table == "" {
		return collection.Name
	}

	return collection.Table
}

// Validate checks every property the query refers to against Columns. A
// collection without Columns accepts anything.
func (collection Collection) Validate(query odata.Query) error {
	if len(collection.Columns) == 0 {
		return nil
	}

	check := func(column string) error {
		if !slices.Contains(collection.Columns, column) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
		}

		return nil
	}

	for _, column := range query.Select {
		if err := check(column); err != nil {
			return err
		}
	}

	for _, orderBy := range query.OrderBy {
		if err := check(orderBy.Property); err != nil {
			return err
		}
	}

	for _, clause := range query.Filter {
		if err := check(clause.Left); err != nil {
			return err
		}
	}

	return nil
}

func (collection Collection) Find(ctx context.Context, service *Service, query odata.Query) (Page, error) {
	if err := collection.Validate(query); err != nil {
		return Page{}, err
	}

	if len(query.OrderBy) == 0 {
		query.OrderBy = collection.DefaultOrderBy
	}

	if collection.MaxTop > 0 && (query.Top == nil || *query.Top > collection.MaxTop) {
		maxTop := collection.MaxTop
		query.Top = &maxTop
	}

	databaseQuery, err := FromOData(collection.table(), query)
	if err != nil {
		return Page{}, err
	}

	rows, err := service.Select(ctx, databaseQuery)
	if err != nil {
		return Page{}, err
	}

	page := Page{Rows: rows}
	if query.Count {
		count, err := service.Count(ctx, databaseQuery)
		if err != nil {
			return Page{}, err
		}
		page.Count = &count
	}

	return page, nil
}
