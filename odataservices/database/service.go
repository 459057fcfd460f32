package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lunagic/odata/odataservices/database/internal/utils"
)

type Service struct {
	driver            Driver
	standardLibraryDB *sql.DB
	preRunFuncs       []func(ctx context.Context, statement string, args []any) error
	postRunFuncs      []func(ctx context.Context) error
}

func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}

	service := &Service{
		driver:            driver,
		standardLibraryDB: db,
		preRunFuncs:       []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:      []func(ctx context.Context) error{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			return nil, err
		}
	}

	return service, nil
}

func (service *Service) Ping() error {
	return service.standardLibraryDB.Ping()
}

func (service *Service) Close() error {
	return service.standardLibraryDB.Close()
}

// Select runs the query and returns every row keyed by column name.
func (service *Service) Select(ctx context.Context, query Query) ([]Row, error) {
	statement, err := generateSelect(service.driver, query)
	if err != nil {
		return nil, err
	}

	result := []Row{}
	if err := service.run(ctx, statement, func(preparedQuery string, preparedArgs []any) error {
		rows, err := service.standardLibraryDB.QueryContext(ctx, preparedQuery, preparedArgs...)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		columns, err := rows.Columns()
		if err != nil {
			return err
		}

		for rows.Next() {
			values := make([]any, len(columns))
			scanFields := make([]any, len(columns))
			for i := range values {
				scanFields[i] = &values[i]
			}

			if err := rows.Scan(scanFields...); err != nil {
				return err
			}

			row := Row{}
			for i, column := range columns {
				// Text protocols hand back raw bytes, callers want strings
				if raw, ok := values[i].([]byte); ok {
					row[column] = string(raw)
					continue
				}
				row[column] = values[i]
			}

			result = append(result, row)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// Count returns the number of rows matching the query's conditions, ignoring
// its ordering and limit.
func (service *Service) Count(ctx context.Context, query Query) (int64, error) {
	statement, err := generateCount(service.driver, query)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := service.run(ctx, statement, func(preparedQuery string, preparedArgs []any) error {
		err := service.standardLibraryDB.QueryRowContext(ctx, preparedQuery, preparedArgs...).Scan(&count)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoRows
		}

		return err
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// Exec runs a raw statement using ":name" parameters.
func (service *Service) Exec(ctx context.Context, query string, parameters map[string]any) (sql.Result, error) {
	var result sql.Result
	if err := service.run(ctx, statement{Query: query, Parameters: parameters}, func(preparedQuery string, preparedArgs []any) error {
		var err error
		result, err = service.standardLibraryDB.ExecContext(ctx, preparedQuery, preparedArgs...)

		return err
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (service *Service) run(
	ctx context.Context,
	statement statement,
	runner func(preparedQuery string, preparedArgs []any) error,
) error {
	preparedQuery, preparedArgs, err := utils.Prepare(statement.Query, statement.Parameters, service.driver.usesNumberedParameters())
	if err != nil {
		return err
	}

	if preparedQuery == "" {
		return ErrBlankQuery
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedQuery, preparedArgs); err != nil {
			return err
		}
	}

	if err := runner(preparedQuery, preparedArgs); err != nil {
		return err
	}

	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx); err != nil {
			return err
		}
	}

	return nil
}
