package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		"sqlite3",
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", driver.Path),
	)
}

func (driver *driverSQLite) quote(identifier string) string {
	return quoteWith(identifier, "`")
}

func (driver *driverSQLite) generateLimit(limit Limit) string {
	if limit.Count == nil {
		if limit.Offset == 0 {
			return ""
		}

		return fmt.Sprintf("LIMIT -1 OFFSET %d", limit.Offset)
	}

	return fmt.Sprintf("LIMIT %d OFFSET %d", *limit.Count, limit.Offset)
}

func (driver *driverSQLite) usesNumberedParameters() bool {
	return false
}
