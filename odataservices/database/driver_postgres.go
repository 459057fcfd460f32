package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	return sql.Open(
		"postgres",
		fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			driver.config.Host,
			driver.config.Port,
			driver.config.User,
			driver.config.Pass,
			driver.config.Name,
		),
	)
}

func (driver *driverPostgres) quote(identifier string) string {
	return quoteWith(identifier, `"`)
}

func (driver *driverPostgres) generateLimit(limit Limit) string {
	parts := []string{}
	if limit.Count != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *limit.Count))
	}

	if limit.Offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", limit.Offset))
	}

	return strings.Join(parts, " ")
}

func (driver *driverPostgres) usesNumberedParameters() bool {
	return true
}
