package database

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	config := mysql.NewConfig()
	config.User = driver.config.User
	config.Passwd = driver.config.Pass
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", driver.config.Host, driver.config.Port)
	config.DBName = driver.config.Name
	config.ParseTime = true

	return sql.Open("mysql", config.FormatDSN())
}

func (driver *driverMySQL) quote(identifier string) string {
	return quoteWith(identifier, "`")
}

func (driver *driverMySQL) generateLimit(limit Limit) string {
	if limit.Count == nil {
		if limit.Offset == 0 {
			return ""
		}

		// MySQL has no OFFSET without LIMIT, the documented workaround is the largest BIGINT UNSIGNED
		return fmt.Sprintf("LIMIT %s OFFSET %d", strconv.FormatUint(^uint64(0), 10), limit.Offset)
	}

	return fmt.Sprintf("LIMIT %d OFFSET %d", *limit.Count, limit.Offset)
}

func (driver *driverMySQL) usesNumberedParameters() bool {
	return false
}
