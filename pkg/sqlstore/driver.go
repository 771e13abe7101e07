package sqlstore

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database"
)

// Driver describes one embedded relational backend. both drivers share the same schema and queries.
type Driver struct {
	// Name is the database/sql driver name.
	Name string
	// DSN turns a file path into a connection string with the driver's pragma syntax.
	DSN func(path string) string
	// migrations wraps an open handle for golang-migrate.
	migrations func(db *sql.DB) (database.Driver, error)
}

// Drivers lists the embedded backends by their configuration name.
func Drivers() map[string]Driver {
	return map[string]Driver{
		DriverSQLite.Name:  DriverSQLite,
		DriverSQLite3.Name: DriverSQLite3,
	}
}
