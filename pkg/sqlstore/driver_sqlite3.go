package sqlstore

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

// DriverSQLite3 is the cgo engine (github.com/mattn/go-sqlite3).
var DriverSQLite3 = Driver{
	Name: "sqlite3",
	DSN: func(path string) string {
		return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	},
	migrations: func(db *sql.DB) (database.Driver, error) {
		return sqlite3.WithInstance(db, &sqlite3.Config{})
	},
}
