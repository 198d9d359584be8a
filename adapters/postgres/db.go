package postgres

import (
	"strings"

	"policysim/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DriverFor picks the sql driver for a DATABASE_URL. postgres:// and
// postgresql:// URLs use lib/pq; file: and sqlite3:// URLs use go-sqlite3.
func DriverFor(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return "postgres", databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return "sqlite3", strings.TrimPrefix(databaseURL, "sqlite3://"), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return "sqlite3", databaseURL, nil
	default:
		return "", "", errors.ConfigInvalid("DATABASE_URL must start with postgres://, sqlite3:// or file:")
	}
}

// Open connects to the run-history database and verifies the connection
func Open(databaseURL string) (*sqlx.DB, error) {
	driver, dsn, err := DriverFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == "sqlite3" {
		// sqlite allows one writer; a shared in-memory database must also
		// stay on a single connection to remain visible.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
