// Package db stores relationship results in SQLite or PostgreSQL.
package db

import (
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/sym"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// SQLiteBusyTimeoutMS is how long SQLite waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// Open opens the result database. SQLite connections get WAL mode and a busy
// timeout; PostgreSQL connections are pinged.
// If logger is provided, logs database operations; otherwise operates silently.
func Open(driver, dsn string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "driver", driver, "symbol", sym.DB)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	switch driver {
	case DriverSQLite:
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = " + strconv.Itoa(SQLiteBusyTimeoutMS),
		}
		for _, p := range pragmas {
			if _, err := db.Exec(p); err != nil {
				db.Close()
				return nil, errors.Wrapf(err, "failed to apply %q", p)
			}
		}
	case DriverPostgres:
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, errors.WithHint(
				errors.Wrap(err, "failed to connect to postgres"),
				"check output.database.dsn or FUNDLINK_DATABASE_DSN")
		}
	default:
		db.Close()
		return nil, errors.Wrapf(errors.ErrUnsupported, "database driver %q", driver)
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"driver", driver,
			"symbol", sym.DB,
		)
	}
	return db, nil
}

// OpenWithMigrations opens the database and applies pending migrations.
func OpenWithMigrations(driver, dsn string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(driver, dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, driver, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return db, nil
}

// Rebind rewrites ? placeholders to the driver's bind syntax.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
