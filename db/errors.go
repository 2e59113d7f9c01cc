package db

import (
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/teranos/fundlink/errors"
)

var (
	// ErrDatabaseClosed marks work issued against a closed *sql.DB.
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrDatabaseBusy marks a write that lost the SQLite file lock to
	// another process, typically a second fundlink pass on the same file.
	ErrDatabaseBusy = errors.New("database is busy")

	// ErrSchemaMissing marks a query against a table that was never created.
	ErrSchemaMissing = errors.New("relationship schema missing")
)

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// IsDatabaseClosed reports whether err comes from a closed database. database/sql
// returns an unexported error for this, so its message is matched as well.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// classify wraps a driver error with op and marks the failures a caller or
// user can act on. nil stays nil.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if IsDatabaseClosed(err) {
		return errors.Wrap(ErrDatabaseClosed, op)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return errors.WithHint(
				errors.Wrap(errors.Mark(err, ErrDatabaseBusy), op),
				"another process is writing the results database; retry once it finishes",
			)
		}
		if strings.HasPrefix(liteErr.Error(), "no such table") {
			return schemaMissing(err, op)
		}
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) && string(pgErr.Code) == undefinedTable {
		return schemaMissing(err, op)
	}

	return errors.Wrap(err, op)
}

func schemaMissing(err error, op string) error {
	return errors.WithHint(
		errors.Wrap(errors.Mark(err, ErrSchemaMissing), op),
		"run 'fundlink db migrate' to create the relationship tables",
	)
}
