package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/fundlink/errors"
)

func TestOpen(t *testing.T) {
	t.Run("opens sqlite database with pragmas", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(DriverSQLite, dbPath, zaptest.NewLogger(t).Sugar())
		require.NoError(t, err)
		defer db.Close()

		var journalMode string
		require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var busyTimeout int
		require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
		assert.Equal(t, SQLiteBusyTimeoutMS, busyTimeout)

		_, err = os.Stat(dbPath)
		assert.NoError(t, err, "database file created")
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		db, err := Open(DriverSQLite, "/invalid/nonexistent/path/db.sqlite", nil)
		if err == nil && db != nil {
			err = db.Ping()
			db.Close()
		}
		assert.Error(t, err)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := Open("mysql", "x", nil)
		require.Error(t, err)
	})
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	assert.Equal(t, q, Rebind(DriverSQLite, q))
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", Rebind(DriverPostgres, q))
	assert.Equal(t, "SELECT 1", Rebind(DriverPostgres, "SELECT 1"))
}

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "query")))
	assert.True(t, IsDatabaseClosed(errors.New("sql: database is closed")))
	assert.False(t, IsDatabaseClosed(errors.New("no such table")))
}
