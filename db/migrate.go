package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/sym"
)

// Migrations use types both SQLite and PostgreSQL accept.
//
//go:embed migrations/*.sql
var migrations embed.FS

// bootstrapVersion creates schema_migrations.
const bootstrapVersion = "000"

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order. logger may be nil.
func Migrate(db *sql.DB, driver string, log *zap.SugaredLogger) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, name := range files {
		version := migrationVersion(name)
		done, err := isApplied(db, driver, version)
		if err != nil {
			return errors.Wrapf(err, "check %s", name)
		}
		if done {
			continue
		}

		if log != nil {
			log.Infow("Applying migration", logger.FieldFile, name)
		}
		if err := applyMigration(db, driver, name, version); err != nil {
			return err
		}
		applied++
	}

	if log != nil {
		log.Infow("Schema up to date",
			"symbol", sym.DB,
			logger.FieldCount, applied,
		)
	}
	return nil
}

func migrationFiles() ([]string, error) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// migrationVersion is the numeric prefix of a migration file name.
func migrationVersion(name string) string {
	version, _, _ := strings.Cut(name, "_")
	return version
}

// isApplied reports whether version is recorded. Before the bootstrap
// migration runs there is no schema_migrations table; that only counts as
// "not applied" for the bootstrap itself.
func isApplied(db *sql.DB, driver, version string) (bool, error) {
	var exists bool
	err := db.QueryRow(
		Rebind(driver, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)"),
		version,
	).Scan(&exists)
	if err == nil {
		return exists, nil
	}
	if IsDatabaseClosed(err) || version != bootstrapVersion {
		return false, classify(err, "read schema_migrations")
	}
	return false, nil
}

func applyMigration(db *sql.DB, driver, name, version string) (err error) {
	script, err := migrations.ReadFile(path.Join("migrations", name))
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}

	tx, err := db.Begin()
	if err != nil {
		return classify(err, "begin "+name)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range splitStatements(string(script)) {
		if _, err = tx.Exec(stmt); err != nil {
			return classify(err, "execute "+name)
		}
	}
	if _, err = tx.Exec(Rebind(driver, "INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
		return classify(err, "record "+name)
	}
	if err = tx.Commit(); err != nil {
		return classify(err, "commit "+name)
	}
	return nil
}

// splitStatements drops comment lines and splits a migration on
// semicolons. Migrations contain no semicolons inside literals.
func splitStatements(script string) []string {
	var body strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	var out []string
	for _, s := range strings.Split(body.String(), ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
