// Package testing holds fixtures shared by package tests: input tables on
// disk and throwaway result databases.
package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// Input table file names used by WriteInputs.
const (
	DatasetsFile = "datasets.csv"
	ProgramsFile = "programs.csv"
	ProjectsFile = "projects.csv"
	GrantsFile   = "grants.csv"
)

// Inputs locates the four tables written by WriteInputs.
type Inputs struct {
	Dir      string
	Datasets string
	Programs string
	Projects string
	Grants   string
}

// WriteInputs writes files (name to contents) into a fresh temp directory.
// Tables missing from files are still located, so tests can assert on
// missing-file errors.
func WriteInputs(t *testing.T, files map[string]string) Inputs {
	t.Helper()

	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return Inputs{
		Dir:      dir,
		Datasets: filepath.Join(dir, DatasetsFile),
		Programs: filepath.Join(dir, ProgramsFile),
		Projects: filepath.Join(dir, ProjectsFile),
		Grants:   filepath.Join(dir, GrantsFile),
	}
}

// SQLiteDSN returns the path of a not yet existing SQLite database that is
// removed with the test's temp directory.
func SQLiteDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "fundlink.db")
}
