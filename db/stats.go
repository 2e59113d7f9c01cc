package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/fundlink/export"
)

// TableStats counts the records of one relationship table and how many of
// them each rule flagged.
type TableStats struct {
	Table   string         `json:"table"`
	Records int            `json:"records"`
	Matches map[string]int `json:"matches"`
}

// Stats summarizes the stored run.
type Stats struct {
	RunID     string       `json:"run_id,omitempty"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	Datasets  int          `json:"datasets"`
	Semantic  bool         `json:"semantic"`
	Tables    []TableStats `json:"tables"`
}

// flagColumns lists the rule columns of each table, in display order.
var flagColumns = []struct {
	table   string
	columns []string
}{
	{export.TableProgram, []string{"funding_source_matching", "acronym_name_matching", "pi_matching"}},
	{export.TableProject, []string{"description_matching", "org_matching"}},
	{export.TableGrant, []string{"pi_matching", "funding_matching", "org_matching"}},
}

// GetStats reads the stored run and per-table record and match counts.
// An empty database yields zero counts and no run id.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRowContext(ctx,
		"SELECT run_id, created_at, datasets, semantic FROM relationship_runs",
	).Scan(&stats.RunID, &stats.CreatedAt, &stats.Datasets, &stats.Semantic)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, classify(err, "read run")
	}

	for _, fc := range flagColumns {
		query := "SELECT COUNT(*)"
		for _, c := range fc.columns {
			query += ", COALESCE(SUM(CASE WHEN " + c + " THEN 1 ELSE 0 END), 0)"
		}
		query += " FROM " + fc.table

		ts := TableStats{Table: fc.table, Matches: make(map[string]int, len(fc.columns))}
		counts := make([]int, len(fc.columns))
		dest := []interface{}{&ts.Records}
		for i := range counts {
			dest = append(dest, &counts[i])
		}
		if err := db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
			return nil, classify(err, "count "+fc.table)
		}
		for i, c := range fc.columns {
			ts.Matches[c] = counts[i]
		}
		stats.Tables = append(stats.Tables, ts)
	}
	return stats, nil
}

// FlagColumns returns the rule columns of table in display order.
func FlagColumns(table string) []string {
	for _, fc := range flagColumns {
		if fc.table == table {
			return fc.columns
		}
	}
	return nil
}
