package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/evidence"
	"github.com/teranos/fundlink/export"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/relate"
)

const runsTable = "relationship_runs"

// Run identifies the pass whose records a Sink stores.
type Run struct {
	ID        string
	CreatedAt time.Time
	Datasets  int
	Semantic  bool
}

// Sink replaces the stored relationship tables with the records of a pass.
type Sink struct {
	db     *sql.DB
	driver string
	logger *zap.SugaredLogger
}

// NewSink creates a Sink on a migrated database.
func NewSink(db *sql.DB, driver string, log *zap.SugaredLogger) *Sink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sink{db: db, driver: driver, logger: log}
}

// Write stores res in a single transaction, deleting every earlier record
// first. On error nothing is changed.
func (s *Sink) Write(ctx context.Context, run Run, res *relate.Result) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin result transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{export.TableProgram, export.TableProject, export.TableGrant, runsTable} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return classify(err, "clear "+table)
		}
	}

	if _, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO relationship_runs (run_id, created_at, datasets, semantic) VALUES (?, ?, ?, ?)"),
		run.ID, run.CreatedAt.UTC(), run.Datasets, run.Semantic,
	); err != nil {
		return classify(err, "record run")
	}

	if err = s.insertPrograms(ctx, tx, run.ID, res.Programs); err != nil {
		return err
	}
	if err = s.insertProjects(ctx, tx, run.ID, res.Projects); err != nil {
		return err
	}
	if err = s.insertGrants(ctx, tx, run.ID, res.Grants); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return classify(err, "commit results")
	}

	s.logger.Infow("Results stored",
		logger.FieldRunID, run.ID,
		"driver", s.driver,
		"program_records", len(res.Programs),
		"project_records", len(res.Projects),
		"grant_records", len(res.Grants),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *Sink) insertPrograms(ctx context.Context, tx *sql.Tx, runID string, recs []relate.ProgramRelationship) error {
	stmt, err := s.prepare(ctx, tx, export.TableProgram,
		"run_id", "position", "dataset", "program_name", "program_id",
		"funding_source_matching", "acronym_name_matching", "pi_matching",
		"funding_evidence", "name_evidence", "pi_evidence")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range recs {
		funding, err := evidenceJSON(r.FundingEvidence)
		if err != nil {
			return err
		}
		names, err := evidenceJSON(r.NameEvidence)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, i, r.Dataset, r.ProgramName, r.ProgramID,
			bool(r.FundingSource), bool(r.NameAcronym), bool(r.PI),
			funding, names, strings.Join(r.PIEvidence, ";"),
		); err != nil {
			return errors.Wrapf(err, "insert %s row %d", export.TableProgram, i)
		}
	}
	return nil
}

func (s *Sink) insertProjects(ctx context.Context, tx *sql.Tx, runID string, recs []relate.ProjectRelationship) error {
	stmt, err := s.prepare(ctx, tx, export.TableProject,
		"run_id", "position", "dataset", "program_id", "project_id",
		"description_matching", "org_matching", "similarity")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range recs {
		var sim sql.NullFloat64
		if r.Similarity != nil {
			sim = sql.NullFloat64{Float64: *r.Similarity, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, i, r.Dataset, r.ProgramID, r.ProjectID,
			bool(r.Description), bool(r.Org), sim,
		); err != nil {
			return errors.Wrapf(err, "insert %s row %d", export.TableProject, i)
		}
	}
	return nil
}

func (s *Sink) insertGrants(ctx context.Context, tx *sql.Tx, runID string, recs []relate.GrantRelationship) error {
	stmt, err := s.prepare(ctx, tx, export.TableGrant,
		"run_id", "position", "dataset", "grant_id", "project_id",
		"pi_matching", "funding_matching", "org_matching", "pi_evidence")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range recs {
		if _, err := stmt.ExecContext(ctx, runID, i, r.Dataset, r.GrantID, r.ProjectID,
			bool(r.PI), bool(r.Funding), bool(r.Org), strings.Join(r.PIEvidence, ";"),
		); err != nil {
			return errors.Wrapf(err, "insert %s row %d", export.TableGrant, i)
		}
	}
	return nil
}

func (s *Sink) prepare(ctx context.Context, tx *sql.Tx, table string, columns ...string) (*sql.Stmt, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
	stmt, err := tx.PrepareContext(ctx, s.rebind(query))
	if err != nil {
		return nil, classify(err, "prepare "+table+" insert")
	}
	return stmt, nil
}

func (s *Sink) rebind(query string) string {
	return Rebind(s.driver, query)
}

func evidenceJSON(set evidence.Set) (string, error) {
	if set.Empty() {
		return "", nil
	}
	b, err := json.Marshal(set)
	if err != nil {
		return "", errors.Wrap(err, "encode evidence")
	}
	return string(b), nil
}
