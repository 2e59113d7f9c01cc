package ixgest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
)

// Input column names
const (
	ColDatasetTitle       = "dataset_title"
	ColDatasetDescription = "description"
	ColDatasetFunding     = "funding_source"
	ColDatasetPI          = "PI_name"

	ColProgramName    = "program_name"
	ColProgramID      = "program_id"
	ColProgramAcronym = "program_acronym"
	ColProgramNOFO    = "nofo"
	ColProgramAward   = "award"
	ColProgramPI      = "contact_pi"

	ColProjectID        = "project_id"
	ColProjectProgramID = "program.program_id"
	ColProjectOrg       = "project_org_name"
	ColProjectTitle     = "project_title"
	ColProjectAbstract  = "project_abstract_text"

	ColGrantID          = "grant_id"
	ColGrantProjectID   = "project.project_id"
	ColGrantPIs         = "principal_investigators"
	ColGrantOpportunity = "grant_opportunity_number"
	ColGrantOrg         = "grant_org_name"
)

// Paths locates the four input tables.
type Paths struct {
	Datasets string
	Programs string
	Projects string
	Grants   string
}

// Files returns the paths in load order.
func (p Paths) Files() []string {
	return []string{p.Datasets, p.Programs, p.Projects, p.Grants}
}

// IngestResult summarizes one load.
type IngestResult struct {
	Datasets  int           `json:"datasets"`
	Programs  int           `json:"programs"`
	Projects  int           `json:"projects"`
	Grants    int           `json:"grants"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// Loader reads input tables into raw entity rows.
type Loader struct {
	delimiter rune
	logger    *zap.SugaredLogger
}

// NewLoader creates a Loader for tables separated by delimiter.
func NewLoader(delimiter rune, log *zap.SugaredLogger) *Loader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{delimiter: delimiter, logger: log}
}

// Load reads all four tables. An unreadable table or a missing identifier
// column fails the load. Other missing columns read as blank.
func (l *Loader) Load(ctx context.Context, paths Paths) (entity.Tables, *IngestResult, error) {
	res := &IngestResult{StartTime: time.Now()}
	var tables entity.Tables

	steps := []struct {
		name  string
		path  string
		count *int
		load  func(*Table) (int, error)
	}{
		{"datasets", paths.Datasets, &res.Datasets, func(t *Table) (n int, err error) {
			tables.Datasets, err = Datasets(t)
			return len(tables.Datasets), err
		}},
		{"programs", paths.Programs, &res.Programs, func(t *Table) (n int, err error) {
			tables.Programs, err = Programs(t)
			return len(tables.Programs), err
		}},
		{"projects", paths.Projects, &res.Projects, func(t *Table) (n int, err error) {
			tables.Projects, err = Projects(t)
			return len(tables.Projects), err
		}},
		{"grants", paths.Grants, &res.Grants, func(t *Table) (n int, err error) {
			tables.Grants, err = Grants(t)
			return len(tables.Grants), err
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return entity.Tables{}, nil, err
		}
		t, err := ReadTable(step.path, l.delimiter)
		if err != nil {
			return entity.Tables{}, nil, errors.Wrapf(err, "load %s table", step.name)
		}
		n, err := step.load(t)
		if err != nil {
			return entity.Tables{}, nil, errors.Wrapf(err, "load %s table", step.name)
		}
		*step.count = n
		if len(t.Absent) > 0 {
			l.logger.Warnw("Columns missing, read as blank",
				logger.FieldFile, step.path,
				"columns", t.Absent,
			)
		}
		l.logger.Debugw("Table loaded",
			logger.FieldFile, step.path,
			logger.FieldCount, n,
		)
	}

	res.Duration = time.Since(res.StartTime)
	l.logger.Infow("Input tables loaded",
		"datasets", res.Datasets,
		"programs", res.Programs,
		"projects", res.Projects,
		"grants", res.Grants,
		logger.FieldDurationMS, res.Duration.Milliseconds(),
	)
	return tables, res, nil
}

// Datasets maps a dataset table to rows. Only dataset_title is required.
func Datasets(t *Table) ([]entity.DatasetRow, error) {
	id, err := t.Require(ColDatasetTitle)
	if err != nil {
		return nil, err
	}
	c := t.Optional(ColDatasetDescription, ColDatasetFunding, ColDatasetPI)
	rows := make([]entity.DatasetRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, entity.DatasetRow{
			Title:         r[id[0]],
			Description:   cell(r, c[0]),
			FundingSource: cell(r, c[1]),
			PINames:       cell(r, c[2]),
		})
	}
	return rows, nil
}

// Programs maps a program table to rows. Only program_id is required.
func Programs(t *Table) ([]entity.ProgramRow, error) {
	id, err := t.Require(ColProgramID)
	if err != nil {
		return nil, err
	}
	c := t.Optional(ColProgramName, ColProgramAcronym, ColProgramNOFO, ColProgramAward, ColProgramPI)
	rows := make([]entity.ProgramRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, entity.ProgramRow{
			ID:        r[id[0]],
			Name:      cell(r, c[0]),
			Acronym:   cell(r, c[1]),
			NOFO:      cell(r, c[2]),
			Award:     cell(r, c[3]),
			ContactPI: cell(r, c[4]),
		})
	}
	return rows, nil
}

// Projects maps a project table to rows. Only project_id is required.
func Projects(t *Table) ([]entity.ProjectRow, error) {
	id, err := t.Require(ColProjectID)
	if err != nil {
		return nil, err
	}
	c := t.Optional(ColProjectProgramID, ColProjectOrg, ColProjectTitle, ColProjectAbstract)
	rows := make([]entity.ProjectRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, entity.ProjectRow{
			ID:           r[id[0]],
			ProgramID:    cell(r, c[0]),
			OrgName:      cell(r, c[1]),
			Title:        cell(r, c[2]),
			AbstractText: cell(r, c[3]),
		})
	}
	return rows, nil
}

// Grants maps a grant table to rows. Only grant_id is required.
func Grants(t *Table) ([]entity.GrantRow, error) {
	id, err := t.Require(ColGrantID)
	if err != nil {
		return nil, err
	}
	c := t.Optional(ColGrantProjectID, ColGrantPIs, ColGrantOpportunity, ColGrantOrg)
	rows := make([]entity.GrantRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, entity.GrantRow{
			ID:                     r[id[0]],
			ProjectID:              cell(r, c[0]),
			PrincipalInvestigators: cell(r, c[1]),
			OpportunityNumber:      cell(r, c[2]),
			OrgName:                cell(r, c[3]),
		})
	}
	return rows, nil
}
