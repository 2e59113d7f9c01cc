// Package export renders relationship results as tables and writes them as
// csv, xlsx or json files.
package export

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/teranos/fundlink/evidence"
	"github.com/teranos/fundlink/relate"
)

// Table names, used as file name stems and database table names.
const (
	TableProgram = "dataset_program_relationship"
	TableProject = "dataset_project_relationship"
	TableGrant   = "dataset_grant_relationship"
)

// Column headers.
var (
	ProgramHeader = []string{
		"datasets", "program", "program_id",
		"Funding Source Matching", "Acronym/Name Matching", "PI Matching",
		"Funding Evidence", "Acronym/Name Evidence", "PI Evidence",
	}
	ProjectHeader = []string{
		"datasets", "program_id", "project_id",
		"Description Matching", "Org Matching", "Description Similarity",
	}
	GrantHeader = []string{
		"datasets", "grant_id", "project_id",
		"PI Matching", "Funding Matching", "Org Matching", "PI Evidence",
	}
)

// Sheet is one relationship table as text cells.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Sheets renders res as the program, project and grant tables, in that order.
func Sheets(res *relate.Result) []Sheet {
	return []Sheet{ProgramSheet(res.Programs), ProjectSheet(res.Projects), GrantSheet(res.Grants)}
}

// ProgramSheet renders program relationships.
func ProgramSheet(recs []relate.ProgramRelationship) Sheet {
	s := Sheet{Name: TableProgram, Header: ProgramHeader, Rows: make([][]string, 0, len(recs))}
	for _, r := range recs {
		s.Rows = append(s.Rows, []string{
			r.Dataset, r.ProgramName, r.ProgramID,
			r.FundingSource.String(), r.NameAcronym.String(), r.PI.String(),
			evidenceCell(r.FundingEvidence), evidenceCell(r.NameEvidence), joinSlice(r.PIEvidence),
		})
	}
	return s
}

// ProjectSheet renders project relationships.
func ProjectSheet(recs []relate.ProjectRelationship) Sheet {
	s := Sheet{Name: TableProject, Header: ProjectHeader, Rows: make([][]string, 0, len(recs))}
	for _, r := range recs {
		s.Rows = append(s.Rows, []string{
			r.Dataset, r.ProgramID, r.ProjectID,
			r.Description.String(), r.Org.String(), similarityCell(r.Similarity),
		})
	}
	return s
}

// GrantSheet renders grant relationships.
func GrantSheet(recs []relate.GrantRelationship) Sheet {
	s := Sheet{Name: TableGrant, Header: GrantHeader, Rows: make([][]string, 0, len(recs))}
	for _, r := range recs {
		s.Rows = append(s.Rows, []string{
			r.Dataset, r.GrantID, r.ProjectID,
			r.PI.String(), r.Funding.String(), r.Org.String(), joinSlice(r.PIEvidence),
		})
	}
	return s
}

// evidenceCell encodes a non-empty evidence set as JSON.
func evidenceCell(s evidence.Set) string {
	if s.Empty() {
		return ""
	}
	b, err := json.Marshal(s)
	if err != nil {
		// Payloads are plain strings and slices
		return ""
	}
	return string(b)
}

func similarityCell(sim *float64) string {
	if sim == nil {
		return ""
	}
	return strconv.FormatFloat(*sim, 'f', 4, 64)
}

// joinSlice joins names with semicolons, the list delimiter of the inputs.
func joinSlice(slice []string) string {
	return strings.Join(slice, ";")
}
