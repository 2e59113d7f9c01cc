// Package normalize converts raw table cells into the canonical comparable
// form used by the match rules.
//
// Nothing here fails: missing or odd input degrades to "" or an empty list.
package normalize

import (
	"strings"

	"github.com/teranos/fundlink/entity"
)

// DefaultDelimiter separates tokens in list-valued cells.
const DefaultDelimiter = ";"

// Scalar trims surrounding whitespace and lower-cases s.
// The missing value "" stays "".
func Scalar(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// List splits s on delim, trims and lower-cases each token and drops empty
// tokens. Order and duplicates are kept. A cell without the delimiter is a
// one-element list; a missing cell is an empty, non-nil list.
func List(s, delim string) []string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	parts := strings.Split(s, delim)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if tok := Scalar(p); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Dataset normalizes a dataset row.
func Dataset(row entity.DatasetRow) entity.Dataset {
	return entity.Dataset{
		Title:            row.Title,
		Description:      Scalar(row.Description),
		FundingSourceRaw: row.FundingSource,
		FundingSources:   List(row.FundingSource, DefaultDelimiter),
		PIs:              List(row.PINames, DefaultDelimiter),
	}
}

// Program normalizes a program row. The id passes through untouched.
func Program(row entity.ProgramRow) entity.Program {
	return entity.Program{
		ID:          row.ID,
		DisplayName: row.Name,
		Name:        Scalar(row.Name),
		Acronym:     Scalar(row.Acronym),
		Awards:      List(row.Award, DefaultDelimiter),
		NOFOs:       List(row.NOFO, DefaultDelimiter),
		PIs:         List(row.ContactPI, DefaultDelimiter),
	}
}

// Project normalizes a project row. Ids, title and abstract pass through.
func Project(row entity.ProjectRow) entity.Project {
	return entity.Project{
		ID:           row.ID,
		ProgramID:    row.ProgramID,
		OrgName:      Scalar(row.OrgName),
		Title:        row.Title,
		AbstractText: row.AbstractText,
	}
}

// Grant normalizes a grant row. Ids and the opportunity number pass through.
func Grant(row entity.GrantRow) entity.Grant {
	return entity.Grant{
		ID:                row.ID,
		ProjectID:         row.ProjectID,
		PIs:               List(row.PrincipalInvestigators, DefaultDelimiter),
		OpportunityNumber: row.OpportunityNumber,
		OrgName:           Scalar(row.OrgName),
	}
}
