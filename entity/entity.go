// Package entity defines the dataset and funding entities fundlink relates.
//
// Row types hold table cells exactly as read; an empty string is a missing
// cell. The normalized types are produced once per evaluation by package
// normalize and are never mutated afterwards.
package entity

// DatasetRow is one row of the dataset table.
type DatasetRow struct {
	Title         string // dataset_title
	Description   string // description
	FundingSource string // funding_source, semicolon-delimited
	PINames       string // PI_name, semicolon-delimited
}

// ProgramRow is one row of the program table.
type ProgramRow struct {
	ID        string // program_id
	Name      string // program_name
	Acronym   string // program_acronym
	NOFO      string // nofo, semicolon-delimited
	Award     string // award, semicolon-delimited
	ContactPI string // contact_pi, semicolon-delimited
}

// ProjectRow is one row of the project table.
type ProjectRow struct {
	ID           string // project_id
	ProgramID    string // program.program_id
	OrgName      string // project_org_name
	Title        string // project_title
	AbstractText string // project_abstract_text
}

// GrantRow is one row of the grant table.
type GrantRow struct {
	ID                     string // grant_id
	ProjectID              string // project.project_id
	PrincipalInvestigators string // principal_investigators, semicolon-delimited
	OpportunityNumber      string // grant_opportunity_number
	OrgName                string // grant_org_name
}

// Dataset is a dataset in comparable form.
type Dataset struct {
	// Title is kept as given; it identifies the dataset in every record and
	// is lower-cased only at comparison time.
	Title string
	// Description is trimmed and lower-cased.
	Description string
	// FundingSourceRaw is the untouched funding_source cell.
	FundingSourceRaw string
	FundingSources   []string
	PIs              []string
}

// Program is a funding program in comparable form.
type Program struct {
	ID string
	// DisplayName is program_name as given, used to label records.
	DisplayName string
	Name        string
	Acronym     string
	Awards      []string
	NOFOs       []string
	PIs         []string
}

// Project is a funded project in comparable form.
type Project struct {
	ID        string
	ProgramID string
	// OrgName is trimmed and lower-cased.
	OrgName string
	// Title and AbstractText are kept as given; they only feed the
	// similarity provider.
	Title        string
	AbstractText string
}

// Grant is a grant in comparable form.
type Grant struct {
	ID        string
	ProjectID string
	PIs       []string
	// OpportunityNumber is kept as given; it is compared verbatim against
	// the raw funding source.
	OpportunityNumber string
	// OrgName is trimmed and lower-cased.
	OrgName string
}

// Tables holds the four source tables of one evaluation pass.
type Tables struct {
	Datasets []DatasetRow
	Programs []ProgramRow
	Projects []ProjectRow
	Grants   []GrantRow
}
