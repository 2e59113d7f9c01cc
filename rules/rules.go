// Package rules implements the match predicates that relate a dataset to a
// program, project or grant.
//
// Every predicate is a pure function of normalized entities. None of them
// fail, and empty inputs never match.
package rules

// ID names a rule. The value is stable and used in logs and metrics.
type ID string

const (
	ProgramFunding     ID = "program_funding"
	ProgramNameAcronym ID = "program_name_acronym"
	ProgramPI          ID = "program_pi"
	ProjectOrg         ID = "project_org"
	ProjectDescription ID = "project_description"
	GrantPI            ID = "grant_pi"
	GrantFunding       ID = "grant_funding"
	GrantOrg           ID = "grant_org"
)

// All lists every rule in evaluation order.
var All = []ID{
	ProgramFunding, ProgramNameAcronym, ProgramPI,
	ProjectOrg, ProjectDescription,
	GrantPI, GrantFunding, GrantOrg,
}

// Accumulation controls how funding-source evidence collects pairs.
type Accumulation string

const (
	// LastMatchWins keeps only the last matching (identifier, funding source)
	// pair per category. Earlier matches for the same pair are dropped.
	LastMatchWins Accumulation = "last_match"
	// AccumulateAll keeps every matching pair in iteration order.
	AccumulateAll Accumulation = "accumulate"
)

// Valid reports whether a is a known accumulation mode.
func (a Accumulation) Valid() bool {
	return a == LastMatchWins || a == AccumulateAll
}
