package relate

import (
	"github.com/teranos/fundlink/evidence"
	"github.com/teranos/fundlink/rules"
)

// Flag is a rule outcome, rendered as "yes" or "no".
type Flag bool

func (f Flag) String() string {
	if f {
		return "yes"
	}
	return "no"
}

// MarshalText implements encoding.TextMarshaler.
func (f Flag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ProgramRelationship is the outcome of one dataset against one program.
type ProgramRelationship struct {
	Dataset     string `json:"datasets"`
	ProgramName string `json:"program"`
	ProgramID   string `json:"program_id"`

	FundingSource Flag `json:"funding_source_matching"`
	NameAcronym   Flag `json:"acronym_name_matching"`
	PI            Flag `json:"pi_matching"`

	FundingEvidence evidence.Set `json:"funding_evidence"`
	NameEvidence    evidence.Set `json:"name_evidence"`
	PIEvidence      []string     `json:"pi_evidence"`
}

// ProjectRelationship is the outcome of one dataset against one project.
type ProjectRelationship struct {
	Dataset   string `json:"datasets"`
	ProgramID string `json:"program_id"`
	ProjectID string `json:"project_id"`

	Description Flag `json:"description_matching"`
	Org         Flag `json:"org_matching"`

	// Similarity is the cosine score when it was computed.
	Similarity *float64 `json:"similarity,omitempty"`
}

// GrantRelationship is the outcome of one dataset against one grant.
type GrantRelationship struct {
	Dataset   string `json:"datasets"`
	GrantID   string `json:"grant_id"`
	ProjectID string `json:"project_id"`

	PI      Flag `json:"pi_matching"`
	Funding Flag `json:"funding_matching"`
	Org     Flag `json:"org_matching"`

	PIEvidence []string `json:"pi_evidence"`
}

// Result holds the three relationship collections of one pass, ordered by
// dataset then target.
type Result struct {
	Programs []ProgramRelationship
	Projects []ProjectRelationship
	Grants   []GrantRelationship
}

// Summary counts records and rule hits of a Result.
type Summary struct {
	Datasets int
	Records  map[Relationship]int
	Matches  map[rules.ID]int
}

// Summarize counts how often each rule fired.
func (r *Result) Summarize(datasets int) Summary {
	s := Summary{
		Datasets: datasets,
		Records: map[Relationship]int{
			RelationshipProgram: len(r.Programs),
			RelationshipProject: len(r.Projects),
			RelationshipGrant:   len(r.Grants),
		},
		Matches: make(map[rules.ID]int, len(rules.All)),
	}
	count := func(id rules.ID, f Flag) {
		if f {
			s.Matches[id]++
		}
	}
	for _, p := range r.Programs {
		count(rules.ProgramFunding, p.FundingSource)
		count(rules.ProgramNameAcronym, p.NameAcronym)
		count(rules.ProgramPI, p.PI)
	}
	for _, p := range r.Projects {
		count(rules.ProjectOrg, p.Org)
		count(rules.ProjectDescription, p.Description)
	}
	for _, g := range r.Grants {
		count(rules.GrantPI, g.PI)
		count(rules.GrantFunding, g.Funding)
		count(rules.GrantOrg, g.Org)
	}
	return s
}
