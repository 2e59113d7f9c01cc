package commands

import (
	"strconv"

	"github.com/pterm/pterm"

	"github.com/teranos/fundlink/pipeline"
	"github.com/teranos/fundlink/relate"
	"github.com/teranos/fundlink/rules"
	"github.com/teranos/fundlink/sym"
)

// ruleGroups orders the summary table
var ruleGroups = []struct {
	glyph        string
	relationship relate.Relationship
	rules        []rules.ID
}{
	{sym.Program, relate.RelationshipProgram, []rules.ID{rules.ProgramFunding, rules.ProgramNameAcronym, rules.ProgramPI}},
	{sym.Project, relate.RelationshipProject, []rules.ID{rules.ProjectOrg, rules.ProjectDescription}},
	{sym.Grant, relate.RelationshipGrant, []rules.ID{rules.GrantPI, rules.GrantFunding, rules.GrantOrg}},
}

// summaryTable renders one row per rule, records repeated on the first row
// of each relationship
func summaryTable(s relate.Summary) pterm.TableData {
	data := pterm.TableData{{"Relationship", "Records", "Rule", "Matches"}}
	for _, g := range ruleGroups {
		for i, id := range g.rules {
			rel, records := "", ""
			if i == 0 {
				rel = g.glyph + " " + string(g.relationship)
				records = strconv.Itoa(s.Records[g.relationship])
			}
			data = append(data, []string{rel, records, string(id), strconv.Itoa(s.Matches[id])})
		}
	}
	return data
}

type outcomeReport struct {
	RunID      string         `json:"run_id"`
	Datasets   int            `json:"datasets"`
	Records    map[string]int `json:"records"`
	Matches    map[string]int `json:"matches"`
	Files      []string       `json:"files"`
	Stored     bool           `json:"stored"`
	DurationMS int64          `json:"duration_ms"`
}

func newOutcomeReport(out *pipeline.Outcome) outcomeReport {
	r := outcomeReport{
		RunID:      out.RunID,
		Datasets:   out.Summary.Datasets,
		Records:    make(map[string]int, len(out.Summary.Records)),
		Matches:    make(map[string]int, len(rules.All)),
		Files:      out.Files,
		Stored:     out.Stored,
		DurationMS: out.Duration.Milliseconds(),
	}
	if r.Files == nil {
		r.Files = []string{}
	}
	for rel, n := range out.Summary.Records {
		r.Records[string(rel)] = n
	}
	for _, id := range rules.All {
		r.Matches[string(id)] = out.Summary.Matches[id]
	}
	return r
}
