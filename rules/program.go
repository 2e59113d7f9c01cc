package rules

import (
	"strings"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/evidence"
)

// FundingSource matches program awards and NOFOs against the dataset
// description and funding-source tokens. The program matches iff the
// returned set is non-empty.
//
// Description matches accumulate into one payload per category. Funding
// source matches follow mode: under LastMatchWins the payload is replaced on
// every match, so only the last (identifier, token) pair survives.
// TODO: confirm with the data curators whether last-match-wins is wanted
// and drop LastMatchWins if not.
func FundingSource(d *entity.Dataset, p *entity.Program, mode Accumulation) evidence.Set {
	var set evidence.Set

	var awardsDesc *evidence.AwardsToDescription
	var awardsFS *evidence.AwardsToFundingSource
	for _, award := range p.Awards {
		if strings.Contains(d.Description, award) {
			if awardsDesc == nil {
				awardsDesc = &evidence.AwardsToDescription{Description: d.Description}
				set.Put(awardsDesc)
			}
			awardsDesc.Awards = append(awardsDesc.Awards, award)
		}
		for _, fs := range d.FundingSources {
			if !strings.Contains(fs, award) {
				continue
			}
			pair := evidence.AwardFundingSource{Award: award, FundingSource: fs}
			if awardsFS == nil || mode != AccumulateAll {
				awardsFS = &evidence.AwardsToFundingSource{}
				set.Put(awardsFS)
			}
			awardsFS.Matches = append(awardsFS.Matches, pair)
		}
	}

	var nofosDesc *evidence.NofosToDescription
	var nofosFS *evidence.NofosToFundingSource
	for _, nofo := range p.NOFOs {
		if strings.Contains(d.Description, nofo) {
			if nofosDesc == nil {
				nofosDesc = &evidence.NofosToDescription{Description: d.Description}
				set.Put(nofosDesc)
			}
			nofosDesc.NOFOs = append(nofosDesc.NOFOs, nofo)
		}
		for _, fs := range d.FundingSources {
			if !strings.Contains(fs, nofo) {
				continue
			}
			pair := evidence.NofoFundingSource{NOFO: nofo, FundingSource: fs}
			if nofosFS == nil || mode != AccumulateAll {
				nofosFS = &evidence.NofosToFundingSource{}
				set.Put(nofosFS)
			}
			nofosFS.Matches = append(nofosFS.Matches, pair)
		}
	}

	return set
}

// NameOrAcronym runs four independent substring checks of the program
// acronym and name against the dataset description and lower-cased title.
// An empty acronym or name never matches.
func NameOrAcronym(d *entity.Dataset, p *entity.Program) evidence.Set {
	var set evidence.Set
	title := strings.ToLower(d.Title)

	if p.Acronym != "" {
		if strings.Contains(d.Description, p.Acronym) {
			set.Put(&evidence.AcronymToDescription{Acronym: p.Acronym, Description: d.Description})
		}
		if strings.Contains(title, p.Acronym) {
			set.Put(&evidence.AcronymToTitle{Acronym: p.Acronym, Title: title})
		}
	}
	if p.Name != "" {
		if strings.Contains(d.Description, p.Name) {
			set.Put(&evidence.NameToDescription{Name: p.Name, Description: d.Description})
		}
		if strings.Contains(title, p.Name) {
			set.Put(&evidence.NameToTitle{Name: p.Name, Title: title})
		}
	}

	return set
}

// ProgramPIs returns the program PIs also listed on the dataset, in program
// order. Either list being empty short-circuits to no match.
func ProgramPIs(d *entity.Dataset, p *entity.Program) []string {
	if len(d.PIs) == 0 || len(p.PIs) == 0 {
		return nil
	}
	return intersect(d.PIs, p.PIs)
}

// intersect returns the elements of target that appear in source, in target
// order. Comparison is exact.
func intersect(source, target []string) []string {
	seen := make(map[string]struct{}, len(source))
	for _, s := range source {
		seen[s] = struct{}{}
	}
	var out []string
	for _, t := range target {
		if _, ok := seen[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
