package rules

import (
	"strings"

	"github.com/teranos/fundlink/entity"
)

// GrantPIs returns the grant PIs also listed on the dataset, in grant order.
//
// Only an empty grant PI list short-circuits; a dataset-side guard that
// compared the PI list to the empty string could never hold. An empty
// dataset list still yields no match through the intersection.
func GrantPIs(d *entity.Dataset, g *entity.Grant) []string {
	if len(g.PIs) == 0 {
		return nil
	}
	return intersect(d.PIs, g.PIs)
}

// GrantFundingMatches reports whether the raw dataset funding source
// contains the grant opportunity number verbatim. No case folding is
// applied; both values must be present.
func GrantFundingMatches(d *entity.Dataset, g *entity.Grant) bool {
	if g.OpportunityNumber == "" || d.FundingSourceRaw == "" {
		return false
	}
	return strings.Contains(d.FundingSourceRaw, g.OpportunityNumber)
}

// GrantOrgMatches reports whether the grant organization is named in the
// dataset description.
func GrantOrgMatches(d *entity.Dataset, g *entity.Grant) bool {
	return OrgInDescription(d.Description, g.OrgName)
}
