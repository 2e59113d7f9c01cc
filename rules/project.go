package rules

import (
	"context"
	"strings"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/similarity"
)

// OrgInDescription reports whether a non-empty organization name occurs in
// the dataset description. Both sides are compared trimmed and lower-cased.
func OrgInDescription(description, orgName string) bool {
	org := strings.ToLower(strings.TrimSpace(orgName))
	if org == "" {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(description)), org)
}

// ProjectOrgMatches reports whether the project organization is named in the
// dataset description.
func ProjectOrgMatches(d *entity.Dataset, p *entity.Project) bool {
	return OrgInDescription(d.Description, p.OrgName)
}

// ProjectText is the text embedded for a project: abstract then title,
// concatenated as given.
func ProjectText(p *entity.Project) string {
	return p.AbstractText + p.Title
}

// DescriptionSimilarity compares an already embedded dataset description
// with the project text. It returns false without calling the port when the
// project has no abstract. The flag is set iff similarity > threshold.
func DescriptionSimilarity(ctx context.Context, port similarity.Port, descVec []float32, p *entity.Project, threshold float64) (bool, float64, error) {
	if p.AbstractText == "" {
		return false, 0, nil
	}
	projVec, err := port.Embed(ctx, ProjectText(p))
	if err != nil {
		return false, 0, err
	}
	sim, err := port.Cosine(projVec, descVec)
	if err != nil {
		return false, 0, err
	}
	return sim > threshold, sim, nil
}
