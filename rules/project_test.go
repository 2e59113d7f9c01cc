package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/normalize"
)

type stubPort struct {
	vectors map[string][]float32
	embeds  []string
	err     error
}

func (s *stubPort) Embed(ctx context.Context, text string) ([]float32, error) {
	s.embeds = append(s.embeds, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func (s *stubPort) Cosine(a, b []float32) (float64, error) {
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot, nil
}

func TestProjectOrgMatches(t *testing.T) {
	d := dataset(entity.DatasetRow{Description: "Data from Johns Hopkins University School of Medicine."})

	p := normalize.Project(entity.ProjectRow{OrgName: "Johns Hopkins University"})
	assert.True(t, ProjectOrgMatches(d, &p))

	other := normalize.Project(entity.ProjectRow{OrgName: "Mayo Clinic"})
	assert.False(t, ProjectOrgMatches(d, &other))

	missing := normalize.Project(entity.ProjectRow{})
	assert.False(t, ProjectOrgMatches(d, &missing), "missing org never matches")
	assert.False(t, ProjectOrgMatches(dataset(entity.DatasetRow{}), &missing))
}

func TestOrgInDescription_TrimsAndFolds(t *testing.T) {
	assert.True(t, OrgInDescription("  MAYO clinic research ", " Mayo Clinic "))
	assert.False(t, OrgInDescription("mayo clinic", "   "))
}

func TestDescriptionSimilarity(t *testing.T) {
	p := &entity.Project{Title: " Title", AbstractText: "Abstract"}
	port := &stubPort{vectors: map[string][]float32{"Abstract Title": {0.7}}}

	ok, sim, err := DescriptionSimilarity(context.Background(), port, []float32{1}, p, 0.6)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.7, sim, 1e-6)
	assert.Equal(t, []string{"Abstract Title"}, port.embeds, "abstract and title are concatenated as given")
}

func TestDescriptionSimilarity_ThresholdIsExclusive(t *testing.T) {
	p := &entity.Project{AbstractText: "a"}
	port := &stubPort{vectors: map[string][]float32{"a": {0.5}}}

	ok, _, err := DescriptionSimilarity(context.Background(), port, []float32{1}, p, 0.5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDescriptionSimilarity_NoAbstract(t *testing.T) {
	port := &stubPort{}
	ok, _, err := DescriptionSimilarity(context.Background(), port, []float32{1}, &entity.Project{Title: "t"}, 0.6)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, port.embeds)
}

func TestDescriptionSimilarity_ProviderError(t *testing.T) {
	port := &stubPort{err: errors.New("provider down")}
	_, _, err := DescriptionSimilarity(context.Background(), port, []float32{1}, &entity.Project{AbstractText: "a"}, 0.6)
	require.Error(t, err)
}
