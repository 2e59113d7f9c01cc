package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fundlink/entity"
	"github.com/teranos/fundlink/evidence"
	"github.com/teranos/fundlink/normalize"
)

func dataset(row entity.DatasetRow) *entity.Dataset {
	d := normalize.Dataset(row)
	return &d
}

func program(row entity.ProgramRow) *entity.Program {
	p := normalize.Program(row)
	return &p
}

func TestFundingSource_AwardInDescription(t *testing.T) {
	d := dataset(entity.DatasetRow{Description: "supported by award 1u01abc; NIH funded"})
	p := program(entity.ProgramRow{Award: "1U01ABC"})

	set := FundingSource(d, p, LastMatchWins)
	require.False(t, set.Empty())

	got, ok := set.Get(evidence.CategoryAwardsToDesc)
	require.True(t, ok)
	desc := got.(*evidence.AwardsToDescription)
	assert.Equal(t, []string{"1u01abc"}, desc.Awards)
	assert.Equal(t, "supported by award 1u01abc; nih funded", desc.Description)
}

func TestFundingSource_DescriptionMatchesAccumulate(t *testing.T) {
	d := dataset(entity.DatasetRow{Description: "awards a-1 and a-2 and n-1 and n-2"})
	p := program(entity.ProgramRow{Award: "a-1;a-2;a-9", NOFO: "n-1;n-2"})

	set := FundingSource(d, p, LastMatchWins)

	awards, _ := set.Get(evidence.CategoryAwardsToDesc)
	assert.Equal(t, []string{"a-1", "a-2"}, awards.(*evidence.AwardsToDescription).Awards)
	nofos, _ := set.Get(evidence.CategoryNofosToDesc)
	assert.Equal(t, []string{"n-1", "n-2"}, nofos.(*evidence.NofosToDescription).NOFOs)
}

func TestFundingSource_LastMatchWins(t *testing.T) {
	d := dataset(entity.DatasetRow{FundingSource: "NIH a-1; NIH a-2; a-1 and a-2"})
	p := program(entity.ProgramRow{Award: "a-1;a-2", NOFO: "nih;a-"})

	set := FundingSource(d, p, LastMatchWins)

	awards, ok := set.Get(evidence.CategoryAwardsToFundingSource)
	require.True(t, ok)
	assert.Equal(t,
		[]evidence.AwardFundingSource{{Award: "a-2", FundingSource: "a-1 and a-2"}},
		awards.(*evidence.AwardsToFundingSource).Matches,
		"only the last matching (award, funding source) pair survives")

	nofos, ok := set.Get(evidence.CategoryNofosToFundingSource)
	require.True(t, ok)
	assert.Equal(t,
		[]evidence.NofoFundingSource{{NOFO: "a-", FundingSource: "a-1 and a-2"}},
		nofos.(*evidence.NofosToFundingSource).Matches)
}

func TestFundingSource_AccumulateAll(t *testing.T) {
	d := dataset(entity.DatasetRow{FundingSource: "NIH a-1; NIH a-2; a-1 and a-2"})
	p := program(entity.ProgramRow{Award: "a-1;a-2"})

	set := FundingSource(d, p, AccumulateAll)

	awards, ok := set.Get(evidence.CategoryAwardsToFundingSource)
	require.True(t, ok)
	assert.Equal(t, []evidence.AwardFundingSource{
		{Award: "a-1", FundingSource: "nih a-1"},
		{Award: "a-1", FundingSource: "a-1 and a-2"},
		{Award: "a-2", FundingSource: "nih a-2"},
		{Award: "a-2", FundingSource: "a-1 and a-2"},
	}, awards.(*evidence.AwardsToFundingSource).Matches)
}

func TestFundingSource_CategoryOrderFollowsFirstMatch(t *testing.T) {
	d := dataset(entity.DatasetRow{Description: "mentions a-2", FundingSource: "a-1"})
	p := program(entity.ProgramRow{Award: "a-1;a-2"})

	set := FundingSource(d, p, LastMatchWins)
	assert.Equal(t,
		[]evidence.Category{evidence.CategoryAwardsToFundingSource, evidence.CategoryAwardsToDesc},
		set.Categories())
}

func TestFundingSource_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		d    entity.DatasetRow
		p    entity.ProgramRow
	}{
		{"all empty", entity.DatasetRow{}, entity.ProgramRow{}},
		{"program has no identifiers", entity.DatasetRow{Description: "anything", FundingSource: "x"}, entity.ProgramRow{}},
		{"dataset has nothing", entity.DatasetRow{}, entity.ProgramRow{Award: "a-1", NOFO: "n-1"}},
		{"no overlap", entity.DatasetRow{Description: "d", FundingSource: "f"}, entity.ProgramRow{Award: "zz", NOFO: "yy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []Accumulation{LastMatchWins, AccumulateAll} {
				assert.True(t, FundingSource(dataset(tt.d), program(tt.p), mode).Empty())
			}
		})
	}
}

func TestNameOrAcronym(t *testing.T) {
	t.Run("acronym not in title", func(t *testing.T) {
		d := dataset(entity.DatasetRow{Title: "Study of Heart Disease"})
		p := program(entity.ProgramRow{Acronym: "HD"})
		assert.True(t, NameOrAcronym(d, p).Empty())
	})

	t.Run("all four checks", func(t *testing.T) {
		d := dataset(entity.DatasetRow{
			Title:       "The TOPMed Trans-Omics Study",
			Description: "Part of trans-omics for precision medicine (TOPMed).",
		})
		p := program(entity.ProgramRow{Name: "Trans-Omics", Acronym: "TOPMed"})

		set := NameOrAcronym(d, p)
		assert.Equal(t, []evidence.Category{
			evidence.CategoryAcronymToDesc,
			evidence.CategoryAcronymToTitle,
			evidence.CategoryNameToDesc,
			evidence.CategoryNameToTitle,
		}, set.Categories())

		title, _ := set.Get(evidence.CategoryAcronymToTitle)
		assert.Equal(t, "the topmed trans-omics study", title.(*evidence.AcronymToTitle).Title)
	})

	t.Run("title only", func(t *testing.T) {
		d := dataset(entity.DatasetRow{Title: "NHLBI cohort"})
		p := program(entity.ProgramRow{Acronym: "nhlbi"})
		set := NameOrAcronym(d, p)
		assert.Equal(t, []evidence.Category{evidence.CategoryAcronymToTitle}, set.Categories())
	})

	t.Run("empty name and acronym never match", func(t *testing.T) {
		d := dataset(entity.DatasetRow{Title: "anything", Description: "anything"})
		assert.True(t, NameOrAcronym(d, program(entity.ProgramRow{})).Empty())
		assert.True(t, NameOrAcronym(dataset(entity.DatasetRow{}), program(entity.ProgramRow{})).Empty())
	})
}

func TestProgramPIs(t *testing.T) {
	t.Run("normalized exact match", func(t *testing.T) {
		d := dataset(entity.DatasetRow{PINames: "jane doe"})
		p := program(entity.ProgramRow{ContactPI: "Jane Doe"})
		assert.Equal(t, []string{"jane doe"}, ProgramPIs(d, p))
	})

	t.Run("substring is not a match", func(t *testing.T) {
		d := dataset(entity.DatasetRow{PINames: "jane doe-smith"})
		p := program(entity.ProgramRow{ContactPI: "jane doe"})
		assert.Empty(t, ProgramPIs(d, p))
	})

	t.Run("evidence follows program order", func(t *testing.T) {
		d := dataset(entity.DatasetRow{PINames: "c; a; b"})
		p := program(entity.ProgramRow{ContactPI: "b; x; a"})
		assert.Equal(t, []string{"b", "a"}, ProgramPIs(d, p))
	})

	t.Run("symmetric in content", func(t *testing.T) {
		a := dataset(entity.DatasetRow{PINames: "a; b; c"})
		b := dataset(entity.DatasetRow{PINames: "c; b; a"})
		p := program(entity.ProgramRow{ContactPI: "b; c"})
		assert.Equal(t, ProgramPIs(a, p), ProgramPIs(b, p))
	})

	t.Run("empty lists short-circuit", func(t *testing.T) {
		assert.Nil(t, ProgramPIs(dataset(entity.DatasetRow{}), program(entity.ProgramRow{ContactPI: "a"})))
		assert.Nil(t, ProgramPIs(dataset(entity.DatasetRow{PINames: "a"}), program(entity.ProgramRow{})))
	})
}
