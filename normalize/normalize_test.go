package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/fundlink/entity"
)

func TestScalar(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing", "", ""},
		{"whitespace only", " \t\n", ""},
		{"trims and lowers", "  Johns Hopkins University ", "johns hopkins university"},
		{"already normalized", "nhlbi", "nhlbi"},
		{"inner whitespace kept", "Heart  Disease", "heart  disease"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scalar(tt.in))
		})
	}
}

func TestScalar_Idempotent(t *testing.T) {
	inputs := []string{"", " A ", "RFA-HL-20-001", "Ünïcode Text ", "x;y", "\tMixed Case\n"}
	for _, in := range inputs {
		once := Scalar(in)
		assert.Equal(t, once, Scalar(once), "input %q", in)
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"missing", "", []string{}},
		{"no delimiter is one element", "Jane Doe", []string{"jane doe"}},
		{"splits trims lowers", " Jane Doe ; John SMITH", []string{"jane doe", "john smith"}},
		{"drops empty tokens", ";;a; ;b;", []string{"a", "b"}},
		{"keeps duplicates and order", "B;a;b", []string{"b", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := List(tt.in, DefaultDelimiter)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_CustomAndEmptyDelimiter(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, List("A|B", "|"))
	assert.Equal(t, []string{"a", "b"}, List("A;B", ""))
}

func TestList_Idempotent(t *testing.T) {
	first := List(" A ; b ;; C ", DefaultDelimiter)
	joined := ""
	for i, tok := range first {
		if i > 0 {
			joined += DefaultDelimiter
		}
		joined += tok
	}
	assert.Equal(t, first, List(joined, DefaultDelimiter))
}

func TestDataset(t *testing.T) {
	row := entity.DatasetRow{
		Title:         "Study of Heart Disease",
		Description:   "  Supported by award 1U01ABC; NIH funded ",
		FundingSource: "Funded under RFA-HL-20-001; NHLBI",
		PINames:       "Jane Doe",
	}
	got := Dataset(row)

	assert.Equal(t, "Study of Heart Disease", got.Title, "title is not pre-normalized")
	assert.Equal(t, "supported by award 1u01abc; nih funded", got.Description)
	assert.Equal(t, "Funded under RFA-HL-20-001; NHLBI", got.FundingSourceRaw)
	assert.Equal(t, []string{"funded under rfa-hl-20-001", "nhlbi"}, got.FundingSources)
	assert.Equal(t, []string{"jane doe"}, got.PIs)
}

func TestDataset_AllMissing(t *testing.T) {
	got := Dataset(entity.DatasetRow{})
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.FundingSourceRaw)
	assert.Empty(t, got.FundingSources)
	assert.Empty(t, got.PIs)
}

func TestProgram(t *testing.T) {
	got := Program(entity.ProgramRow{
		ID:        "Prog-01",
		Name:      " Heart Disease Program ",
		Acronym:   "HDP",
		NOFO:      "RFA-HL-20-001;PAR-19-100",
		Award:     "1U01ABC",
		ContactPI: "Jane Doe; John Smith",
	})

	assert.Equal(t, "Prog-01", got.ID, "ids are opaque")
	assert.Equal(t, "heart disease program", got.Name)
	assert.Equal(t, " Heart Disease Program ", got.DisplayName)
	assert.Equal(t, "hdp", got.Acronym)
	assert.Equal(t, []string{"rfa-hl-20-001", "par-19-100"}, got.NOFOs)
	assert.Equal(t, []string{"1u01abc"}, got.Awards)
	assert.Equal(t, []string{"jane doe", "john smith"}, got.PIs)
}

func TestProjectAndGrant(t *testing.T) {
	project := Project(entity.ProjectRow{
		ID: "P1", ProgramID: "Prog-01", OrgName: " Johns Hopkins University",
		Title: "Cardiac Imaging", AbstractText: "An Abstract",
	})
	assert.Equal(t, "johns hopkins university", project.OrgName)
	assert.Equal(t, "Cardiac Imaging", project.Title)
	assert.Equal(t, "An Abstract", project.AbstractText)
	assert.Equal(t, "Prog-01", project.ProgramID)

	grant := Grant(entity.GrantRow{
		ID: "G1", ProjectID: "P1", PrincipalInvestigators: "Jane Doe;",
		OpportunityNumber: "RFA-HL-20-001", OrgName: "MAYO Clinic ",
	})
	assert.Equal(t, []string{"jane doe"}, grant.PIs)
	assert.Equal(t, "RFA-HL-20-001", grant.OpportunityNumber, "opportunity number stays raw")
	assert.Equal(t, "mayo clinic", grant.OrgName)
}
