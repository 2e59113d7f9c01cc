package ixgest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/fundlink/errors"
)

func TestParseTable(t *testing.T) {
	in := "\xEF\xBB\xBFdataset_title, description ,funding_source,PI_name\n" +
		"DS1,\"has, comma\",RFA-1;RFA-2,Jane Doe\n" +
		"DS2,short\n" +
		"DS3,NA,nan,N/A,extra\n" +
		"\n"

	tbl, err := ParseTable("datasets.csv", strings.NewReader(in), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"dataset_title", "description", "funding_source", "PI_name"}, tbl.Header)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"DS1", "has, comma", "RFA-1;RFA-2", "Jane Doe"}, tbl.Rows[0])
	assert.Equal(t, []string{"DS2", "short", "", ""}, tbl.Rows[1], "short rows are padded")
	assert.Equal(t, []string{"DS3", "", "", ""}, tbl.Rows[2], "NA tokens are missing, extra cells dropped")
}

func TestParseTable_TabDelimited(t *testing.T) {
	in := "grant_id\tgrant_org_name\nG1\tMayo Clinic, Rochester\n"
	tbl, err := ParseTable("grants.tsv", strings.NewReader(in), '\t')
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"G1", "Mayo Clinic, Rochester"}}, tbl.Rows)
}

func TestParseTable_Empty(t *testing.T) {
	_, err := ParseTable("empty.csv", strings.NewReader(""), ',')
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInputError(err))
}

func TestParseTable_LazyQuotes(t *testing.T) {
	in := "dataset_title,description\nDS,the \"Heart\" study\n"
	tbl, err := ParseTable("d.csv", strings.NewReader(in), ',')
	require.NoError(t, err)
	assert.Equal(t, `the "Heart" study`, tbl.Rows[0][1])
}

func TestRequire(t *testing.T) {
	tbl, err := ParseTable("programs.csv", strings.NewReader("program_id,program_name\n"), ',')
	require.NoError(t, err)

	cols, err := tbl.Require("program_name", "program_id")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, cols)

	_, err = tbl.Require("program_id", "award", "nofo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingColumn))
	assert.Contains(t, err.Error(), "award, nofo")
	assert.Contains(t, errors.FlattenHints(err), "program_id, program_name")
}

func TestOptional(t *testing.T) {
	tbl, err := ParseTable("datasets.csv", strings.NewReader("dataset_title,funding_source\nDS,RFA-1\n"), ',')
	require.NoError(t, err)

	cols := tbl.Optional("funding_source", "PI_name", "description")
	assert.Equal(t, []int{1, -1, -1}, cols)
	tbl.Optional("PI_name")
	assert.Equal(t, []string{"PI_name", "description"}, tbl.Absent)

	assert.Equal(t, "RFA-1", cell(tbl.Rows[0], cols[0]))
	assert.Equal(t, "", cell(tbl.Rows[0], cols[1]))
}
