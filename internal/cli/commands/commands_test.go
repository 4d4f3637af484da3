package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/tsvdb"
	"github.com/nao1215/tsvdb/domain/model"
)

func TestNewImportCommand(t *testing.T) {
	t.Parallel()

	cmd := NewImportCommand()
	assert.Equal(t, "import <path>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	for _, flag := range []string{"table", "header", "delimiter", "sample-size", "batch-size", "quiet"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewExportCommand(t *testing.T) {
	t.Parallel()

	cmd := NewExportCommand()
	assert.NotEmpty(t, cmd.Short)
	for _, flag := range []string{"format", "compression", "page-size", "page", "pages", "all", "where"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestQueryCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tables", NewTablesCommand().Use)
	assert.Equal(t, "columns <table>", NewColumnsCommand().Use)
	assert.NotNil(t, NewSelectCommand().Flags().Lookup("where"))
	assert.NotNil(t, NewSearchCommand().Flags().Lookup("top-k"))
	assert.Equal(t, "insert <table> <value>...", NewInsertCommand().Use)
}

func TestParseWhere(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      []string
		want    tsvdb.SearchSession
		wantErr bool
	}{
		{name: "none", in: nil, want: tsvdb.SearchSession{}},
		{
			name: "two filters",
			in:   []string{"name=ali", " city = os"},
			want: tsvdb.NewContainsSearch([]string{"name", "city"}, []string{"ali", " os"}),
		},
		{name: "keyword with equals sign", in: []string{"expr=a=b"}, want: tsvdb.NewContainsSearch([]string{"expr"}, []string{"a=b"})},
		{name: "missing separator", in: []string{"name"}, wantErr: true},
		{name: "empty field", in: []string{"=x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseWhere(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageRange(t *testing.T) {
	t.Parallel()

	got, err := parsePageRange("2-5")
	require.NoError(t, err)
	assert.Equal(t, tsvdb.PageRange(2, 5), got)

	got, err = parsePageRange(" 3 - 3 ")
	require.NoError(t, err)
	assert.Equal(t, tsvdb.PageRange(3, 3), got)

	for _, bad := range []string{"", "3", "a-2", "1-b"} {
		_, err := parsePageRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderRows(&buf, &tsvdb.ResultSet{Columns: model.Columns{{Name: "name"}}})
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	renderRows(&buf, &tsvdb.ResultSet{
		Columns: model.Columns{{Name: "name"}, {Name: "age", Kind: model.KindInteger}},
		Rows: []tsvdb.StoredRow{
			{ID: 1, Values: model.Row{model.TextValue("alice"), model.IntegerValue(30)}},
			{ID: 2, Values: model.Row{model.TextValue("bob"), model.NullValue()}},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}
