package tsvdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/tsvdb/domain/model"
)

// seedTable imports content as a TSV file into table.
func seedTable(t *testing.T, store *Store, table, content string) {
	t.Helper()
	path := writeTestFile(t, t.TempDir(), table+".tsv", content)
	_, err := NewImporter(store, DefaultImportConfig()).Import(context.Background(), path, table)
	require.NoError(t, err)
}

func fruitsTSV() string {
	var b strings.Builder
	b.WriteString("name\tcolor\tprice\n")
	fruits := [][3]string{
		{"apple", "red", "120"},
		{"banana", "yellow", "80"},
		{"cherry", "red", "300"},
		{"grape", "purple", "250"},
		{"lemon", "yellow", "90"},
		{"pineapple", "yellow", "400"},
		{"strawberry", "red", "350"},
	}
	for _, f := range fruits {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f[0], f[1], f[2])
	}
	return b.String()
}

func TestSearchSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session SearchSession
		want    bool
	}{
		{name: "empty", session: SearchSession{}, want: false},
		{name: "fields without values", session: SearchSession{Fields: []string{"a"}}, want: false},
		{name: "mismatched lengths", session: SearchSession{Fields: []string{"a", "b"}, Values: []string{"%x%"}}, want: false},
		{name: "active", session: SearchSession{Fields: []string{"a"}, Values: []string{"%x%"}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.session.Active())
		})
	}

	t.Run("contains search wraps keywords", func(t *testing.T) {
		t.Parallel()
		s := NewContainsSearch([]string{"name", "color"}, []string{"app", "red"})
		assert.Equal(t, []string{"%app%", "%red%"}, s.Values)
	})
}

func TestWhereClause(t *testing.T) {
	t.Parallel()

	cols := model.Columns{{Name: "name"}, {Name: "select"}}

	t.Run("inactive session renders nothing", func(t *testing.T) {
		t.Parallel()
		where, args, err := whereClause(cols, SearchSession{Fields: []string{"name"}})
		require.NoError(t, err)
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("predicates are joined with AND", func(t *testing.T) {
		t.Parallel()
		where, args, err := whereClause(cols, SearchSession{Fields: []string{"NAME", "select"}, Values: []string{"%a%", "b%"}})
		require.NoError(t, err)
		assert.Equal(t, ` WHERE name LIKE ? AND "select" LIKE ?`, where)
		assert.Equal(t, []any{"%a%", "b%"}, args)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, _, err := whereClause(cols, SearchSession{Fields: []string{"missing"}, Values: []string{"x"}})
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestStoreQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	seedTable(t, store, "fruits", fruitsTSV())
	seedTable(t, store, "animals", "name\nowl\n")

	t.Run("tables are listed by name", func(t *testing.T) {
		t.Parallel()
		tables, err := store.Tables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"animals", "fruits"}, tables)
	})

	t.Run("columns exclude id", func(t *testing.T) {
		t.Parallel()
		cols, err := store.Columns(ctx, "fruits")
		require.NoError(t, err)
		assert.Equal(t, model.Columns{
			{Name: "name", Kind: model.KindText},
			{Name: "color", Kind: model.KindText},
			{Name: "price", Kind: model.KindInteger},
		}, cols)
	})

	t.Run("count with and without a session", func(t *testing.T) {
		t.Parallel()
		n, err := store.Count(ctx, "fruits", SearchSession{})
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)

		n, err = store.Count(ctx, "fruits", NewContainsSearch([]string{"color"}, []string{"red"}))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = store.Count(ctx, "fruits", NewContainsSearch([]string{"color", "name"}, []string{"yellow", "apple"}))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("pages are in id order", func(t *testing.T) {
		t.Parallel()
		page1, err := store.Select(ctx, "fruits", SearchSession{}, 1, 3)
		require.NoError(t, err)
		page3, err := store.Select(ctx, "fruits", SearchSession{}, 3, 3)
		require.NoError(t, err)

		require.Len(t, page1.Rows, 3)
		assert.Equal(t, "apple", page1.Rows[0].Values[0].String())
		assert.Equal(t, int64(1), page1.Rows[0].ID)
		require.Len(t, page3.Rows, 1)
		assert.Equal(t, "strawberry", page3.Rows[0].Values[0].String())
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		t.Parallel()
		rs, err := store.Select(ctx, "fruits", SearchSession{}, 10, 3)
		require.NoError(t, err)
		assert.Empty(t, rs.Rows)
		assert.Len(t, rs.Columns, 3)
	})

	t.Run("filtered select", func(t *testing.T) {
		t.Parallel()
		rs, err := store.Select(ctx, "fruits", NewContainsSearch([]string{"name"}, []string{"apple"}), 1, 10)
		require.NoError(t, err)
		require.Len(t, rs.Rows, 2)
		assert.Equal(t, "apple", rs.Rows[0].Values[0].String())
		assert.Equal(t, "pineapple", rs.Rows[1].Values[0].String())
	})

	t.Run("top n", func(t *testing.T) {
		t.Parallel()
		rs, err := store.SelectTopN(ctx, "fruits", NewContainsSearch([]string{"color"}, []string{"yellow"}), 2)
		require.NoError(t, err)
		require.Len(t, rs.Rows, 2)
		assert.Equal(t, "banana", rs.Rows[0].Values[0].String())
		assert.Equal(t, "lemon", rs.Rows[1].Values[0].String())
	})

	t.Run("unknown search field", func(t *testing.T) {
		t.Parallel()
		_, err := store.Select(ctx, "fruits", NewContainsSearch([]string{"weight"}, []string{"1"}), 1, 10)
		var qErr *QueryError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, "select", qErr.Op)
		assert.ErrorIs(t, err, ErrColumnNotFound)
	})

	t.Run("unknown table", func(t *testing.T) {
		t.Parallel()
		_, err := store.Columns(ctx, "nope")
		assert.ErrorIs(t, err, ErrNoColumns)
	})
}

func TestStoreInsertRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)
	seedTable(t, store, "fruits", fruitsTSV())

	require.NoError(t, store.InsertRow(ctx, "fruits", model.NewRecord([]string{"kiwi", "green", "not-a-price"})))

	rs, err := store.Select(ctx, "fruits", NewContainsSearch([]string{"name"}, []string{"kiwi"}), 1, 10)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, int64(8), rs.Rows[0].ID)
	assert.Equal(t, "green", rs.Rows[0].Values[1].String())
	assert.True(t, rs.Rows[0].Values[2].IsNull())

	err = store.InsertRow(ctx, "missing", model.NewRecord([]string{"x"}))
	var qErr *QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, "insert", qErr.Op)
}
