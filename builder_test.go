package tsvdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportBuilderBuildErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	tsv := writeTestFile(t, dir, "one.tsv", "a\n1\n")
	other := writeTestFile(t, dir, "two.tsv", "a\n1\n")
	json := writeTestFile(t, dir, "data.json", "{}")

	sub1 := filepath.Join(dir, "sub1")
	sub2 := filepath.Join(dir, "sub2")
	require.NoError(t, os.MkdirAll(sub1, 0o750))
	require.NoError(t, os.MkdirAll(sub2, 0o750))
	writeTestFile(t, sub1, "same.tsv", "a\n1\n")
	writeTestFile(t, sub2, "same.csv", "a\n1\n")

	emptyDir := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(emptyDir, 0o750))

	store := newTestStore(t)

	tests := []struct {
		name    string
		builder *ImportBuilder
		wantErr error
	}{
		{name: "nil store", builder: NewImportBuilder(nil).AddPath(tsv)},
		{name: "no inputs", builder: NewImportBuilder(store)},
		{name: "negative batch size", builder: NewImportBuilder(store).AddPath(tsv).WithBatchSize(-1)},
		{name: "missing file", builder: NewImportBuilder(store).AddPath(filepath.Join(dir, "nope.tsv")), wantErr: ErrFileNotFound},
		{name: "unsupported file", builder: NewImportBuilder(store).AddPath(json), wantErr: ErrUnsupportedFormat},
		{name: "empty directory", builder: NewImportBuilder(store).AddPath(emptyDir)},
		{name: "table override with two files", builder: NewImportBuilder(store).AddPaths(tsv, other).IntoTable("t")},
		{name: "two files into one table", builder: NewImportBuilder(store).AddPaths(sub1, sub2)},
		{name: "nil filesystem", builder: NewImportBuilder(store).AddFS(nil)},
		{name: "filesystem without supported files", builder: NewImportBuilder(store).AddFS(fstest.MapFS{"x.json": {Data: []byte("{}")}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.builder.Build(ctx)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestImportBuilderBuildRemovesTempCopiesOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder func(store *Store) *ImportBuilder
	}{
		{
			name: "table override with two files",
			builder: func(store *Store) *ImportBuilder {
				return NewImportBuilder(store).AddFS(fstest.MapFS{
					"a.tsv": {Data: []byte("a\n1\n")},
					"b.tsv": {Data: []byte("b\n2\n")},
				}).IntoTable("t")
			},
		},
		{
			name: "two files into one table",
			builder: func(store *Store) *ImportBuilder {
				return NewImportBuilder(store).AddFS(fstest.MapFS{
					"x/same.tsv": {Data: []byte("a\n1\n")},
					"y/same.csv": {Data: []byte("a\n1\n")},
				})
			},
		},
		{
			name: "nil filesystem after a valid one",
			builder: func(store *Store) *ImportBuilder {
				return NewImportBuilder(store).
					AddFS(fstest.MapFS{"ok.tsv": {Data: []byte("a\n1\n")}}).
					AddFS(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := tt.builder(newTestStore(t))
			_, err := b.Build(context.Background())
			require.Error(t, err)

			require.NotEmpty(t, b.inputs)
			for _, in := range b.inputs {
				_, statErr := os.Stat(in.path)
				assert.True(t, os.IsNotExist(statErr), "temp copy %s left behind", in.path)
			}
			assert.Empty(t, b.tempFiles)
		})
	}
}

func TestImportBuilderImport(t *testing.T) {
	t.Parallel()

	t.Run("directory with compressed duplicates", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)

		dir := t.TempDir()
		writeTestFile(t, dir, "users.tsv", "name\tage\nalice\t30\nbob\t25\n")
		writeGzipTestFile(t, dir, "users.tsv.gz", "name\tage\nstale\t1\n")
		writeTestFile(t, dir, "orders.csv", "id_order,amount\n1,9.5\n")
		writeTestFile(t, dir, "notes.json", "{}")

		var ticks []progressTick
		builder, err := NewImportBuilder(store).
			AddPath(dir).
			WithProgress(func(total, processed int64) {
				ticks = append(ticks, progressTick{total, processed})
			}).
			Build(ctx)
		require.NoError(t, err)

		sessions, err := builder.Import(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "orders", sessions[0].Table)
		assert.Equal(t, "users", sessions[1].Table)
		assert.Equal(t, []progressTick{{1, 1}, {2, 2}}, ticks)

		n, err := store.Count(ctx, "users", SearchSession{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		tables, err := store.Tables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"orders", "users"}, tables)
	})

	t.Run("single file into a named table", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		path := writeTestFile(t, t.TempDir(), "raw.txt", "1;x\n2;y\n")

		builder, err := NewImportBuilder(store).
			AddPath(path).
			IntoTable("pairs").
			WithHeader(false).
			WithDelimiter(';').
			WithSampleSize(1).
			WithBatchSize(1).
			Build(ctx)
		require.NoError(t, err)

		sessions, err := builder.Import(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "pairs", sessions[0].Table)
		assert.Equal(t, []string{"column_1", "column_2"}, sessions[0].Columns.Names())
		assert.Equal(t, int64(2), sessions[0].Processed)
	})

	t.Run("filesystem input", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		mapFS := fstest.MapFS{
			"data/items.tsv":  {Data: []byte("sku\tqty\na1\t3\n")},
			"data/readme.md":  {Data: []byte("# ignored")},
			"more/prices.csv": {Data: []byte("sku,price\na1,1.25\n")},
		}

		builder, err := NewImportBuilder(store).AddFS(mapFS).Build(ctx)
		require.NoError(t, err)
		defer func() { require.NoError(t, builder.Cleanup()) }()

		sessions, err := builder.Import(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "items", sessions[0].Table)
		assert.Equal(t, "prices", sessions[1].Table)

		for _, s := range sessions {
			_, err := os.Stat(s.Source)
			require.NoError(t, err, "temp copy exists until cleanup")
		}
		require.NoError(t, builder.Cleanup())
		for _, s := range sessions {
			_, err := os.Stat(s.Source)
			assert.True(t, os.IsNotExist(err), "temp copy removed by cleanup")
		}
	})

	t.Run("import without build", func(t *testing.T) {
		t.Parallel()
		_, err := NewImportBuilder(newTestStore(t)).Import(context.Background())
		assert.Error(t, err)
	})

	t.Run("failing file stops the import", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := newTestStore(t)
		dir := t.TempDir()
		writeTestFile(t, dir, "a_empty.tsv", "")
		writeTestFile(t, dir, "b_ok.tsv", "x\n1\n")

		builder, err := NewImportBuilder(store).AddPath(dir).Build(ctx)
		require.NoError(t, err)

		sessions, err := builder.Import(ctx)
		require.ErrorIs(t, err, ErrEmptyData)
		require.Len(t, sessions, 1)
		assert.Equal(t, StateFailed, sessions[0].State)
	})
}
