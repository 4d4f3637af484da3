package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// The root command installs the slog default, so these tests run sequentially.
func TestRootCommand(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	input := filepath.Join(dir, "users.tsv")
	require.NoError(t, os.WriteFile(input, []byte("name\tage\nalice\t30\nalicia\t31\nbob\t25\n"), 0o600))

	t.Run("import", func(t *testing.T) {
		out, err := run(t, "--database", db, "import", "--quiet", input)
		require.NoError(t, err)
		assert.Contains(t, out, "users")
		assert.Contains(t, out, "done")
	})

	t.Run("tables", func(t *testing.T) {
		out, err := run(t, "-d", db, "tables")
		require.NoError(t, err)
		assert.Contains(t, out, "users")
		assert.Contains(t, out, "3")
	})

	t.Run("columns", func(t *testing.T) {
		out, err := run(t, "-d", db, "columns", "users")
		require.NoError(t, err)
		assert.Contains(t, out, "INTEGER")
		assert.Contains(t, out, "TEXT")
	})

	t.Run("select with filter", func(t *testing.T) {
		out, err := run(t, "-d", db, "select", "users", "-w", "name=ali")
		require.NoError(t, err)
		assert.Contains(t, out, "alicia")
		assert.NotContains(t, out, "bob")
		assert.Contains(t, out, "page 1 of 1, 2 matching rows")
	})

	t.Run("insert", func(t *testing.T) {
		out, err := run(t, "-d", db, "insert", "users", "carol", "41")
		require.NoError(t, err)
		assert.Contains(t, out, "inserted 1 row")
	})

	t.Run("search", func(t *testing.T) {
		out, err := run(t, "-d", db, "search", "users", "name", "alice", "--top-k", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "1.0000")
		assert.Contains(t, out, "(1 of 1 candidates)")
	})

	t.Run("export", func(t *testing.T) {
		path := filepath.Join(dir, "out", "users.tsv")
		_, err := run(t, "-d", db, "export", "users", path, "--format", "tsv", "--page-size", "2", "--pages", "2-2")
		require.NoError(t, err)
		data, err := os.ReadFile(path) //nolint:gosec // test path
		require.NoError(t, err)
		assert.Equal(t, "name\tage\nbob\t25\ncarol\t41\n", string(data))
	})

	t.Run("export all tables", func(t *testing.T) {
		out, err := run(t, "-d", db, "export", "--all", filepath.Join(dir, "all"), "--format", "xlsx")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(dir, "all", "users.xlsx"))
	})

	t.Run("invalid page range", func(t *testing.T) {
		_, err := run(t, "-d", db, "export", "users", filepath.Join(dir, "bad.csv"), "--pages", "5-9")
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := run(t, "-d", db, "--log-format", "xml", "tables")
		assert.ErrorContains(t, err, "log_format")
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := run(t, "-d", db, "columns", "missing")
		assert.Error(t, err)
	})
}
