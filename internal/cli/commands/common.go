// Package commands implements the tsvdb sub-commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/tsvdb"
	"github.com/nao1215/tsvdb/internal/cli/config"
)

// openStore opens the store named by the command's configuration.
func openStore(cmd *cobra.Command) (*tsvdb.Store, *config.Config, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	store, err := tsvdb.NewStore(cfg.Database, tsvdb.WithLogger(config.Logger(ctx)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
	}
	return store, cfg, nil
}

// addWhereFlag registers the repeatable --where field=keyword flag.
func addWhereFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("where", "w", nil, "Filter rows whose field contains keyword (field=keyword, repeatable)")
}

// searchSession builds a contains-search from the --where flags.
func searchSession(cmd *cobra.Command) (tsvdb.SearchSession, error) {
	where, err := cmd.Flags().GetStringArray("where")
	if err != nil {
		return tsvdb.SearchSession{}, err
	}
	return parseWhere(where)
}

// parseWhere parses field=keyword pairs.
func parseWhere(where []string) (tsvdb.SearchSession, error) {
	if len(where) == 0 {
		return tsvdb.SearchSession{}, nil
	}
	fields := make([]string, 0, len(where))
	keywords := make([]string, 0, len(where))
	for _, w := range where {
		field, keyword, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return tsvdb.SearchSession{}, fmt.Errorf("invalid filter %q, want field=keyword", w)
		}
		fields = append(fields, strings.TrimSpace(field))
		keywords = append(keywords, keyword)
	}
	return tsvdb.NewContainsSearch(fields, keywords), nil
}

// newTable returns a table writer rendering to w.
func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// renderRows renders a result set with the row id as the first column.
func renderRows(w io.Writer, rs *tsvdb.ResultSet) {
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	header := make([]any, 0, len(rs.Columns)+1)
	header = append(header, "id")
	for _, col := range rs.Columns {
		header = append(header, col.Name)
	}
	t := newTable(w, header...)
	for _, row := range rs.Rows {
		t.AppendRow(storedRow(row, nil))
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rs.Rows))
}

func storedRow(row tsvdb.StoredRow, lead []any) table.Row {
	r := make(table.Row, 0, len(lead)+len(row.Values)+1)
	r = append(r, lead...)
	r = append(r, row.ID)
	for _, v := range row.Values {
		if v.IsNull() {
			r = append(r, "NULL")
			continue
		}
		r = append(r, v.String())
	}
	return r
}
