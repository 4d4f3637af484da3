package tsvdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/tsvdb/domain/model"
)

// idColumn is the implicit auto-increment primary key of every table.
const idColumn = "id"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CommitSchema creates table with an auto-increment id column followed by one
// column per name and kind. An existing table is left as is.
// Mismatched inputs, duplicate names and DDL failures are reported as
// *SchemaError.
func CommitSchema(ctx context.Context, db execer, table string, names []string, kinds []model.Kind) error {
	if len(names) != len(kinds) {
		return &SchemaError{
			Table: table,
			Err:   fmt.Errorf("%d column names but %d kinds", len(names), len(kinds)),
		}
	}
	if len(names) == 0 {
		return &SchemaError{Table: table, Err: ErrNoColumns}
	}

	raw := make(model.Header, len(names))
	for i, n := range names {
		raw[i] = model.UnquoteIdentifier(n)
	}
	if err := raw.Validate(); err != nil {
		return &SchemaError{Table: table, Err: err}
	}

	if _, err := db.ExecContext(ctx, createTableQuery(table, names, kinds)); err != nil {
		return &SchemaError{Table: table, Err: err}
	}
	return nil
}

func createTableQuery(table string, names []string, kinds []model.Kind) string {
	defs := make([]string, 0, len(names)+1)
	defs = append(defs, idColumn+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for i, name := range names {
		defs = append(defs, model.EscapeIdentifier(name)+" "+kinds[i].String())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		model.EscapeIdentifier(table), strings.Join(defs, ", "))
}

// tableColumns introspects table and returns its columns in declaration
// order, excluding the auto-increment id column.
func tableColumns(ctx context.Context, db queryer, table string) (model.Columns, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", model.EscapeIdentifier(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns model.Columns
	for rows.Next() {
		var (
			cid     int
			name    string
			decl    string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &decl, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		if pk == 1 && strings.EqualFold(name, idColumn) {
			continue
		}
		columns = append(columns, model.Column{Name: name, Kind: model.ParseKind(decl)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

// quotedColumnList renders escaped column names separated by commas.
func quotedColumnList(columns model.Columns) string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = model.EscapeIdentifier(c.Name)
	}
	return strings.Join(names, ", ")
}
