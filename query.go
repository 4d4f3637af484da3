package tsvdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/tsvdb/domain/model"
)

// SearchSession is the set of LIKE filters a caller applies to paged reads.
// The store never retains it; pass it on every call. Values are LIKE
// patterns and are used as given.
type SearchSession struct {
	Fields []string
	Values []string
}

// NewContainsSearch builds a session matching rows whose fields contain the
// given keywords.
func NewContainsSearch(fields, keywords []string) SearchSession {
	values := make([]string, len(keywords))
	for i, k := range keywords {
		values[i] = "%" + k + "%"
	}
	return SearchSession{Fields: fields, Values: values}
}

// Active reports whether the session filters anything. Fields and values
// must be non-empty and of equal length.
func (s SearchSession) Active() bool {
	return len(s.Fields) > 0 && len(s.Fields) == len(s.Values)
}

// StoredRow is a row read back from a table.
type StoredRow struct {
	ID     int64
	Values model.Row
}

// ResultSet is the result of a read: non-id columns and their rows.
type ResultSet struct {
	Columns model.Columns
	Rows    []StoredRow
}

// Tables lists the user tables of the store.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var tables []string
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			tables = append(tables, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &QueryError{Table: "sqlite_master", Op: "list tables", Err: err}
	}
	return tables, nil
}

// Columns returns the non-id columns of table with their kinds.
func (s *Store) Columns(ctx context.Context, table string) (model.Columns, error) {
	var cols model.Columns
	err := s.withDB(ctx, func(db *sql.DB) error {
		var err error
		cols, err = describe(ctx, db, table)
		return err
	})
	if err != nil {
		return nil, asQueryError(table, "describe", err)
	}
	return cols, nil
}

// Count returns the number of rows of table matching session.
func (s *Store) Count(ctx context.Context, table string, session SearchSession) (int64, error) {
	var n int64
	err := s.withDB(ctx, func(db *sql.DB) error {
		cols, err := describe(ctx, db, table)
		if err != nil {
			return err
		}
		n, err = countRows(ctx, db, table, cols, session)
		return err
	})
	if err != nil {
		return 0, asQueryError(table, "count", err)
	}
	return n, nil
}

// Select returns one page of rows matching session. Pages start at 1.
func (s *Store) Select(ctx context.Context, table string, session SearchSession, page, pageSize int) (*ResultSet, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	var rs *ResultSet
	err := s.withDB(ctx, func(db *sql.DB) error {
		var err error
		rs, err = selectRows(ctx, db, table, session, pageSize, (page-1)*pageSize)
		return err
	})
	if err != nil {
		return nil, asQueryError(table, "select", err)
	}
	return rs, nil
}

// SelectTopN returns at most limit rows matching session.
func (s *Store) SelectTopN(ctx context.Context, table string, session SearchSession, limit int) (*ResultSet, error) {
	var rs *ResultSet
	err := s.withDB(ctx, func(db *sql.DB) error {
		var err error
		rs, err = selectRows(ctx, db, table, session, limit, -1)
		return err
	})
	if err != nil {
		return nil, asQueryError(table, "select top", err)
	}
	return rs, nil
}

// InsertRow inserts a single record with the same conversion rules as an
// import batch.
func (s *Store) InsertRow(ctx context.Context, table string, record model.Record) error {
	err := s.withDB(ctx, func(db *sql.DB) error {
		cols, err := describe(ctx, db, table)
		if err != nil {
			return err
		}
		_, err = db.ExecContext(ctx, insertQuery(table, cols), coerceRecord(cols, record, s.logger)...)
		return err
	})
	if err != nil {
		return asQueryError(table, "insert", err)
	}
	return nil
}

// describe returns the insertable columns of table or ErrNoColumns.
func describe(ctx context.Context, db queryer, table string) (model.Columns, error) {
	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, table)
	}
	return cols, nil
}

func countRows(ctx context.Context, db queryRower, table string, cols model.Columns, session SearchSession) (int64, error) {
	where, args, err := whereClause(cols, session)
	if err != nil {
		return 0, err
	}
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", model.EscapeIdentifier(table), where)
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// selectRows reads rows in id order. A negative offset selects the LIMIT-only form.
func selectRows(ctx context.Context, db *sql.DB, table string, session SearchSession, limit, offset int) (*ResultSet, error) {
	cols, err := describe(ctx, db, table)
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(cols, session)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s%s ORDER BY %s LIMIT ?",
		idColumn, quotedColumnList(cols), model.EscapeIdentifier(table), where, idColumn)
	args = append(args, limit)
	if offset >= 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rs := &ResultSet{Columns: cols}
	for rows.Next() {
		row, err := scanStoredRow(rows, cols)
		if err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

func scanStoredRow(rows *sql.Rows, cols model.Columns) (StoredRow, error) {
	var id int64
	raw := make([]any, len(cols))
	dest := make([]any, len(cols)+1)
	dest[0] = &id
	for i := range raw {
		dest[i+1] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return StoredRow{}, err
	}

	values := make(model.Row, len(cols))
	for i, col := range cols {
		values[i] = model.ScanValue(col.Kind, raw[i])
	}
	return StoredRow{ID: id, Values: values}, nil
}

// whereClause renders the session as " WHERE a LIKE ? AND b LIKE ?".
// Unknown fields fail with ErrColumnNotFound.
func whereClause(cols model.Columns, session SearchSession) (string, []any, error) {
	if !session.Active() {
		return "", nil, nil
	}

	preds := make([]string, len(session.Fields))
	args := make([]any, len(session.Values))
	for i, field := range session.Fields {
		idx := cols.Index(field)
		if idx < 0 {
			return "", nil, fmt.Errorf("%w: %s", ErrColumnNotFound, field)
		}
		preds[i] = model.EscapeIdentifier(cols[idx].Name) + " LIKE ?"
		args[i] = session.Values[i]
	}
	return " WHERE " + strings.Join(preds, " AND "), args, nil
}

// asQueryError wraps err unless it is already a *QueryError.
func asQueryError(table, op string, err error) error {
	if qe, ok := err.(*QueryError); ok { //nolint:errorlint // only direct values are passed through
		return qe
	}
	return &QueryError{Table: table, Op: op, Err: err}
}
