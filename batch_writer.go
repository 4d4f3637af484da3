package tsvdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/tsvdb/domain/model"
)

// BatchWriter inserts parsed records into a committed table, one transaction
// per batch. Column order and kinds are discovered from the table itself.
type BatchWriter struct {
	db      *sql.DB
	logger  *slog.Logger
	columns map[string]model.Columns
}

// NewBatchWriter creates a BatchWriter on an open handle.
func NewBatchWriter(db *sql.DB, logger *slog.Logger) *BatchWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{
		db:      db,
		logger:  logger,
		columns: make(map[string]model.Columns),
	}
}

// Columns returns the insertable columns of table.
func (w *BatchWriter) Columns(ctx context.Context, table string) (model.Columns, error) {
	if cols, ok := w.columns[table]; ok {
		return cols, nil
	}
	cols, err := tableColumns(ctx, w.db, table)
	if err != nil {
		return nil, &QueryError{Table: table, Op: "describe", Err: err}
	}
	if len(cols) == 0 {
		return nil, &QueryError{Table: table, Op: "describe", Err: ErrNoColumns}
	}
	w.columns[table] = cols
	return cols, nil
}

// Write inserts records into table in a single transaction.
//
// Blank fields become NULL. A field that cannot be converted to its column
// kind is stored as NULL and logged; it does not fail the batch. Short
// records are padded with NULL and extra trailing fields are dropped.
// If any statement fails the transaction is rolled back and a
// *TransactionError is returned.
func (w *BatchWriter) Write(ctx context.Context, table string, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	cols, err := w.Columns(ctx, table)
	if err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Table: table, Rows: len(records), Err: err}
	}

	if err := w.insertAll(ctx, tx, table, cols, records); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return &TransactionError{Table: table, Rows: len(records), Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &TransactionError{Table: table, Rows: len(records), Err: err}
	}

	w.logger.Debug("batch written", slog.String("table", table), slog.Int("rows", len(records)))
	return nil
}

func (w *BatchWriter) insertAll(ctx context.Context, tx *sql.Tx, table string, cols model.Columns, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, insertQuery(table, cols))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if len(rec) > len(cols) {
			w.logger.Debug("dropping extra fields",
				slog.String("table", table),
				slog.Int("fields", len(rec)),
				slog.Int("columns", len(cols)))
		}
		if _, err := stmt.ExecContext(ctx, coerceRecord(cols, rec, w.logger)...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return nil
}

func insertQuery(table string, cols model.Columns) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		model.EscapeIdentifier(table), quotedColumnList(cols), placeholders)
}

// coerceRecord converts one record into driver arguments following the
// column kinds.
func coerceRecord(cols model.Columns, rec model.Record, logger *slog.Logger) []any {
	args := make([]any, len(cols))
	for i, col := range cols {
		raw, ok := rec.Field(i)
		if !ok {
			continue
		}
		v, err := model.Coerce(col.Kind, raw)
		if err != nil {
			cerr := &CoercionError{Column: col.Name, Value: raw, Kind: col.Kind, Err: err}
			logger.Warn("storing null for unconvertible field",
				slog.String("column", col.Name),
				slog.String("value", raw),
				slog.Any("error", cerr))
		}
		args[i] = v.Any()
	}
	return args
}
