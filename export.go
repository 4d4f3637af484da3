package tsvdb

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/tsvdb/domain/model"
)

// xlsxSheet is the sheet an XLSX export writes to
const xlsxSheet = "Sheet1"

// Export writes the pages of table selected by opts to path. The header is
// the non-id column names; the id column is never exported. An empty table
// produces a header-only file. A failed export removes the partial file.
func (s *Store) Export(ctx context.Context, table, path string, opts ExportOptions) (err error) {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return NewErrorContext("export", path).WithTable(table).Error(err)
		}
	}

	return s.withDB(ctx, func(db *sql.DB) error {
		cols, err := describe(ctx, db, table)
		if err != nil {
			return asQueryError(table, "export", err)
		}

		total, err := countRows(ctx, db, table, cols, opts.Session)
		if err != nil {
			return asQueryError(table, "export", err)
		}
		totalPages := int((total + int64(opts.PageSize) - 1) / int64(opts.PageSize))
		start, end := opts.Scope.resolve(totalPages)
		if err := newValidator().validatePageRange(start, end, totalPages); err != nil {
			return err
		}

		return s.writeExport(ctx, db, table, path, cols, start, end, opts)
	})
}

// ExportTables exports every table of the store into dir, one file per
// table named after the table. It returns the written paths.
func (s *Store) ExportTables(ctx context.Context, dir string, opts ExportOptions) ([]string, error) {
	if err := newValidator().validateOutputDirectory(dir); err != nil {
		return nil, err
	}
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, table+opts.FileExtension())
		if err := s.Export(ctx, table, path, opts); err != nil {
			return written, fmt.Errorf("failed to export table %s: %w", table, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (s *Store) writeExport(ctx context.Context, db *sql.DB, table, path string, cols model.Columns, start, end int, opts ExportOptions) (err error) {
	out, closeOut, err := NewCompressionFactory().CreateWriterForFile(path, opts.effectiveCompression())
	if err != nil {
		return NewErrorContext("export", path).WithTable(table).Error(err)
	}
	rw, err := newRowWriter(opts.Format, out)
	if err != nil {
		_ = closeOut()
		_ = os.Remove(path)
		return err
	}

	defer func() {
		closeErr := errors.Join(rw.Close(), closeOut())
		if err == nil && closeErr != nil {
			err = NewErrorContext("export", path).WithTable(table).Error(closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := rw.WriteHeader(cols); err != nil {
		return err
	}

	pages := end - start + 1
	for page := start; page <= end; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rs, err := selectRows(ctx, db, table, opts.Session, opts.PageSize, (page-1)*opts.PageSize)
		if err != nil {
			return asQueryError(table, "export", err)
		}
		if err := rw.WriteRows(rs.Rows); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(page-start+1, pages)
		}
	}

	s.logger.Info("table exported",
		slog.String("table", table),
		slog.String("path", path),
		slog.String("format", opts.Format.String()),
		slog.String("scope", opts.Scope.String()))
	return nil
}

// rowWriter writes one export file.
type rowWriter interface {
	WriteHeader(cols model.Columns) error
	WriteRows(rows []StoredRow) error
	Close() error
}

func newRowWriter(format ExportFormat, out io.Writer) (rowWriter, error) {
	switch format {
	case ExportFormatCSV:
		return &textWriter{w: bufio.NewWriter(out), delimiter: csvDelimiter, escape: escapeCSVValue}, nil
	case ExportFormatTSV:
		return &textWriter{w: bufio.NewWriter(out), delimiter: tsvDelimiter, escape: escapeTSVValue}, nil
	case ExportFormatXLSX:
		return newXLSXWriter(out)
	case ExportFormatParquet:
		return &parquetWriter{out: out}, nil
	default:
		return nil, fmt.Errorf("%w: export format %v", ErrUnsupportedFormat, format)
	}
}

// textWriter writes delimited text, one newline-terminated row per line.
type textWriter struct {
	w         *bufio.Writer
	delimiter rune
	escape    func(string) string
}

func (t *textWriter) WriteHeader(cols model.Columns) error {
	return t.writeLine(cols.Names())
}

func (t *textWriter) WriteRows(rows []StoredRow) error {
	for _, row := range rows {
		if err := t.writeLine(row.Values.Strings()); err != nil {
			return err
		}
	}
	return nil
}

func (t *textWriter) writeLine(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if _, err := t.w.WriteRune(t.delimiter); err != nil {
				return err
			}
		}
		if _, err := t.w.WriteString(t.escape(field)); err != nil {
			return err
		}
	}
	return t.w.WriteByte('\n')
}

func (t *textWriter) Close() error {
	return t.w.Flush()
}

// escapeCSVValue quotes a value containing a comma, quote or line break and
// doubles inner quotes.
func escapeCSVValue(value string) string {
	needsQuoting := strings.Contains(value, ",") ||
		strings.Contains(value, "\n") ||
		strings.Contains(value, "\r") ||
		strings.Contains(value, "\"")
	if !needsQuoting {
		return value
	}
	return "\"" + strings.ReplaceAll(value, "\"", "\"\"") + "\""
}

var tsvEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
	"\t", "\\t",
	"\n", "\\n",
	"\r", "\\r",
)

// escapeTSVValue quotes a value the line parser would otherwise split,
// unescape or trim, and backslash-escapes its special characters.
func escapeTSVValue(value string) string {
	needsQuoting := strings.ContainsAny(value, "\t\n\r\"\\") ||
		strings.TrimSpace(value) != value
	if !needsQuoting {
		return value
	}
	return "\"" + tsvEscaper.Replace(value) + "\""
}

// xlsxWriter streams rows into a single-sheet workbook and writes it on Close.
type xlsxWriter struct {
	out  io.Writer
	file *excelize.File
	sw   *excelize.StreamWriter
	row  int
}

func newXLSXWriter(out io.Writer) (*xlsxWriter, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create xlsx stream writer: %w", err)
	}
	return &xlsxWriter{out: out, file: f, sw: sw}, nil
}

func (x *xlsxWriter) WriteHeader(cols model.Columns) error {
	names := cols.Names()
	cells := make([]any, len(names))
	for i, n := range names {
		cells[i] = n
	}
	return x.writeRow(cells)
}

func (x *xlsxWriter) WriteRows(rows []StoredRow) error {
	for _, row := range rows {
		cells := make([]any, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Any()
		}
		if err := x.writeRow(cells); err != nil {
			return err
		}
	}
	return nil
}

func (x *xlsxWriter) writeRow(cells []any) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("failed to write xlsx row %d: %w", x.row, err)
	}
	return nil
}

func (x *xlsxWriter) Close() error {
	defer x.file.Close()
	if err := x.sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx sheet: %w", err)
	}
	if _, err := x.file.WriteTo(x.out); err != nil {
		return fmt.Errorf("failed to write xlsx file: %w", err)
	}
	return nil
}

// parquetWriter writes every exported page as one record batch. Column types
// follow the column kinds.
type parquetWriter struct {
	out     io.Writer
	schema  *arrow.Schema
	fw      *pqarrow.FileWriter
	builder *array.RecordBuilder
}

// writerOnly hides Close so the parquet writer never closes the output;
// the compression cleanup owns it.
type writerOnly struct {
	io.Writer
}

func (p *parquetWriter) WriteHeader(cols model.Columns) error {
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowType(col.Kind), Nullable: true}
	}
	p.schema = arrow.NewSchema(fields, nil)

	fw, err := pqarrow.NewFileWriter(p.schema, writerOnly{p.out}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	p.fw = fw
	p.builder = array.NewRecordBuilder(memory.DefaultAllocator, p.schema)
	return nil
}

func (p *parquetWriter) WriteRows(rows []StoredRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		for i := range p.schema.NumFields() {
			v := model.NullValue()
			if i < len(row.Values) {
				v = row.Values[i]
			}
			appendArrowValue(p.builder.Field(i), v)
		}
	}

	rec := p.builder.NewRecord()
	defer rec.Release()
	if err := p.fw.Write(rec); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	return nil
}

func (p *parquetWriter) Close() error {
	if p.builder != nil {
		p.builder.Release()
	}
	if p.fw == nil {
		return nil
	}
	if err := p.fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func arrowType(kind model.Kind) arrow.DataType {
	switch kind {
	case model.KindInteger:
		return arrow.PrimitiveTypes.Int64
	case model.KindReal:
		return arrow.PrimitiveTypes.Float64
	case model.KindBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// appendArrowValue appends v to b, converting between kinds where the store
// returned a value of another kind than the column declares. Values that
// cannot be converted are appended as null.
func appendArrowValue(b array.Builder, v model.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Int64Builder:
		switch v.Kind() {
		case model.KindInteger:
			bb.Append(v.Int())
		case model.KindBoolean:
			if v.Bool() {
				bb.Append(1)
			} else {
				bb.Append(0)
			}
		default:
			if n, err := model.ParseInteger(v.String()); err == nil {
				bb.Append(n)
			} else {
				bb.AppendNull()
			}
		}
	case *array.Float64Builder:
		switch v.Kind() {
		case model.KindReal:
			bb.Append(v.Float())
		case model.KindInteger:
			bb.Append(float64(v.Int()))
		default:
			if f, err := model.ParseReal(v.String()); err == nil {
				bb.Append(f)
			} else {
				bb.AppendNull()
			}
		}
	case *array.BooleanBuilder:
		switch v.Kind() {
		case model.KindBoolean:
			bb.Append(v.Bool())
		case model.KindInteger:
			bb.Append(v.Int() != 0)
		default:
			if t, err := model.ParseBoolean(v.String()); err == nil {
				bb.Append(t)
			} else {
				bb.AppendNull()
			}
		}
	case *array.StringBuilder:
		bb.Append(v.String())
	default:
		b.AppendNull()
	}
}
