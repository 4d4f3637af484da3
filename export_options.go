package tsvdb

import (
	"fmt"
	"strings"
)

// ExportFormat represents the output file format of an export
type ExportFormat int

const (
	// ExportFormatCSV represents comma-separated output
	ExportFormatCSV ExportFormat = iota
	// ExportFormatTSV represents tab-separated output that the importer can read back
	ExportFormatTSV
	// ExportFormatXLSX represents an Excel workbook with a single sheet
	ExportFormatXLSX
	// ExportFormatParquet represents a Parquet file with kind-typed columns
	ExportFormatParquet
)

// String returns the string representation of ExportFormat
func (f ExportFormat) String() string {
	switch f {
	case ExportFormatCSV:
		return "csv"
	case ExportFormatTSV:
		return "tsv"
	case ExportFormatXLSX:
		return "xlsx"
	case ExportFormatParquet:
		return "parquet"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatTSV:
		return ".tsv"
	case ExportFormatXLSX:
		return ".xlsx"
	case ExportFormatParquet:
		return ".parquet"
	default:
		return ".csv"
	}
}

// binary reports whether the format carries its own container, in which
// case an outer compression layer is not applied.
func (f ExportFormat) binary() bool {
	return f == ExportFormatXLSX || f == ExportFormatParquet
}

// ParseExportFormat parses "csv", "tsv", "xlsx" or "parquet".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "tsv":
		return ExportFormatTSV, nil
	case "xlsx", "excel":
		return ExportFormatXLSX, nil
	case "parquet":
		return ExportFormatParquet, nil
	default:
		return ExportFormatCSV, fmt.Errorf("%w: export format %q", ErrUnsupportedFormat, s)
	}
}

// ExportScope selects the pages an export writes. Pages start at 1.
type ExportScope struct {
	all   bool
	start int
	end   int
}

// AllPages exports every page.
func AllPages() ExportScope {
	return ExportScope{all: true}
}

// CurrentPage exports the single page p.
func CurrentPage(p int) ExportScope {
	return ExportScope{start: p, end: p}
}

// PageRange exports pages start through end inclusive.
func PageRange(start, end int) ExportScope {
	return ExportScope{start: start, end: end}
}

// IsAll reports whether the scope covers every page.
func (s ExportScope) IsAll() bool {
	return s.all
}

// String returns a human readable form of the scope
func (s ExportScope) String() string {
	switch {
	case s.all:
		return "all pages"
	case s.start == s.end:
		return fmt.Sprintf("page %d", s.start)
	default:
		return fmt.Sprintf("pages %d-%d", s.start, s.end)
	}
}

// resolve returns the inclusive page range for a table of totalPages pages.
// An empty table still has one (empty) page so a header-only file is written.
func (s ExportScope) resolve(totalPages int) (int, int) {
	if s.all {
		return 1, max(totalPages, 1)
	}
	return s.start, s.end
}

// ExportOptions configures how a table is written to a file.
//
// Example:
//
//	options := NewExportOptions().
//		WithFormat(ExportFormatTSV).
//		WithCompression(CompressionGZ).
//		WithScope(PageRange(2, 5))
//
//	err := store.Export(ctx, "people", "./out/people.tsv.gz", options)
type ExportOptions struct {
	// Format specifies the output file format
	Format ExportFormat
	// Compression specifies the compression applied to text formats
	Compression CompressionType
	// Scope selects the pages to export
	Scope ExportScope
	// PageSize is the number of rows per page
	PageSize int
	// Session filters the exported rows
	Session SearchSession
	// Progress is called after every written page
	Progress PageProgress
}

// NewExportOptions creates default export options (CSV, no compression, all pages).
//
// Modify with:
//   - WithFormat(): Change file format (CSV, TSV, XLSX, Parquet)
//   - WithCompression(): Add compression (GZ, XZ, ZSTD)
//   - WithScope(): Export a page or a page range
//   - WithPageSize(): Change the page size the scope is measured in
//   - WithSession(): Export only rows matching a search
//   - WithProgress(): Receive per-page progress
func NewExportOptions() ExportOptions {
	return ExportOptions{
		Format:      ExportFormatCSV,
		Compression: CompressionNone,
		Scope:       AllPages(),
		PageSize:    DefaultPageSize,
	}
}

// WithFormat sets the output format
func (o ExportOptions) WithFormat(format ExportFormat) ExportOptions {
	o.Format = format
	return o
}

// WithCompression sets the compression type
func (o ExportOptions) WithCompression(compression CompressionType) ExportOptions {
	o.Compression = compression
	return o
}

// WithScope sets the exported pages
func (o ExportOptions) WithScope(scope ExportScope) ExportOptions {
	o.Scope = scope
	return o
}

// WithPageSize sets the page size
func (o ExportOptions) WithPageSize(size int) ExportOptions {
	o.PageSize = size
	return o
}

// WithSession sets the search filter
func (o ExportOptions) WithSession(session SearchSession) ExportOptions {
	o.Session = session
	return o
}

// WithProgress sets the per-page progress callback
func (o ExportOptions) WithProgress(progress PageProgress) ExportOptions {
	o.Progress = progress
	return o
}

// FileExtension returns the complete file extension including compression.
// XLSX and Parquet are never wrapped in an outer compression layer.
func (o ExportOptions) FileExtension() string {
	if o.Format.binary() {
		return o.Format.Extension()
	}
	return o.Format.Extension() + o.Compression.Extension()
}

// effectiveCompression is the compression actually applied to the output.
func (o ExportOptions) effectiveCompression() CompressionType {
	if o.Format.binary() {
		return CompressionNone
	}
	return o.Compression
}
