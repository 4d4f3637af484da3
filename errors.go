package tsvdb

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrEmptyData indicates that the data source contains no header and no records
	ErrEmptyData = errors.New("tsvdb: empty data source")

	// ErrNoColumns indicates that a table has no insertable columns
	ErrNoColumns = errors.New("tsvdb: table has no columns")

	// ErrColumnNotFound indicates that a referenced column does not exist
	ErrColumnNotFound = errors.New("tsvdb: column not found")

	// ErrImportCanceled indicates that an import was stopped through its context
	ErrImportCanceled = errors.New("tsvdb: import canceled")

	// ErrUnsupportedFormat indicates an unsupported file or export format
	ErrUnsupportedFormat = errors.New("tsvdb: unsupported file format")

	// ErrInvalidPageRange indicates an export page range outside of the table
	ErrInvalidPageRange = errors.New("tsvdb: invalid page range")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("tsvdb: file not found")

	// ErrInMemoryDatabase indicates an in-memory database path. Every store
	// operation opens its own handle, so nothing written there would persist.
	ErrInMemoryDatabase = errors.New("tsvdb: in-memory databases are not supported")
)

// ParseError reports a single malformed input line. The importer skips the
// line and continues.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tsvdb: parse error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CoercionError reports a field that could not be converted to its column
// kind. The field is stored as null.
type CoercionError struct {
	Column string
	Value  string
	Kind   Kind
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("tsvdb: cannot convert %q to %s for column %s: %v", e.Value, e.Kind, e.Column, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// SchemaError reports a failed schema commit. It aborts the import.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("tsvdb: schema error for table %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// TransactionError reports a batch that was rolled back.
type TransactionError struct {
	Table string
	Rows  int
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("tsvdb: batch of %d rows into %s rolled back: %v", e.Rows, e.Table, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// QueryError reports a failed read or single-row write.
type QueryError struct {
	Table string
	Op    string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("tsvdb: %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("tsvdb: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
