// Package model provides the domain model for tsvdb: column kinds, records,
// typed values, identifier escaping and schema inference.
package model

import (
	"errors"
	"strings"
)

// ErrDuplicateColumnName is returned when a header contains duplicate column names
var ErrDuplicateColumnName = errors.New("duplicate column name")

// Header is file header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Validate checks for duplicate column names. Comparison is case-insensitive
// because the storage engine resolves column names case-insensitively.
func (h Header) Validate() error {
	seen := make(map[string]bool, len(h))
	for _, col := range h {
		key := strings.ToLower(strings.TrimSpace(col))
		if seen[key] {
			return &duplicateColumnError{name: col}
		}
		seen[key] = true
	}
	return nil
}

type duplicateColumnError struct {
	name string
}

func (e *duplicateColumnError) Error() string {
	return ErrDuplicateColumnName.Error() + ": " + e.name
}

func (e *duplicateColumnError) Unwrap() error {
	return ErrDuplicateColumnName
}

// Record is one parsed line: text fields in positional order.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Field returns the i-th field and whether it is present.
func (r Record) Field(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Kind represents the inferred storage type of a column
type Kind int

const (
	// KindText represents TEXT column type
	KindText Kind = iota
	// KindInteger represents INTEGER column type
	KindInteger
	// KindReal represents REAL column type
	KindReal
	// KindBoolean represents BOOLEAN column type
	KindBoolean
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
	sqlTypeBoolean = "BOOLEAN"
)

// String returns the SQL column type string
func (k Kind) String() string {
	switch k {
	case KindText:
		return sqlTypeText
	case KindInteger:
		return sqlTypeInteger
	case KindReal:
		return sqlTypeReal
	case KindBoolean:
		return sqlTypeBoolean
	default:
		return sqlTypeText
	}
}

// ParseKind maps a declared storage type back to a Kind.
// Unknown declarations are treated as text.
func ParseKind(decl string) Kind {
	decl = strings.ToUpper(strings.TrimSpace(decl))
	switch {
	case strings.HasPrefix(decl, "INT"):
		return KindInteger
	case decl == sqlTypeReal, decl == "FLOAT", decl == "DOUBLE", strings.HasPrefix(decl, "DOUBLE "):
		return KindReal
	case strings.HasPrefix(decl, "BOOL"):
		return KindBoolean
	default:
		return KindText
	}
}

// Column is a named, typed column of a committed table.
type Column struct {
	Name string
	Kind Kind
}

// Columns is an ordered list of columns.
type Columns []Column

// Names returns the column names in order.
func (c Columns) Names() []string {
	names := make([]string, len(c))
	for i, col := range c {
		names[i] = col.Name
	}
	return names
}

// Kinds returns the column kinds in order.
func (c Columns) Kinds() []Kind {
	kinds := make([]Kind, len(c))
	for i, col := range c {
		kinds[i] = col.Kind
	}
	return kinds
}

// Index returns the position of the named column, matching names
// case-insensitively and ignoring identifier quoting, or -1.
func (c Columns) Index(name string) int {
	want := strings.ToLower(UnquoteIdentifier(name))
	for i, col := range c {
		if strings.ToLower(UnquoteIdentifier(col.Name)) == want {
			return i
		}
	}
	return -1
}
