package tsvdb

import (
	"github.com/nao1215/tsvdb/domain/model"
)

// Type aliases for the domain model
type (
	// Kind is the inferred storage type of a column
	Kind = model.Kind
	// Column is a named, typed column of a committed table
	Column = model.Column
	// Columns is an ordered list of columns
	Columns = model.Columns
	// Value is a typed cell value
	Value = model.Value
	// Row is one stored row of typed values
	Row = model.Row
	// Record is one parsed input line
	Record = model.Record
	// Header is the list of column names of an input file
	Header = model.Header
)

// Re-export constants for easier use
const (
	// KindText represents TEXT columns
	KindText = model.KindText
	// KindInteger represents INTEGER columns
	KindInteger = model.KindInteger
	// KindReal represents REAL columns
	KindReal = model.KindReal
	// KindBoolean represents BOOLEAN columns
	KindBoolean = model.KindBoolean
)

// EscapeIdentifier returns a storage-safe form of a table or column name.
// Applying it more than once is a no-op.
var EscapeIdentifier = model.EscapeIdentifier

// InferKind infers the narrowest kind accepting every non-empty value.
var InferKind = model.InferKind
