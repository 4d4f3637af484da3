package tsvdb

import (
	"strconv"
	"strings"
)

// Processing constants (rows-based)
const (
	// DefaultSampleSize is the number of rows sampled before the schema is committed
	DefaultSampleSize = 1000
	// DefaultBatchSize is the number of rows written per transaction
	DefaultBatchSize = 1000
	// DefaultPageSize is the number of rows per page for paged reads and exports
	DefaultPageSize = 100
	// DefaultCandidateLimit caps the rows fetched before fuzzy scoring
	DefaultCandidateLimit = 1000
	// DefaultTopK is the number of ranked rows returned by a fuzzy search
	DefaultTopK = 100
	// MinBatchSize is the minimum allowed rows per batch
	MinBatchSize = 1
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	firstUpperChar = 'A'
	lastUpperChar  = 'Z'
	underscoreChar = '_'
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// TableName represents a table name with validation
type TableName struct {
	value string
}

// NewTableName creates a new TableName with validation
func NewTableName(name string) TableName {
	// Basic validation - table name cannot be empty
	if strings.TrimSpace(name) == "" {
		return TableName{value: "table"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// Sanitize returns a sanitized version of the table name
func (tn TableName) Sanitize() TableName {
	return TableName{value: tn.sanitizeString()}
}

// sanitizeString removes invalid characters from table names
func (tn TableName) sanitizeString() string {
	result := strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(tn.value)

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()

	// Must not start with a number
	if len(finalResult) > 0 && finalResult[0] >= firstDigitChar && finalResult[0] <= lastDigitChar {
		finalResult = "table_" + finalResult
	}

	if finalResult == "" {
		finalResult = "table"
	}

	return finalResult
}

// BatchSize represents a row count with validation, used for both the
// sample buffer and write batches.
type BatchSize int

// NewBatchSize creates a new BatchSize, falling back to DefaultBatchSize
// for values below MinBatchSize.
func NewBatchSize(size int) BatchSize {
	if size < MinBatchSize {
		return BatchSize(DefaultBatchSize)
	}
	return BatchSize(size)
}

// Int returns the int value of BatchSize
func (bs BatchSize) Int() int {
	return int(bs)
}

// String returns the string representation of BatchSize
func (bs BatchSize) String() string {
	return strconv.Itoa(int(bs))
}

// Progress reports import progress as (totalRecords, processedRecords).
// It is invoked on the importing goroutine.
type Progress func(total, processed int64)

// PageProgress reports export progress as (donePages, totalPages).
type PageProgress func(done, total int)
