package model

import (
	"strconv"
	"strings"
)

// DefaultSampleSize is the number of rows buffered before a schema is inferred.
const DefaultSampleSize = 1000

// syntheticColumnPrefix is used to name columns of header-less input.
const syntheticColumnPrefix = "column_"

// reservedKeyColumn is the storage primary key; a header column with this
// name is stored as reservedKeyColumn + "_".
const reservedKeyColumn = "id"

// Sampler buffers a bounded prefix of parsed rows for schema inference.
// The buffer is released by Reset once the schema has been committed.
type Sampler struct {
	capacity int
	rows     []Record
}

// NewSampler creates a Sampler holding at most capacity rows.
// A non-positive capacity falls back to DefaultSampleSize.
func NewSampler(capacity int) *Sampler {
	if capacity <= 0 {
		capacity = DefaultSampleSize
	}
	return &Sampler{
		capacity: capacity,
		rows:     make([]Record, 0, min(capacity, DefaultSampleSize)),
	}
}

// Add appends a row and reports whether the buffer is now full.
// Rows offered to a full sampler are ignored.
func (s *Sampler) Add(r Record) bool {
	if s.Full() {
		return true
	}
	s.rows = append(s.rows, r)
	return s.Full()
}

// Full reports whether the buffer reached its capacity.
func (s *Sampler) Full() bool {
	return len(s.rows) >= s.capacity
}

// Len returns the number of buffered rows.
func (s *Sampler) Len() int {
	return len(s.rows)
}

// Capacity returns the maximum number of buffered rows.
func (s *Sampler) Capacity() int {
	return s.capacity
}

// Rows returns the buffered rows.
func (s *Sampler) Rows() []Record {
	return s.rows
}

// Reset discards the buffered rows.
func (s *Sampler) Reset() {
	s.rows = nil
}

// InferKind returns the narrowest kind accepting every non-empty value,
// trying Integer, then Real, then Boolean. Empty values do not vote, and a
// column without any non-empty value is Text.
func InferKind(values []string) Kind {
	isInt, isReal, isBool := true, true, true
	seen := false

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if isInt && !isInteger(v) {
			isInt = false
		}
		if isReal && !isFloat(v) {
			isReal = false
		}
		if isBool && !isBoolean(v) {
			isBool = false
		}
		if !isInt && !isReal && !isBool {
			return KindText
		}
	}

	switch {
	case !seen:
		return KindText
	case isInt:
		return KindInteger
	case isReal:
		return KindReal
	case isBool:
		return KindBoolean
	default:
		return KindText
	}
}

// InferColumns infers one kind per header name from the sampled rows.
// Missing trailing fields are treated as empty.
func InferColumns(header Header, rows []Record) Columns {
	if len(header) == 0 {
		return nil
	}

	columns := make(Columns, len(header))
	values := make([]string, 0, len(rows))
	for i, name := range header {
		values = values[:0]
		for _, r := range rows {
			if v, ok := r.Field(i); ok {
				values = append(values, v)
			}
		}
		columns[i] = Column{Name: name, Kind: InferKind(values)}
	}
	return columns
}

// SynthesizeHeader builds column_1..column_n for header-less input.
func SynthesizeHeader(n int) Header {
	h := make(Header, n)
	for i := range n {
		h[i] = syntheticColumnPrefix + strconv.Itoa(i+1)
	}
	return h
}

// NormalizeHeader trims header names, names blank ones after their
// 1-based position and renames a column called id to id_.
func NormalizeHeader(h Header) Header {
	out := make(Header, len(h))
	for i, name := range h {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			name = syntheticColumnPrefix + strconv.Itoa(i+1)
		case strings.EqualFold(name, reservedKeyColumn):
			name += "_"
		}
		out[i] = name
	}
	return out
}

// isInteger checks if a value is a 64-bit integer.
func isInteger(value string) bool {
	// Quick pre-check: must start with digit or sign
	if len(value) == 0 {
		return false
	}
	first := value[0]
	if first != '+' && first != '-' && (first < '0' || first > '9') {
		return false
	}

	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

// isFloat checks if a value is a finite real number.
func isFloat(value string) bool {
	// "NaN" and "Inf" parse but carry no digits
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// isBoolean accepts exactly "true" or "false", ignoring case.
func isBoolean(value string) bool {
	return strings.EqualFold(value, "true") || strings.EqualFold(value, "false")
}

// ParseInteger coerces text to an Integer value.
func ParseInteger(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

// ParseReal coerces text to a Real value.
func ParseReal(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if !isFloat(value) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: value, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(value, 64)
}

// ParseBoolean coerces text to a Boolean value.
func ParseBoolean(value string) (bool, error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.EqualFold(value, "true"):
		return true, nil
	case strings.EqualFold(value, "false"):
		return false, nil
	default:
		return false, &strconv.NumError{Func: "ParseBool", Num: value, Err: strconv.ErrSyntax}
	}
}

// Coerce converts text to a Value of the given kind. Blank text is Null.
func Coerce(kind Kind, raw string) (Value, error) {
	if strings.TrimSpace(raw) == "" {
		return NullValue(), nil
	}
	switch kind {
	case KindInteger:
		v, err := ParseInteger(raw)
		if err != nil {
			return NullValue(), err
		}
		return IntegerValue(v), nil
	case KindReal:
		v, err := ParseReal(raw)
		if err != nil {
			return NullValue(), err
		}
		return RealValue(v), nil
	case KindBoolean:
		v, err := ParseBoolean(raw)
		if err != nil {
			return NullValue(), err
		}
		return BooleanValue(v), nil
	default:
		return TextValue(raw), nil
	}
}
