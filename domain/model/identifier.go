package model

import "strings"

// reservedWords is the SQLite keyword list. Identifiers matching one of these
// (case-insensitively) must be quoted before they appear in a statement.
var reservedWords = map[string]struct{}{
	"ABORT": {}, "ACTION": {}, "ADD": {}, "AFTER": {}, "ALL": {}, "ALTER": {}, "ANALYZE": {}, "AND": {},
	"AS": {}, "ASC": {}, "ATTACH": {}, "AUTOINCREMENT": {}, "BEFORE": {}, "BEGIN": {}, "BETWEEN": {},
	"BY": {}, "CASCADE": {}, "CASE": {}, "CAST": {}, "CHECK": {}, "COLLATE": {}, "COLUMN": {},
	"COMMIT": {}, "CONFLICT": {}, "CONSTRAINT": {}, "CREATE": {}, "CROSS": {}, "CURRENT_DATE": {},
	"CURRENT_TIME": {}, "CURRENT_TIMESTAMP": {}, "DATABASE": {}, "DEFAULT": {}, "DEFERRABLE": {},
	"DEFERRED": {}, "DELETE": {}, "DESC": {}, "DETACH": {}, "DISTINCT": {}, "DROP": {}, "EACH": {},
	"ELSE": {}, "END": {}, "ESCAPE": {}, "EXCEPT": {}, "EXCLUSIVE": {}, "EXISTS": {}, "EXPLAIN": {},
	"FAIL": {}, "FOR": {}, "FOREIGN": {}, "FROM": {}, "FULL": {}, "GLOB": {}, "GROUP": {}, "HAVING": {},
	"IF": {}, "IGNORE": {}, "IMMEDIATE": {}, "IN": {}, "INDEX": {}, "INDEXED": {}, "INITIALLY": {},
	"INNER": {}, "INSERT": {}, "INSTEAD": {}, "INTERSECT": {}, "INTO": {}, "IS": {}, "ISNULL": {},
	"JOIN": {}, "KEY": {}, "LEFT": {}, "LIKE": {}, "LIMIT": {}, "MATCH": {}, "NATURAL": {}, "NO": {},
	"NOT": {}, "NOTNULL": {}, "NULL": {}, "OF": {}, "OFFSET": {}, "ON": {}, "OR": {}, "ORDER": {},
	"OUTER": {}, "PLAN": {}, "PRAGMA": {}, "PRIMARY": {}, "QUERY": {}, "RAISE": {}, "RECURSIVE": {},
	"REFERENCES": {}, "REGEXP": {}, "REINDEX": {}, "RELEASE": {}, "RENAME": {}, "REPLACE": {},
	"RESTRICT": {}, "RIGHT": {}, "ROLLBACK": {}, "ROW": {}, "SAVEPOINT": {}, "SELECT": {}, "SET": {},
	"TABLE": {}, "TEMP": {}, "TEMPORARY": {}, "THEN": {}, "TO": {}, "TRANSACTION": {}, "TRIGGER": {},
	"UNION": {}, "UNIQUE": {}, "UPDATE": {}, "USING": {}, "VACUUM": {}, "VALUES": {}, "VIEW": {},
	"VIRTUAL": {}, "WHEN": {}, "WHERE": {}, "WITH": {}, "WITHOUT": {},
}

const identQuote = '"'

// IsReserved reports whether name is a reserved keyword of the storage engine.
func IsReserved(name string) bool {
	_, ok := reservedWords[strings.ToUpper(name)]
	return ok
}

// EscapeIdentifier returns a storage-safe form of a table or column name.
// Reserved words and names that are not plain identifiers are wrapped in
// double quotes with internal quotes doubled; everything else is returned
// unchanged. Escaping is idempotent: an already quoted identifier is returned
// as is, so EscapeIdentifier(EscapeIdentifier(x)) == EscapeIdentifier(x).
func EscapeIdentifier(name string) string {
	if isQuotedIdentifier(name) {
		return name
	}
	if !IsReserved(name) && isPlainIdentifier(name) {
		return name
	}
	return string(identQuote) + strings.ReplaceAll(name, `"`, `""`) + string(identQuote)
}

// UnquoteIdentifier reverses EscapeIdentifier for quoted names.
func UnquoteIdentifier(name string) string {
	if !isQuotedIdentifier(name) {
		return name
	}
	return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
}

// isQuotedIdentifier reports whether name is a complete double-quoted
// identifier whose inner quotes are all doubled.
func isQuotedIdentifier(name string) bool {
	if len(name) < 2 || name[0] != identQuote || name[len(name)-1] != identQuote {
		return false
	}
	inner := name[1 : len(name)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] != identQuote {
			continue
		}
		if i+1 >= len(inner) || inner[i+1] != identQuote {
			return false
		}
		i++
	}
	return true
}

// isPlainIdentifier reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func isPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
