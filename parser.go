package tsvdb

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nao1215/tsvdb/domain/model"
)

const (
	defaultQuote  = '"'
	defaultEscape = '\\'
)

var (
	// errUnbalancedQuote is returned when a quoted field is never closed
	errUnbalancedQuote = errors.New("unbalanced quote")
	// errTrailingCharacters is returned when text follows a closing quote
	errTrailingCharacters = errors.New("unexpected character after closing quote")
	// errDanglingEscape is returned when a line ends with an escape character inside quotes
	errDanglingEscape = errors.New("escape character at end of input")
)

// LineParser splits one line of delimited text into fields.
//
// Fields may be enclosed in Quote characters, which lets them carry the
// delimiter and line breaks. Inside a quoted field the Escape character makes
// the next character literal; \n, \r, \t, \b and \f decode to control
// characters, and a doubled quote is a literal quote. Whitespace around
// fields is trimmed outside of quotes.
type LineParser struct {
	Delimiter rune
	Quote     rune
	Escape    rune
}

// NewLineParser creates a parser for the given delimiter with the default
// quote and escape characters.
func NewLineParser(delimiter rune) *LineParser {
	return &LineParser{
		Delimiter: delimiter,
		Quote:     defaultQuote,
		Escape:    defaultEscape,
	}
}

// NewTSVParser creates a tab-delimited parser.
func NewTSVParser() *LineParser {
	return NewLineParser(tsvDelimiter)
}

// Parse splits line into fields. An empty line yields an empty record.
func (p *LineParser) Parse(line string) (model.Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return model.Record{}, nil
	}

	runes := []rune(line)
	fields := make(model.Record, 0, strings.Count(line, string(p.Delimiter))+1)

	pos := 0
	for {
		field, next, err := p.parseField(runes, pos)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if next >= len(runes) {
			return fields, nil
		}
		// runes[next] is the delimiter
		pos = next + 1
		if pos == len(runes) {
			return append(fields, ""), nil
		}
	}
}

// parseField reads one field starting at pos and returns it together with the
// index of the delimiter that ends it, or len(runes) at end of input.
func (p *LineParser) parseField(runes []rune, pos int) (string, int, error) {
	pos = p.skipSpace(runes, pos)
	if pos < len(runes) && runes[pos] == p.Quote {
		return p.parseQuoted(runes, pos+1)
	}

	start := pos
	for pos < len(runes) && runes[pos] != p.Delimiter {
		pos++
	}
	return strings.TrimFunc(string(runes[start:pos]), p.isSpace), pos, nil
}

func (p *LineParser) parseQuoted(runes []rune, pos int) (string, int, error) {
	var sb strings.Builder
	for {
		if pos >= len(runes) {
			return "", 0, errUnbalancedQuote
		}
		r := runes[pos]
		switch {
		case r == p.Escape && p.Escape != p.Quote:
			if pos+1 >= len(runes) {
				return "", 0, errDanglingEscape
			}
			sb.WriteRune(decodeEscape(runes[pos+1]))
			pos += 2
		case r == p.Quote:
			if pos+1 < len(runes) && runes[pos+1] == p.Quote {
				sb.WriteRune(p.Quote)
				pos += 2
				continue
			}
			end := p.skipSpace(runes, pos+1)
			if end < len(runes) && runes[end] != p.Delimiter {
				return "", 0, errTrailingCharacters
			}
			return sb.String(), end, nil
		default:
			sb.WriteRune(r)
			pos++
		}
	}
}

func (p *LineParser) skipSpace(runes []rune, pos int) int {
	for pos < len(runes) && p.isSpace(runes[pos]) {
		pos++
	}
	return pos
}

// isSpace reports whether r is trimmable whitespace. The delimiter never is,
// even when it is a whitespace character such as tab.
func (p *LineParser) isSpace(r rune) bool {
	return r != p.Delimiter && unicode.IsSpace(r)
}

func decodeEscape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return r
	}
}
