package seedsql

import (
	"errors"
	"strings"
)

// ErrUnterminatedString is returned when a tuple ends inside a string literal
var ErrUnterminatedString = errors.New("unterminated string literal")

// lexState is the state of the tuple field lexer
type lexState int

const (
	stateOutside lexState = iota
	stateInPlainString
	stateInExtendedString
)

func (s lexState) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateInPlainString:
		return "plain-string"
	case stateInExtendedString:
		return "extended-string"
	}
	return "unknown"
}

// Field is one ordinal string-typed value of a tuple.
// Null is set for the bare NULL token; Value is then empty.
type Field struct {
	Value string
	Null  bool
}

// LexFields returns the string literals and NULL tokens of a tuple in the
// order they appear. Numbers, booleans, identifiers and function names are
// skipped; string literals nested in ARRAY[...] or function calls are
// returned like any other. Doubled quotes are an escaped quote in both plain
// and E'' strings; E'' strings additionally decode backslash escapes.
func LexFields(tuple string) ([]Field, error) {
	var (
		fields []Field
		buf    strings.Builder
		state  = stateOutside
	)

	for i := 0; i < len(tuple); i++ {
		c := tuple[i]

		switch state {
		case stateOutside:
			switch {
			case isExtendedStart(tuple, i):
				state = stateInExtendedString
				i++ // consume the quote after E
			case c == '\'':
				state = stateInPlainString
			case isLineComment(tuple, i):
				i = skipLineComment(tuple, i) - 1
			case isBlockComment(tuple, i):
				i = skipBlockComment(tuple, i) - 1
			case matchKeyword(tuple, i, "NULL"):
				fields = append(fields, Field{Null: true})
				i += len("NULL") - 1
			}

		case stateInPlainString:
			if c == '\'' {
				if i+1 < len(tuple) && tuple[i+1] == '\'' {
					buf.WriteByte('\'')
					i++
					continue
				}
				fields = append(fields, Field{Value: buf.String()})
				buf.Reset()
				state = stateOutside
				continue
			}
			buf.WriteByte(c)

		case stateInExtendedString:
			switch c {
			case '\\':
				if i+1 >= len(tuple) {
					return fields, ErrUnterminatedString
				}
				i++
				buf.WriteByte(decodeEscape(tuple[i]))
			case '\'':
				if i+1 < len(tuple) && tuple[i+1] == '\'' {
					buf.WriteByte('\'')
					i++
					continue
				}
				fields = append(fields, Field{Value: buf.String()})
				buf.Reset()
				state = stateOutside
			default:
				buf.WriteByte(c)
			}
		}
	}

	if state != stateOutside {
		return fields, ErrUnterminatedString
	}
	return fields, nil
}

// decodeEscape maps the character after a backslash in an E'' string.
// Unknown escapes yield the character itself, as PostgreSQL does.
func decodeEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	}
	return c
}

// skipLiteral returns the index just past the string literal starting at i.
// ok is false when the literal never closes; the returned index is then
// len(s).
func skipLiteral(s string, i int) (next int, ok bool) {
	extended := false
	if isExtendedStart(s, i) {
		extended = true
		i++
	}
	// s[i] is the opening quote
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if extended {
				j++
			}
		case '\'':
			if j+1 < len(s) && s[j+1] == '\'' {
				j++
				continue
			}
			return j + 1, true
		}
	}
	return len(s), false
}

// isLiteralStart reports whether a plain or extended string starts at i
func isLiteralStart(s string, i int) bool {
	return s[i] == '\'' || isExtendedStart(s, i)
}

// isExtendedStart reports whether an E'...' literal starts at i. The E must
// not be the tail of a longer identifier.
func isExtendedStart(s string, i int) bool {
	if s[i] != 'E' && s[i] != 'e' {
		return false
	}
	if i+1 >= len(s) || s[i+1] != '\'' {
		return false
	}
	return i == 0 || !isIdentByte(s[i-1])
}

func isLineComment(s string, i int) bool {
	return s[i] == '-' && i+1 < len(s) && s[i+1] == '-'
}

// skipLineComment returns the index of the newline ending the comment at i,
// or len(s)
func skipLineComment(s string, i int) int {
	if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
		return i + nl
	}
	return len(s)
}

func isBlockComment(s string, i int) bool {
	return s[i] == '/' && i+1 < len(s) && s[i+1] == '*'
}

// skipBlockComment returns the index just past the block comment at i
func skipBlockComment(s string, i int) int {
	if end := strings.Index(s[i+2:], "*/"); end >= 0 {
		return i + 2 + end + 2
	}
	return len(s)
}

// matchKeyword reports whether kw (upper case) occurs at i case-insensitively
// and is bounded on both sides by non-identifier characters
func matchKeyword(s string, i int, kw string) bool {
	if i+len(kw) > len(s) {
		return false
	}
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	if !strings.EqualFold(s[i:i+len(kw)], kw) {
		return false
	}
	end := i + len(kw)
	return end == len(s) || !isIdentByte(s[end])
}

// isIdentByte reports whether b can be part of an identifier. Bytes of
// multi-byte UTF-8 sequences count as identifier bytes.
func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}
