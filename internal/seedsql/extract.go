package seedsql

import (
	"fmt"
	"strings"

	"github.com/permahub/seedaudit/internal/types"
)

// ParseWarning describes a tuple that was skipped during extraction
type ParseWarning struct {
	Table string `json:"table"`
	// Statement is the 1-based number of the INSERT statement for Table
	Statement int `json:"statement"`
	// Tuple is the 1-based position of the tuple within the statement
	Tuple   int    `json:"tuple"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("%s statement %d tuple %d: %s", w.Table, w.Statement, w.Tuple, w.Message)
}

func (w ParseWarning) Unwrap() error {
	return w.Err
}

// Result holds the records extracted for one kind from one text
type Result struct {
	Kind       types.Kind
	Statements int
	Records    []*types.ContentRecord
	Warnings   []ParseWarning
}

// Extract returns every record of the given kind found in INSERT statements
// of text, in source order. Tuples that cannot be mapped to the kind's
// layout are skipped and reported as warnings; tuples whose parentheses
// never close are dropped silently. Extract never fails.
func Extract(text string, kind types.Kind) Result {
	res := Result{Kind: kind}
	layout, err := LayoutFor(kind)
	if err != nil {
		return res
	}
	table := kind.Table()

	for _, stmt := range Statements(text, table) {
		res.Statements++
		for n, tuple := range stmt.Tuples {
			rec, err := parseTuple(tuple, layout)
			if err != nil {
				res.Warnings = append(res.Warnings, ParseWarning{
					Table:     table,
					Statement: res.Statements,
					Tuple:     n + 1,
					Message:   err.Error(),
					Err:       err,
				})
				continue
			}
			rec.SequenceIndex = len(res.Records)
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

func parseTuple(tuple string, layout Layout) (*types.ContentRecord, error) {
	fields, err := LexFields(innerTuple(tuple))
	if err != nil {
		return nil, err
	}
	return layout.Map(fields)
}

// innerTuple strips the outer parentheses of a tuple
func innerTuple(tuple string) string {
	tuple = strings.TrimSpace(tuple)
	tuple = strings.TrimPrefix(tuple, "(")
	return strings.TrimSuffix(tuple, ")")
}

// Statement is one INSERT INTO statement for a table
type Statement struct {
	// Offset is the byte offset of INSERT in the scanned text
	Offset int
	// Tuples holds the raw text of each complete tuple, parentheses included
	Tuples []string
}

// Statements locates every INSERT INTO statement for table in text. String
// literals and comments are skipped, so neither a table name quoted inside a
// guide body nor a semicolon inside a description ends a statement early.
func Statements(text, table string) []Statement {
	var stmts []Statement
	pos := 0
	for {
		start, afterTable := findInsert(text, pos, table)
		if start < 0 {
			return stmts
		}
		tuples, end := scanValues(text, afterTable)
		stmts = append(stmts, Statement{Offset: start, Tuples: tuples})
		if end >= len(text) {
			return stmts
		}
		pos = end + 1
	}
}

// findInsert returns the offset of the next INSERT INTO <table> at or after
// from, and the offset just past the table name. start is -1 when none is
// left.
func findInsert(s string, from int, table string) (start, afterTable int) {
	for i := from; i < len(s); i++ {
		switch {
		case isLiteralStart(s, i):
			next, _ := skipLiteral(s, i)
			i = next - 1
		case isLineComment(s, i):
			i = skipLineComment(s, i)
		case isBlockComment(s, i):
			i = skipBlockComment(s, i) - 1
		case matchKeyword(s, i, "INSERT"):
			if end, ok := matchInsertTarget(s, i+len("INSERT"), table); ok {
				return i, end
			}
		}
	}
	return -1, -1
}

// matchInsertTarget matches `INTO [public.]table` starting at i
func matchInsertTarget(s string, i int, table string) (int, bool) {
	i = skipSpace(s, i)
	if !matchKeyword(s, i, "INTO") {
		return 0, false
	}
	i = skipSpace(s, i+len("INTO"))
	if i+len("public.") <= len(s) && strings.EqualFold(s[i:i+len("public.")], "public.") {
		i += len("public.")
	}
	quoted := i < len(s) && s[i] == '"'
	if quoted {
		i++
	}
	if i+len(table) > len(s) || !strings.EqualFold(s[i:i+len(table)], table) {
		return 0, false
	}
	i += len(table)
	if quoted {
		if i >= len(s) || s[i] != '"' {
			return 0, false
		}
		i++
	}
	if i < len(s) && isIdentByte(s[i]) {
		return 0, false
	}
	return i, true
}

// scanValues collects the tuples of the VALUES clause of the statement whose
// table name ends at from. It stops at the first `;` or ON CONFLICT outside
// a string literal and returns the offset where it stopped.
func scanValues(s string, from int) ([]string, int) {
	i := from
	// skip the optional column list up to VALUES
header:
	for ; i < len(s); i++ {
		switch {
		case isLiteralStart(s, i):
			next, _ := skipLiteral(s, i)
			i = next - 1
		case isLineComment(s, i):
			i = skipLineComment(s, i)
		case isBlockComment(s, i):
			i = skipBlockComment(s, i) - 1
		case s[i] == ';':
			return nil, i
		case matchKeyword(s, i, "VALUES"):
			i += len("VALUES")
			break header
		}
	}

	var (
		tuples     []string
		depth      int
		tupleStart int
	)
	for ; i < len(s); i++ {
		switch {
		case isLiteralStart(s, i):
			next, ok := skipLiteral(s, i)
			if !ok {
				return tuples, len(s)
			}
			i = next - 1
		case isLineComment(s, i):
			i = skipLineComment(s, i)
		case isBlockComment(s, i):
			i = skipBlockComment(s, i) - 1
		case s[i] == '(':
			if depth == 0 {
				tupleStart = i
			}
			depth++
		case s[i] == ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				tuples = append(tuples, s[tupleStart:i+1])
			}
		case s[i] == ';':
			return tuples, i
		case depth == 0 && matchKeyword(s, i, "ON") && matchKeyword(s, skipSpace(s, i+2), "CONFLICT"):
			return tuples, i
		}
	}
	return tuples, len(s)
}
