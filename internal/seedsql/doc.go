// Package seedsql extracts wiki records from SQL seed files.
//
// The input is the constrained subset of SQL produced by the content
// tooling: INSERT INTO <table> (...) VALUES (...), (...) statements,
// optionally followed by ON CONFLICT clauses. There is no SQL grammar here,
// only a small lexer that understands enough to find statements, split the
// VALUES clause into tuples and pull out the leading string columns:
//
//   - plain '...' and extended E'...' string literals, with '' as an
//     escaped quote and backslash escapes in E'' strings
//   - the bare NULL token as a null field
//   - -- line comments and /* */ block comments between statements
//   - parenthesis depth, so ARRAY[...] values and function calls inside a
//     tuple do not end the tuple
//
// Extraction is lenient by intent. Seed files are hand-authored and
// semi-trusted, so a tuple that does not fit the table layout is skipped
// with a ParseWarning and a tuple that never closes is dropped; neither
// stops the rest of the file.
package seedsql
