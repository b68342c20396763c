package seedsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Field
	}{
		{
			name:  "plain strings",
			input: `'Compost Basics', 'compost-basics'`,
			want:  []Field{{Value: "Compost Basics"}, {Value: "compost-basics"}},
		},
		{
			name:  "block comment with an apostrophe",
			input: `'Farm', /* it's the old name */ 'farm'`,
			want:  []Field{{Value: "Farm"}, {Value: "farm"}},
		},
		{
			name:  "line comment with an apostrophe",
			input: "'Farm', -- farmer's pick\n 'farm'",
			want:  []Field{{Value: "Farm"}, {Value: "farm"}},
		},
		{
			name:  "doubled quote is a literal quote",
			input: `'Farmer''s Market'`,
			want:  []Field{{Value: "Farmer's Market"}},
		},
		{
			name:  "extended string with escapes",
			input: `E'line one\nline two\'s\\end'`,
			want:  []Field{{Value: "line one\nline two's\\end"}},
		},
		{
			name:  "extended string with doubled quote",
			input: `E'it''s'`,
			want:  []Field{{Value: "it's"}},
		},
		{
			name:  "lower case e prefix",
			input: `e'tab\there'`,
			want:  []Field{{Value: "tab\there"}},
		},
		{
			name:  "null in any case",
			input: `'a', NULL, null, 'b'`,
			want:  []Field{{Value: "a"}, {Null: true}, {Null: true}, {Value: "b"}},
		},
		{
			name:  "null inside identifier is not a token",
			input: `NULLIF(x, 0), 'a', IS_NULL`,
			want:  []Field{{Value: "a"}},
		},
		{
			name:  "numbers and functions skipped",
			input: `gen_random_uuid(), 'title', 42, 3.14, true, NOW()`,
			want:  []Field{{Value: "title"}},
		},
		{
			name:  "array elements are fields",
			input: `'title', ARRAY['soil', 'water']`,
			want:  []Field{{Value: "title"}, {Value: "soil"}, {Value: "water"}},
		},
		{
			name:  "identifier ending in E is not an extended prefix",
			input: `TYPE'x'`,
			want:  []Field{{Value: "x"}},
		},
		{
			name:  "empty string",
			input: `'', 'slug'`,
			want:  []Field{{Value: ""}, {Value: "slug"}},
		},
		{
			name:  "parentheses and semicolons inside strings",
			input: `'a (b); c'`,
			want:  []Field{{Value: "a (b); c"}},
		},
		{
			name:  "utf-8 content",
			input: `'Quinta do Pomar – Madeira', 'maçã'`,
			want:  []Field{{Value: "Quinta do Pomar – Madeira"}, {Value: "maçã"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LexFields(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLexFields_Unterminated(t *testing.T) {
	tests := []string{
		`'title', 'never closed`,
		`E'ends on a backslash\`,
		`'ok', E'open`,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := LexFields(input)
			assert.ErrorIs(t, err, ErrUnterminatedString)
		})
	}
}

func TestMatchKeyword(t *testing.T) {
	assert.True(t, matchKeyword("insert into", 0, "INSERT"))
	assert.True(t, matchKeyword("x VALUES(", 2, "VALUES"))
	assert.False(t, matchKeyword("INSERTS", 0, "INSERT"))
	assert.False(t, matchKeyword("_NULL", 1, "NULL"))
	assert.False(t, matchKeyword("NUL", 0, "NULL"))
}

func TestSkipLiteral(t *testing.T) {
	next, ok := skipLiteral(`'it''s' rest`, 0)
	assert.True(t, ok)
	assert.Equal(t, 7, next)

	next, ok = skipLiteral(`E'a\'b' rest`, 0)
	assert.True(t, ok)
	assert.Equal(t, 7, next)

	next, ok = skipLiteral(`'open`, 0)
	assert.False(t, ok)
	assert.Equal(t, 5, next)
}

func TestLexState_String(t *testing.T) {
	assert.Equal(t, "outside", stateOutside.String())
	assert.Equal(t, "plain-string", stateInPlainString.String())
	assert.Equal(t, "extended-string", stateInExtendedString.String())
}
