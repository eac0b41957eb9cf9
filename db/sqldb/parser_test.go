package sqldb

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		rewritten  string
		positions  map[string][]int
		positional int
	}{
		{
			name:      "repeated name",
			sql:       "SELECT * FROM T WHERE a = :x AND b = :x",
			rewritten: "SELECT * FROM T WHERE a = ? AND b = ?",
			positions: map[string][]int{"x": {1, 2}},
		},
		{
			name:      "colons inside single quotes",
			sql:       "SELECT * FROM T WHERE a = ':literal:value'",
			rewritten: "SELECT * FROM T WHERE a = ':literal:value'",
			positions: map[string][]int{},
		},
		{
			name:      "escaped colon",
			sql:       "UPDATE T SET a = ::escaped",
			rewritten: "UPDATE T SET a = :escaped",
			positions: map[string][]int{},
		},
		{
			name:      "escaped question mark",
			sql:       "SELECT * FROM T WHERE a = ??",
			rewritten: "SELECT * FROM T WHERE a = ??",
			positions: map[string][]int{},
		},
		{
			name:      "markers inside double quotes",
			sql:       `SELECT "a:b?" FROM T WHERE c = :c`,
			rewritten: `SELECT "a:b?" FROM T WHERE c = ?`,
			positions: map[string][]int{"c": {1}},
		},
		{
			name:      "several names",
			sql:       "INSERT INTO t (a, b, c) VALUES (:a, :b_2, :c-3)",
			rewritten: "INSERT INTO t (a, b, c) VALUES (?, ?, ?)",
			positions: map[string][]int{"a": {1}, "b_2": {2}, "c-3": {3}},
		},
		{
			name:      "interleaved repeats",
			sql:       "SELECT :a, :b, :a, :b, :a",
			rewritten: "SELECT ?, ?, ?, ?, ?",
			positions: map[string][]int{"a": {1, 3, 5}, "b": {2, 4}},
		},
		{
			name:      "name at end of input",
			sql:       "SELECT * FROM t WHERE id = :id",
			rewritten: "SELECT * FROM t WHERE id = ?",
			positions: map[string][]int{"id": {1}},
		},
		{
			name:      "leading digit",
			sql:       "SELECT :1st",
			rewritten: "SELECT ?",
			positions: map[string][]int{"1st": {1}},
		},
		{
			name:       "positional only",
			sql:        "SELECT * FROM t WHERE a = ? AND b = ?",
			rewritten:  "SELECT * FROM t WHERE a = ? AND b = ?",
			positions:  map[string][]int{},
			positional: 2,
		},
		{
			name:       "positional at end of input",
			sql:        "SELECT ?",
			rewritten:  "SELECT ?",
			positions:  map[string][]int{},
			positional: 1,
		},
		{
			name:      "postgres cast",
			sql:       "SELECT :v::text",
			rewritten: "SELECT ?:text",
			positions: map[string][]int{"v": {1}},
		},
		{
			name:      "doubled quote inside literal",
			sql:       "SELECT 'it''s :not' WHERE a = :a",
			rewritten: "SELECT 'it''s :not' WHERE a = ?",
			positions: map[string][]int{"a": {1}},
		},
		{
			name:      "empty",
			sql:       "",
			rewritten: "",
			positions: map[string][]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := ParseStatement(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.rewritten, ps.RewrittenSQL())
			assert.Equal(t, tt.positional, ps.PositionalCount())
			if diff := cmp.Diff(tt.positions, ps.NamedPositions()); diff != "" {
				t.Errorf("positions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStatement_NoMarkers(t *testing.T) {
	for _, sql := range []string{
		"SELECT 1",
		"SELECT a, b FROM t WHERE a > 3 ORDER BY b DESC",
		"DELETE FROM t",
		"   ",
	} {
		ps, err := ParseStatement(sql)
		require.NoError(t, err)
		assert.Equal(t, sql, ps.RewrittenSQL())
		assert.Zero(t, ps.PositionalCount())
		assert.Empty(t, ps.NamedPositions())
	}
}

func TestParseStatement_BytesPassThrough(t *testing.T) {
	t.Run("invalid utf-8 without markers", func(t *testing.T) {
		sql := "SELECT 'caf\xe9' FROM t WHERE a = \xff1"
		ps, err := ParseStatement(sql)
		require.NoError(t, err)
		assert.Equal(t, sql, ps.RewrittenSQL())
		assert.Equal(t, sql, ps.OriginalSQL())
	})
	t.Run("invalid utf-8 around markers", func(t *testing.T) {
		ps, err := ParseStatement("SELECT '\xe9:x' FROM t WHERE a = :a\xff AND b = \"\xfe\"")
		require.NoError(t, err)
		assert.Equal(t, "SELECT '\xe9:x' FROM t WHERE a = ?\xff AND b = \"\xfe\"", ps.RewrittenSQL())
		assert.Equal(t, map[string][]int{"a": {1}}, ps.NamedPositions())
	})
	t.Run("multi-byte text", func(t *testing.T) {
		ps, err := ParseStatement("SELECT 'naïve', 名前 FROM t WHERE a = :a")
		require.NoError(t, err)
		assert.Equal(t, "SELECT 'naïve', 名前 FROM t WHERE a = ?", ps.RewrittenSQL())
	})
	t.Run("multi-byte illegal character", func(t *testing.T) {
		_, err := ParseStatement("SELECT :é")
		var malformed *MalformedParameterError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 'é', malformed.Char)
	})
}

func TestParseStatement_Errors(t *testing.T) {
	t.Run("mixed styles", func(t *testing.T) {
		_, err := ParseStatement("SELECT * FROM T WHERE a = :x AND b = ?")
		require.Error(t, err)
		assert.Equal(t, "Named parameters cannot have positional parameters as well. But 1 positional parameter(s) were found", err.Error())
		var mixed *MixedParameterStyleError
		require.True(t, errors.As(err, &mixed))
		assert.Equal(t, 1, mixed.PositionalCount)
		assert.ErrorIs(t, err, ErrMixedParameterStyle)
	})
	t.Run("mixed styles count", func(t *testing.T) {
		_, err := ParseStatement("SELECT ?, :a, ?, ?")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "But 3 positional parameter(s) were found")
	})
	t.Run("illegal character", func(t *testing.T) {
		_, err := ParseStatement("SELECT * FROM T WHERE a = :~bad")
		require.Error(t, err)
		assert.Equal(t, `: was followed by an illegal character "~". It must be followed by a legal parameter character, `+
			`which includes a letter, number, dash or underscore, or another colon to escape a literal colon`, err.Error())
		var malformed *MalformedParameterError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, '~', malformed.Char)
		assert.ErrorIs(t, err, ErrMalformedParameter)
	})
	t.Run("space after colon", func(t *testing.T) {
		_, err := ParseStatement("SELECT : a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `illegal character " "`)
	})
	t.Run("scan keeps both counts", func(t *testing.T) {
		ps, err := ScanStatement("SELECT ?, :a")
		require.NoError(t, err)
		assert.Equal(t, 1, ps.PositionalCount())
		assert.Equal(t, map[string][]int{"a": {2}}, ps.NamedPositions())
	})
}

func TestTokenize_IllegalEndState(t *testing.T) {
	for _, sql := range []string{
		"SELECT 'unterminated",
		`SELECT "unterminated`,
		"SELECT :",
	} {
		assert.Panics(t, func() { _, _ = Tokenize(sql) }, sql)
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("SELECT ':a' :b ?? ::c")
	require.NoError(t, err)
	want := []Token{
		literal("SELECT "),
		literal("':a'"),
		literal(" "),
		namedMarker("b"),
		literal(" "),
		literal("??"),
		literal(" "),
		literal(":"),
		literal("c"),
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParsedStmt_OriginalSQL(t *testing.T) {
	inputs := []string{
		"SELECT * FROM T WHERE a = :x AND b = :x",
		"UPDATE T SET a = ::escaped",
		"SELECT * FROM T WHERE a = ??",
		"SELECT ':lit::eral' FROM t WHERE x = ?",
		`SELECT "q"":x" FROM t`,
	}
	for _, sql := range inputs {
		ps, err := ParseStatement(sql)
		require.NoError(t, err)
		original := ps.OriginalSQL()
		assert.Equal(t, normalizeEscapes(sql), original, sql)

		again, err := ParseStatement(original)
		require.NoError(t, err, original)
		assert.Equal(t, original, again.OriginalSQL(), "reconstruction is stable under re-parsing")
	}
}

// normalizeEscapes collapses `::` outside quotes, which is all the test inputs need.
func normalizeEscapes(sql string) string {
	var b strings.Builder
	var quote rune
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ':' && i+1 < len(runes) && runes[i+1] == ':':
			i++
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestParsedStmt_Render(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		prefix byte
		want   string
	}{
		{"question mark dialect", "SELECT :a, :b, :a", '?', "SELECT ?, ?, ?"},
		{"sqlite", "SELECT :a, :b, :a", 0, "SELECT ?, ?, ?"},
		{"postgres", "SELECT :a, :b, :a", '$', "SELECT $1, $2, $3"},
		{"postgres positional", "SELECT ? WHERE x = ?", '$', "SELECT $1 WHERE x = $2"},
		{"postgres escaped question mark", "SELECT data ?? 'k' FROM t WHERE id = :id", '$', "SELECT data ? 'k' FROM t WHERE id = $1"},
		{"mssql", "SELECT :a WHERE b = ':c'", '@', "SELECT @1 WHERE b = ':c'"},
		{"escaped colon", "SELECT :a::int", '$', "SELECT $1:int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := ParseStatement(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ps.Render(tt.prefix))
		})
	}
}

func TestParsedStmt_Accessors(t *testing.T) {
	ps := MustParseStatement("SELECT :b, :a, :b")
	assert.Equal(t, []string{"b", "a"}, ps.Names())
	assert.Equal(t, 3, ps.ParamCount())
	assert.True(t, ps.HasName("a"))
	assert.False(t, ps.HasName("c"))

	positions := ps.NamedPositions()
	positions["b"][0] = 99
	assert.Equal(t, map[string][]int{"b": {1, 3}, "a": {2}}, ps.NamedPositions(), "returned map is a copy")

	assert.Panics(t, func() { MustParseStatement("SELECT :a, ?") })
}
