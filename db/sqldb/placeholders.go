package sqldb

import (
	"strconv"
	"strings"
)

// PlaceholderPrefixForDBType maps a database type to the marker its native driver expects.
// '?' and 0 mean anonymous `?` markers; anything else is numbered, e.g. `$1`.
var PlaceholderPrefixForDBType = map[string]byte{
	"mysql":    '?',
	"pgsql":    '$',
	"postgres": '$',
	"mssql":    '@',
	"oracle":   ':',
	"sqlite":   0, // NOTE: sqlite supports all of them
}

// PlaceholderPrefix returns the prefix for dbType, '?' when unknown.
func PlaceholderPrefix(dbType string) byte {
	if p, ok := PlaceholderPrefixForDBType[dbType]; ok {
		return p
	}
	return '?'
}

func isAnonymous(prefix byte) bool {
	return prefix == '?' || prefix == 0
}

func PlaceholderGF(baseChar byte) func(...int) string { // vararg for optional
	if isAnonymous(baseChar) {
		return func(_ ...int) string {
			return "?"
		}
	}
	return func(index ...int) string {
		i := 1
		if len(index) > 0 {
			i = index[0]
		}
		return string(baseChar) + strconv.Itoa(i)
	}
}

func PlaceholdersGF(baseChar byte) func(int, ...int) []string { // length, start
	gen := PlaceholderGF(baseChar)
	return func(length int, startIndex ...int) []string {
		start := 1
		if len(startIndex) > 0 {
			start = startIndex[0]
		}
		placeholders := make([]string, length)
		for i := range placeholders {
			placeholders[i] = gen(start + i)
		}
		return placeholders
	}
}

// InList renders n comma separated placeholders starting at ordinal start, for `IN (...)`.
func InList(prefix byte, n int, start int) string {
	return strings.Join(PlaceholdersGF(prefix)(n, start), ", ")
}

// RenderPositional numbers the `?` markers of a positional statement for prefix.
// Quoted regions are left alone and `??` becomes a literal `?`.
// Colons are not interpreted, so Postgres casts such as `?::int` survive.
func RenderPositional(sql string, prefix byte) string {
	if isAnonymous(prefix) {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + 8)
	cnt := 1
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			if i+1 < len(sql) && sql[i+1] == '?' {
				b.WriteByte('?')
				i++
				continue
			}
			b.WriteByte(prefix)
			b.WriteString(strconv.Itoa(cnt))
			cnt++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
