package sqldb

import (
	"slices"
	"strconv"
	"strings"
)

// ParsedStmt is the immutable result of scanning a SQL statement for parameters.
// It is safe to share between goroutines.
type ParsedStmt struct {
	source          string
	tokens          []Token
	rewritten       string
	positionalCount int
	positions       map[string][]int // name -> ascending 1-based ordinals
	names           []string         // first-appearance order
}

// ParseStatement scans sql and builds a ParsedStmt.
// Statements mixing `:name` and `?` markers are rejected.
func ParseStatement(sql string) (*ParsedStmt, error) {
	ps, err := ScanStatement(sql)
	if err != nil {
		return nil, err
	}
	if ps.positionalCount > 0 && len(ps.positions) > 0 {
		return nil, &MixedParameterStyleError{PositionalCount: ps.positionalCount}
	}
	return ps, nil
}

// MustParseStatement is like ParseStatement but panics on error.
// Intended for package-level statement vars.
func MustParseStatement(sql string) *ParsedStmt {
	ps, err := ParseStatement(sql)
	if err != nil {
		panic(err)
	}
	return ps
}

// ScanStatement tokenizes sql and computes the ordinal mapping without the
// mixed-style check. Callers that need both counts use this directly.
func ScanStatement(sql string) (*ParsedStmt, error) {
	tokens, err := Tokenize(sql)
	if err != nil {
		return nil, err
	}
	ps := &ParsedStmt{
		source:    sql,
		tokens:    tokens,
		positions: make(map[string][]int),
	}
	var b strings.Builder
	b.Grow(len(sql))
	ordinal := 0
	for _, t := range tokens {
		b.WriteString(t.Rewritten())
		switch t.Kind {
		case PositionalToken:
			ordinal++
			ps.positionalCount++
		case NamedToken:
			ordinal++
			if _, seen := ps.positions[t.Text]; !seen {
				ps.names = append(ps.names, t.Text)
			}
			ps.positions[t.Text] = append(ps.positions[t.Text], ordinal)
		}
	}
	ps.rewritten = b.String()
	return ps, nil
}

// Source returns the statement exactly as it was parsed.
func (p *ParsedStmt) Source() string { return p.source }

// RewrittenSQL returns the statement with every marker replaced by `?`.
func (p *ParsedStmt) RewrittenSQL() string { return p.rewritten }

func (p *ParsedStmt) PositionalCount() int { return p.positionalCount }

// ParamCount is the total number of ordinal slots.
func (p *ParsedStmt) ParamCount() int {
	n := p.positionalCount
	for _, pos := range p.positions {
		n += len(pos)
	}
	return n
}

// Names returns the distinct parameter names in order of first appearance.
func (p *ParsedStmt) Names() []string { return slices.Clone(p.names) }

// HasName reports whether the statement declares name.
func (p *ParsedStmt) HasName(name string) bool {
	_, ok := p.positions[name]
	return ok
}

// NamedPositions returns a copy of the name -> ordinals mapping.
func (p *ParsedStmt) NamedPositions() map[string][]int {
	out := make(map[string][]int, len(p.positions))
	for name, pos := range p.positions {
		out[name] = slices.Clone(pos)
	}
	return out
}

// Tokens returns a copy of the scanned token sequence.
func (p *ParsedStmt) Tokens() []Token { return slices.Clone(p.tokens) }

// OriginalSQL reconstructs the source with `::` collapsed to `:`.
func (p *ParsedStmt) OriginalSQL() string {
	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteString(t.Original())
	}
	return b.String()
}

// Render returns the statement in the placeholder style of the given prefix
// (see PlaceholderPrefixForDBType). For numbered styles the k-th marker becomes
// prefix+k and an escaped `??` is emitted as a single `?`.
func (p *ParsedStmt) Render(prefix byte) string {
	if prefix == '?' || prefix == 0 {
		return p.rewritten
	}
	var b strings.Builder
	b.Grow(len(p.rewritten) + 2*p.ParamCount())
	ordinal := 0
	for _, t := range p.tokens {
		switch {
		case t.Kind != LiteralToken:
			ordinal++
			b.WriteByte(prefix)
			b.WriteString(strconv.Itoa(ordinal))
		case t.Text == "??":
			b.WriteByte('?')
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

func (p *ParsedStmt) String() string { return p.rewritten }
