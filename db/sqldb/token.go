package sqldb

// TokenKind tags a Token produced by the parameter scanner.
type TokenKind uint8

const (
	LiteralToken    TokenKind = iota // verbatim SQL fragment, quoted regions included
	PositionalToken                  // a single `?`
	NamedToken                       // one `:name` occurrence
)

func (k TokenKind) String() string {
	switch k {
	case LiteralToken:
		return "literal"
	case PositionalToken:
		return "positional"
	case NamedToken:
		return "named"
	}
	return "unknown"
}

// Token is one lexical unit of a scanned statement.
// Text holds the literal fragment for LiteralToken and the parameter name for NamedToken.
type Token struct {
	Kind TokenKind
	Text string
}

// Rewritten is the form the token takes in the driver-ready SQL.
func (t Token) Rewritten() string {
	if t.Kind == LiteralToken {
		return t.Text
	}
	return "?"
}

// Original is the escape-normalized source form of the token.
func (t Token) Original() string {
	switch t.Kind {
	case PositionalToken:
		return "?"
	case NamedToken:
		return ":" + t.Text
	}
	return t.Text
}

func literal(text string) Token     { return Token{Kind: LiteralToken, Text: text} }
func namedMarker(name string) Token { return Token{Kind: NamedToken, Text: name} }
func positionalMarker() Token       { return Token{Kind: PositionalToken} }

// isParamNameChar reports whether c may appear in a named parameter.
// Digits are accepted in the first position too.
func isParamNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_':
		return true
	}
	return false
}
