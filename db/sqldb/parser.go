package sqldb

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type scanState uint8

const (
	scanning scanState = iota
	inSingleQuote
	inDoubleQuote
	startPositional
	startNamed
	inNamed
)

func (s scanState) String() string {
	return [...]string{
		"scanning", "inSingleQuote", "inDoubleQuote", "startPositional", "startNamed", "inNamed",
	}[s]
}

// scanner is a single-use tokenizer over one SQL string.
// Every byte that changes state is ASCII, so the input is walked byte by byte
// and copied through untouched, invalid UTF-8 included.
type scanner struct {
	src    string
	pos    int
	state  scanState
	acc    strings.Builder
	tokens []Token
}

// Tokenize splits sql into literal fragments and parameter markers.
// Quoted regions are never scanned for markers, `::` yields a literal colon,
// and `??` yields a literal `??`.
//
// Unterminated quotes and a trailing lone `:` leave the scanner in a state
// well-formed SQL never ends in; Tokenize panics on those.
func Tokenize(sql string) ([]Token, error) {
	s := &scanner{src: sql, tokens: make([]Token, 0, 8)}
	for ; s.pos < len(sql); s.pos++ {
		if err := s.step(sql[s.pos]); err != nil {
			return nil, err
		}
	}
	s.finish()
	return s.tokens, nil
}

func (s *scanner) flush() {
	if s.acc.Len() > 0 {
		s.tokens = append(s.tokens, literal(s.acc.String()))
		s.acc.Reset()
	}
}

func (s *scanner) step(c byte) error {
	switch s.state {
	case scanning:
		switch c {
		case '\'':
			s.flush()
			s.acc.WriteByte(c)
			s.state = inSingleQuote
		case '"':
			s.flush()
			s.acc.WriteByte(c)
			s.state = inDoubleQuote
		case ':':
			s.flush()
			s.state = startNamed
		case '?':
			s.flush()
			s.state = startPositional
		default:
			s.acc.WriteByte(c)
		}

	case inSingleQuote, inDoubleQuote:
		s.acc.WriteByte(c)
		if (s.state == inSingleQuote && c == '\'') || (s.state == inDoubleQuote && c == '"') {
			s.flush()
			s.state = scanning
		}

	case startPositional:
		if c == '?' {
			s.tokens = append(s.tokens, literal("??"))
			s.state = scanning
			return nil
		}
		s.tokens = append(s.tokens, positionalMarker())
		s.state = scanning
		return s.step(c)

	case startNamed:
		switch {
		case isParamNameChar(c):
			s.acc.WriteByte(c)
			s.state = inNamed
		case c == ':':
			s.tokens = append(s.tokens, literal(":"))
			s.state = scanning
		default:
			r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
			return &MalformedParameterError{Char: r}
		}

	case inNamed:
		if isParamNameChar(c) {
			s.acc.WriteByte(c)
			return nil
		}
		s.tokens = append(s.tokens, namedMarker(s.acc.String()))
		s.acc.Reset()
		s.state = scanning
		return s.step(c)
	}
	return nil
}

func (s *scanner) finish() {
	switch s.state {
	case scanning:
		s.flush()
	case startPositional:
		s.tokens = append(s.tokens, positionalMarker())
	case inNamed:
		s.tokens = append(s.tokens, namedMarker(s.acc.String()))
		s.acc.Reset()
	default:
		panic(fmt.Sprintf("sqldb: illegal scanner state %s at end of input", s.state))
	}
}
