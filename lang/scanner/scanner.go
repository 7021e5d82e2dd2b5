// Package scanner implements the tokenizer: a finite-state automaton fed
// one byte at a time, producing a typed token stream from a source
// buffer. It never copies text out of the buffer; symbol and string
// tokens carry only the offset of their first character, and their
// extent is re-derived later (by lang/ast, for lowering and code
// generation) by re-scanning the character class at that offset.
package scanner

import (
	"fmt"

	"github.com/mna/lolc/lang/token"
)

// state names the tokenizer's FSA states.
type state uint8

const (
	stateNormal state = iota
	stateSymbol
	stateString
	stateStringEscape
	stateComment
)

// TokenAndPos pairs a token tag with the source offset of its first
// character.
type TokenAndPos struct {
	Token token.Token
	Pos   token.Pos
}

// UnexpectedCharError is returned when the NORMAL state reads a byte that
// starts no valid token.
type UnexpectedCharError struct {
	File *token.File
	Off  int
	Char rune
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("%s: unexpected char: %q\n%s\n%s^",
		e.File.PositionString(e.Off), string(e.Char), e.File.Line(e.Off), indent(e.Off, e.File))
}

func indent(off int, f *token.File) string {
	_, col := f.Position(off)
	b := make([]byte, col-1)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Tokenize runs the FSA over the whole of file.Src and returns the token
// stream in source order, terminated by a single EOF token. There is no
// error recovery: it stops and returns an UnexpectedCharError at the
// first byte that cannot start a token.
func Tokenize(file *token.File) ([]TokenAndPos, error) {
	s := scan{file: file, src: file.Src}
	var out []TokenAndPos
	for {
		tp, err := s.next()
		if err != nil {
			return out, err
		}
		out = append(out, tp)
		if tp.Token == token.EOF {
			return out, nil
		}
	}
}

type scan struct {
	file *token.File
	src  []byte
	off  int
}

func (s *scan) peekByte() byte {
	if s.off < len(s.src) {
		return s.src[s.off]
	}
	return 0
}

func (s *scan) advance() byte {
	b := s.src[s.off]
	if b == '\n' {
		s.file.AddLine(s.off + 1)
	}
	s.off++
	return b
}

// next scans and returns the next token starting from the current NORMAL
// state, running the SYMBOL/STRING/STRING_ESCAPE/COMMENT sub-machines to
// completion as needed.
func (s *scan) next() (TokenAndPos, error) {
	for {
		if s.off >= len(s.src) {
			return TokenAndPos{Token: token.EOF, Pos: token.Pos(s.off)}, nil
		}

		start := s.off
		c := rune(s.src[s.off])

		switch {
		case c == '"':
			s.advance()
			s.runString()
			return TokenAndPos{Token: token.STRING, Pos: token.Pos(start)}, nil

		case c == '(':
			s.advance()
			return TokenAndPos{Token: token.LPAREN, Pos: token.Pos(start)}, nil

		case c == ')':
			s.advance()
			return TokenAndPos{Token: token.RPAREN, Pos: token.Pos(start)}, nil

		case token.IsSymbolChar(c):
			s.runSymbol()
			return TokenAndPos{Token: token.SYMBOL, Pos: token.Pos(start)}, nil

		case token.IsWhitespace(c):
			s.advance()
			continue

		case c == ';':
			s.advance()
			s.runComment()
			continue

		default:
			return TokenAndPos{}, &UnexpectedCharError{File: s.file, Off: start, Char: c}
		}
	}
}

// runSymbol consumes SYMBOL state: stay while the byte is a symbol
// character, return to NORMAL (without consuming) otherwise.
func (s *scan) runSymbol() {
	for s.off < len(s.src) && token.IsSymbolChar(rune(s.src[s.off])) {
		s.advance()
	}
}

// runString consumes STRING/STRING_ESCAPE state, having already consumed
// the opening quote.
func (s *scan) runString() {
	for s.off < len(s.src) {
		c := s.advance()
		switch c {
		case '\\':
			if s.off < len(s.src) {
				s.advance() // one character of escape, unconditionally
			}
		case '"':
			return
		}
	}
}

// runComment consumes COMMENT state, having already consumed the leading
// ';'.
func (s *scan) runComment() {
	for s.off < len(s.src) {
		c := s.peekByte()
		if c == '\n' || c == '\r' {
			return
		}
		s.advance()
	}
}
