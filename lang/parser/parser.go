// Package parser implements LOL's recursive-descent parser: two mutually
// recursive functions turn the scanner's token stream into an
// arena-backed AST. There is no error recovery; the first malformed
// token aborts parsing.
package parser

import (
	"fmt"

	"github.com/mna/lolc/lang/ast"
	"github.com/mna/lolc/lang/scanner"
	"github.com/mna/lolc/lang/token"
)

// Error reports a fatal parse failure with the offset at which it was
// detected.
type Error struct {
	File *token.File
	Off  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.File.PositionString(e.Off), e.Msg)
}

// Parse tokenizes and parses file's source buffer and returns the ID of
// the single top-level expression: a complete program is one expression.
func Parse(file *token.File) (*ast.Arena, ast.ID, error) {
	toks, err := scanner.Tokenize(file)
	if err != nil {
		return nil, ast.NoID, err
	}

	p := &parser{file: file, arena: ast.NewArena(file.Src), toks: toks}
	id, err := p.parseExpr()
	if err != nil {
		return nil, ast.NoID, err
	}
	return p.arena, id, nil
}

type parser struct {
	file  *token.File
	arena *ast.Arena
	toks  []scanner.TokenAndPos
	pos   int
}

func (p *parser) cur() scanner.TokenAndPos {
	return p.toks[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *parser) fail(off int, format string, args ...interface{}) error {
	return &Error{File: p.file, Off: off, Msg: fmt.Sprintf(format, args...)}
}

// parseExpr dispatches on the current token to parse one expression: a
// parenthesized list, a string literal, or a symbol.
func (p *parser) parseExpr() (ast.ID, error) {
	tp := p.cur()
	switch tp.Token {
	case token.LPAREN:
		p.advance()
		return p.parseList()

	case token.STRING:
		id := p.arena.AddString(tp.Pos)
		p.advance()
		return id, nil

	case token.SYMBOL:
		id := p.arena.AddSymbol(tp.Pos)
		p.advance()
		return id, nil

	case token.RPAREN, token.EOF:
		return ast.NoID, p.fail(int(tp.Pos), "unexpected end of list")

	default:
		return ast.NoID, p.fail(int(tp.Pos), "unexpected token %s", tp.Token)
	}
}

// parseList parses the elements of a list up to and including the
// closing RPAREN, which has already had its LPAREN consumed by the
// caller. It returns the ID of the head cell, or ast.NoID for an empty
// list.
func (p *parser) parseList() (ast.ID, error) {
	if p.cur().Token == token.RPAREN {
		p.advance()
		return ast.NoID, nil
	}

	elem, err := p.parseExpr()
	if err != nil {
		return ast.NoID, err
	}
	head := p.arena.AddCell(elem)
	prev := head

	for p.cur().Token != token.RPAREN {
		if p.cur().Token == token.EOF {
			return ast.NoID, p.fail(int(p.cur().Pos), "unexpected end of list")
		}
		elem, err := p.parseExpr()
		if err != nil {
			return ast.NoID, err
		}
		cell := p.arena.AddCell(elem)
		p.arena.SetNext(prev, cell)
		prev = cell
	}
	p.advance() // consume RPAREN
	return head, nil
}
