package maincmd

import (
	"fmt"
	"io"

	"github.com/mna/mainer"

	"github.com/mna/lolc/lang/ast"
	"github.com/mna/lolc/lang/parser"
	"github.com/mna/lolc/lang/rpn"
	"github.com/mna/lolc/lang/token"
)

// readFile reads one LOL program from stdio.Stdin and wraps it in a
// token.File named "<stdin>": input is always a single expression read
// from standard input.
func readFile(stdio mainer.Stdio) (*token.File, error) {
	src, err := io.ReadAll(stdio.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return token.NewFile("<stdin>", src), nil
}

// parseFile runs the scanner and parser and reports their errors uniformly.
func parseFile(stdio mainer.Stdio, f *token.File) (*ast.Arena, ast.ID, error) {
	a, id, err := parser.Parse(f)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return nil, 0, err
	}
	return a, id, nil
}

// lowerFile runs the scanner, parser and RPN lowering pass.
func lowerFile(stdio mainer.Stdio, f *token.File) (*ast.Arena, *rpn.Program, error) {
	a, id, err := parseFile(stdio, f)
	if err != nil {
		return nil, nil, err
	}
	p, err := rpn.Lower(a, id)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return nil, nil, err
	}
	return a, p, nil
}
