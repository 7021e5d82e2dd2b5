package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Parse runs the scanner and parser and prints the resulting AST's
// parenthesized rendering to stdout, as a debug dump of the parse tree.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := readFile(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	a, id, err := parseFile(stdio, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdio.Stdout, a.Print(id))
	return nil
}
