package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/lolc/lang/resolve"
)

// Resolve runs the scanner, parser, lowering pass and both resolve
// passes, and prints the fully-resolved RPN program to stdout.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := readFile(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	_, p, err := lowerFile(stdio, f)
	if err != nil {
		return err
	}
	resolve.Resolve(p)
	fmt.Fprint(stdio.Stdout, p.Dump())
	return nil
}
