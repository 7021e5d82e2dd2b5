package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Lower runs the scanner, parser and RPN lowering pass and prints the
// unresolved RPN program to stdout, as a debug dump of the lowered form.
func (c *Cmd) Lower(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := readFile(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	_, p, err := lowerFile(stdio, f)
	if err != nil {
		return err
	}
	fmt.Fprint(stdio.Stdout, p.Dump())
	return nil
}
